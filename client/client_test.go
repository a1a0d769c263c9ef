package client

import (
	"bufio"
	errs "chatroom/errors"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// ClientSuite runs the client against a scripted server on a loopback listener.
type ClientSuite struct {
	suite.Suite
	listener net.Listener
	client   *Client
	server   net.Conn
	reader   *bufio.Reader
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	var err error
	s.listener, err = net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := s.listener.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.client, err = Dial(ctx, s.listener.Addr().String())
	s.Require().NoError(err)

	select {
	case s.server = <-accepted:
	case <-time.After(time.Second):
		s.FailNow("server side never accepted")
	}
	s.reader = bufio.NewReader(s.server)
}

func (s *ClientSuite) TearDownTest() {
	_ = s.client.Close()
	_ = s.server.Close()
	_ = s.listener.Close()
}

func (s *ClientSuite) received() string {
	_ = s.server.SetReadDeadline(time.Now().Add(time.Second))
	line, err := s.reader.ReadString('\n')
	s.Require().NoError(err)
	return line
}

func (s *ClientSuite) TestJoinSendsTrimmedName() {
	// When joining with padding
	s.Require().NoError(s.client.Join("  alice "))

	// Then the server reads the bare name
	s.Equal("alice\n", s.received())
}

func (s *ClientSuite) TestJoinRejectsEmptyName() {
	s.ErrorIs(s.client.Join("   "), errs.ErrEmptyUsername)
}

func (s *ClientSuite) TestSendSkipsBlankLines() {
	// Given a blank line then a real one
	s.Require().NoError(s.client.Send("   "))
	s.Require().NoError(s.client.Send(" hello \t"))

	// Then only the trimmed message reaches the server
	s.Equal("hello\n", s.received())
}

func (s *ClientSuite) TestReadLine() {
	// Given the server sends a banner line and a user list
	_, err := s.server.Write([]byte("Welcome to the chatroom!\r\n$UL[alice]\n"))
	s.Require().NoError(err)

	// Then both are read without terminators
	line, err := s.client.ReadLine()
	s.Require().NoError(err)
	s.Equal("Welcome to the chatroom!", line)

	line, err = s.client.ReadLine()
	s.Require().NoError(err)
	s.Equal("$UL[alice]", line)
}

func (s *ClientSuite) TestReadLineAfterServerClose() {
	// When the server hangs up
	s.Require().NoError(s.server.Close())

	// Then the client sees a closed session
	_, err := s.client.ReadLine()
	s.ErrorIs(err, errs.ErrSessionClosed)
}

func TestDial_Refused(t *testing.T) {
	// Given a port nobody listens on
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	address := lis.Addr().String()
	_ = lis.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Dial(ctx, address); err == nil {
		t.Fatal("expected a dial error")
	}
}
