package main

import (
	"bufio"
	"bytes"
	"chatroom/client"
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChat_JoinsAndRenders(t *testing.T) {
	req := require.New(t)

	// Given a scripted server greeting whoever joins
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	req.NoError(err)
	defer lis.Close()

	received := make(chan []string, 1)
	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		name, _ := reader.ReadString('\n')
		_, _ = conn.Write([]byte("Welcome to the chatroom!\n$UL[" + strings.TrimSpace(name) + "]\n"))
		msg, _ := reader.ReadString('\n')
		received <- []string{strings.TrimSpace(name), strings.TrimSpace(msg)}
	}()

	host, port, err := net.SplitHostPort(lis.Addr().String())
	req.NoError(err)
	portNum, err := strconv.Atoi(port)
	req.NoError(err)
	config := client.Config{Host: host, Port: portNum}

	// When the user types a name and a message then closes stdin
	var out bytes.Buffer
	in := strings.NewReader("alice\nhello\n")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = chat(ctx, config, "", in, &out)

	// Then the server got both lines and the banner was printed
	req.NoError(err)
	select {
	case lines := <-received:
		req.Equal([]string{"alice", "hello"}, lines)
	case <-time.After(time.Second):
		req.Fail("server never got the message")
	}
	req.Contains(out.String(), "Username: ")
}

func TestChat_DialFailure(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().(*net.TCPAddr)
	_ = lis.Close()

	err = chat(context.Background(), client.Config{Host: "127.0.0.1", Port: addr.Port}, "alice", strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
}
