package runtime

import (
	"bufio"
	"chatroom/contract"
	"chatroom/domain"
	errs "chatroom/errors"
	"chatroom/observability"
	"chatroom/protocol"
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ contract.Peer = (*Session)(nil)

const (
	DefaultOutboxSize    = 64
	DefaultWriteTimeout  = 10 * time.Second
	DefaultMaxLineLength = 64 * 1024
)

// SessionOptions bounds the resources a single client may hold.
type SessionOptions struct {
	OutboxSize    int
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration // 0 waits forever
	MaxLineLength int
}

func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		OutboxSize:    DefaultOutboxSize,
		WriteTimeout:  DefaultWriteTimeout,
		MaxLineLength: DefaultMaxLineLength,
	}
}

// Session is the server side of one connected client.
//
// The reader runs in Run and is the only goroutine that changes the username or
// touches the directory for this session. The writer goroutine is the only one
// writing to the connection: other sessions hand it lines through Deliver.
type Session struct {
	id          string
	conn        net.Conn
	log         *slog.Logger
	directory   contract.IDirectory
	broadcaster contract.IBroadcaster
	censor      contract.Censor
	stats       *observability.RoomStats
	opts        SessionOptions

	mu    sync.RWMutex
	name  string
	state domain.SessionState

	outbox       chan string
	done         chan struct{}
	writerDone   chan struct{}
	closeOnce    sync.Once
	teardownOnce sync.Once
}

// NewSession wraps an accepted connection. censor and stats may be nil.
func NewSession(
	log *slog.Logger,
	conn net.Conn,
	directory contract.IDirectory,
	broadcaster contract.IBroadcaster,
	censor contract.Censor,
	stats *observability.RoomStats,
	opts SessionOptions) *Session {
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = DefaultOutboxSize
	}
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = DefaultMaxLineLength
	}
	id := uuid.NewString()
	return &Session{
		id:          id,
		conn:        conn,
		log:         log.With("session_id", id, "remote_addr", conn.RemoteAddr().String()),
		directory:   directory,
		broadcaster: broadcaster,
		censor:      censor,
		stats:       stats,
		opts:        opts,
		state:       domain.Connecting,
		outbox:      make(chan string, opts.OutboxSize),
		done:        make(chan struct{}),
		writerDone:  make(chan struct{}),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *Session) setState(state domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Deliver queues a line for this session's writer. It never blocks:
// a full queue drops the line for this session only.
func (s *Session) Deliver(line string) error {
	select {
	case <-s.done:
		return errs.ErrSessionClosed
	default:
	}
	select {
	case s.outbox <- line:
		return nil
	case <-s.done:
		return errs.ErrSessionClosed
	default:
		s.stats.IncrDroppedDeliveries()
		return errs.ErrOutboxFull
	}
}

// Close releases the connection. It is safe to call from any goroutine, any number of times;
// the blocked reader then fails and Run performs the teardown.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

// Run performs the join handshake then the message loop until the connection ends
// or ctx is canceled. Teardown always happens exactly once before Run returns.
func (s *Session) Run(ctx context.Context) error {
	s.stats.SessionOpened()
	go s.writeLoop()
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()
	defer s.teardown()

	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 0, 4096), s.opts.MaxLineLength)

	if !s.handshake(scanner) {
		return s.readErr(scanner)
	}
	for {
		line, ok := s.readLine(scanner)
		if !ok {
			return s.readErr(scanner)
		}
		s.log.Debug("Line received", "username", s.Name(), "line", line)
		s.dispatch(line)
	}
}

// handshake reads names until one is accepted by the directory.
func (s *Session) handshake(scanner *bufio.Scanner) bool {
	for {
		name, ok := s.readLine(scanner)
		if !ok {
			return false
		}
		s.setName(name)
		// Admit queues the banner and the user list to this session before any other line can reach it
		if err := s.broadcaster.Admit(name, s, protocol.WelcomeBanner); err != nil {
			switch {
			case errors.Is(err, errs.ErrDuplicateUsername):
				s.reply(protocol.NameTaken)
			case errors.Is(err, errs.ErrEmptyUsername):
				s.reply(protocol.NameRequired)
			default:
				s.log.Error("Join failed", "username", name, "error", err)
				return false
			}
			s.setName("")
			continue
		}
		s.setState(domain.Active)
		s.log.Info("User joined", "username", name)
		return true
	}
}

func (s *Session) dispatch(line string) {
	switch cmd := domain.ParseCommand(line).(type) {
	case domain.RenameCommand:
		s.rename(cmd)
	case domain.HelpCommand:
		for _, help := range protocol.HelpLines {
			s.reply(help)
		}
	case domain.PrivateCommand:
		s.whisper(cmd)
	case domain.ChatCommand:
		s.stats.IncrRoomMessages()
		s.broadcaster.BroadcastAll(protocol.Chat(s.Name(), s.censored(cmd.Text)))
	}
}

func (s *Session) rename(cmd domain.RenameCommand) {
	if cmd.NewName == "" {
		s.reply(protocol.NameUsage)
		return
	}
	oldName := s.Name()
	if err := s.directory.Rename(oldName, cmd.NewName); err != nil {
		if errors.Is(err, errs.ErrDuplicateUsername) {
			s.reply(protocol.NameTaken)
			return
		}
		s.log.Warn("Rename failed", "username", oldName, "error", err)
		s.reply(protocol.NameUsage)
		return
	}
	if oldName == cmd.NewName {
		return
	}
	s.setName(cmd.NewName)
	s.log.Info("User renamed", "username", cmd.NewName, "previous", oldName)

	s.broadcaster.BroadcastUserList()
	s.broadcaster.BroadcastAll(protocol.Renamed(oldName, cmd.NewName))
}

// whisper hands a private message to the recipient's own outbox.
func (s *Session) whisper(cmd domain.PrivateCommand) {
	target, ok := s.directory.Lookup(cmd.Target)
	if !ok {
		s.reply(protocol.NotOnline)
		return
	}
	if target.ID() == s.id {
		s.reply(protocol.TalkingToYourself)
		return
	}
	if cmd.Text == "" {
		s.reply(protocol.MessageUsage)
		return
	}

	text := s.censored(cmd.Text)
	if err := s.broadcaster.SendTo(cmd.Target, protocol.From(s.Name(), text)); err != nil {
		switch {
		case errors.Is(err, errs.ErrSessionClosed), errors.Is(err, errs.ErrUserNotFound):
			s.reply(protocol.NotOnline)
		default:
			// Not delivered: no confirmation, not counted
			s.log.Warn("Private message dropped", "username", s.Name(), "target", cmd.Target, "error", err)
		}
		return
	}
	s.stats.IncrPrivateMessages()
	s.reply(protocol.To(cmd.Target, text))
}

func (s *Session) reply(line string) {
	if err := s.Deliver(line); err != nil {
		s.log.Debug("Reply dropped", "error", err)
	}
}

func (s *Session) censored(text string) string {
	if s.censor == nil {
		return text
	}
	masked, words := s.censor.Censor(text)
	if len(words) > 0 {
		s.log.Info("Message censored", "username", s.Name(), "count", len(words))
	}
	return masked
}

func (s *Session) readLine(scanner *bufio.Scanner) (string, bool) {
	if s.opts.IdleTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.IdleTimeout))
	}
	if !scanner.Scan() {
		return "", false
	}
	return scanner.Text(), true
}

// readErr reports why the reader stopped. A closed stream is a normal end.
func (s *Session) readErr(scanner *bufio.Scanner) error {
	err := scanner.Err()
	select {
	case <-s.done:
		return nil
	default:
	}
	if err != nil {
		s.log.Info("Read failed", "username", s.Name(), "error", err)
	}
	return err
}

// writeLoop is the only writer of the connection. A failed or timed out write closes the session.
func (s *Session) writeLoop() {
	defer close(s.writerDone)
	writer := bufio.NewWriter(s.conn)
	for {
		select {
		case <-s.done:
			return
		case line := <-s.outbox:
			if s.opts.WriteTimeout > 0 {
				_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			}
			_, err := writer.WriteString(line + "\n")
			// Flush once the queue is drained so bursts share one syscall
			if err == nil && len(s.outbox) == 0 {
				err = writer.Flush()
			}
			if err != nil {
				select {
				case <-s.done:
					return
				default:
				}
				s.stats.IncrWriteFailures()
				s.log.Warn("Write failed, closing session", "username", s.Name(), "error", err)
				_ = s.Close()
				return
			}
		}
	}
}

// teardown leaves the directory and announces the departure, once.
func (s *Session) teardown() {
	s.teardownOnce.Do(func() {
		_ = s.Close()
		<-s.writerDone

		wasActive := s.State() == domain.Active
		s.setState(domain.Closed)
		s.stats.SessionClosed()
		if !wasActive {
			s.log.Info("Connection closed before joining")
			return
		}

		name := s.Name()
		if s.directory.Leave(name) {
			s.broadcaster.BroadcastAll(protocol.Left(name))
			s.broadcaster.BroadcastUserList()
		}
		s.log.Info("User left", "username", name)
	})
}
