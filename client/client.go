// Package client is the terminal side of the chat room: it sends the username
// and typed lines, and turns every server line into something printable.
package client

import (
	"bufio"
	errs "chatroom/errors"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
)

const maxLineLength = 64 * 1024

// Client is one connection to the chat server.
// Send may be called concurrently with ReadLine.
type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner

	mu     sync.Mutex
	writer *bufio.Writer
}

// Dial connects to address. The connection attempt is bound by ctx.
func Dial(ctx context.Context, address string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not connect to server at %s: %w", address, err)
	}
	return New(conn), nil
}

// New wraps an established connection.
func New(conn net.Conn) *Client {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	return &Client{conn: conn, scanner: scanner, writer: bufio.NewWriter(conn)}
}

// Join sends the username line. The server answers with either the welcome
// banner or a reply asking for another name.
func (c *Client) Join(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.ErrEmptyUsername
	}
	return c.writeLine(name)
}

// Send forwards a typed line, trimmed. Blank lines are not sent.
func (c *Client) Send(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return c.writeLine(line)
}

// ReadLine blocks for the next server line, without its terminator.
func (c *Client) ReadLine() (string, error) {
	if c.scanner.Scan() {
		return strings.TrimSuffix(c.scanner.Text(), "\r"), nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", err
	}
	return "", errs.ErrSessionClosed
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) writeLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return c.writer.Flush()
}
