// Package wire frames messages over a net.Conn as newline-delimited JSON:
//
//	<json>\n
//
// Clipboard content travels base64-encoded inside the JSON, so a line
// break can never appear mid-message and one line is always exactly one
// message.
package wire

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/emptypocketstudios/clipshare/internal/message"
)

const (
	// MaxMessageSize is the largest line accepted from a peer (16 MiB).
	MaxMessageSize = 16 * 1024 * 1024

	writeDeadline = 5 * time.Second
)

// Conn wraps a net.Conn with buffered newline-delimited JSON framing.
type Conn struct {
	conn net.Conn
	br   *bufio.Reader
}

// New wraps conn.
func New(conn net.Conn) *Conn {
	return &Conn{
		conn: conn,
		br:   bufio.NewReaderSize(conn, 64*1024),
	}
}

// Underlying returns the underlying net.Conn.
func (c *Conn) Underlying() net.Conn { return c.conn }

// SetReadDeadline sets or clears the read deadline.
func (c *Conn) SetReadDeadline(d time.Duration) {
	if d == 0 {
		_ = c.conn.SetReadDeadline(time.Time{})
	} else {
		_ = c.conn.SetReadDeadline(time.Now().Add(d))
	}
}

// SetWriteDeadline sets or clears the write deadline.
func (c *Conn) SetWriteDeadline(d time.Duration) {
	if d == 0 {
		_ = c.conn.SetWriteDeadline(time.Time{})
	} else {
		_ = c.conn.SetWriteDeadline(time.Now().Add(d))
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// WriteMsg serialises msg to JSON and writes it followed by a newline.
func (c *Conn) WriteMsg(msg *message.Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	line := append(raw, '\n')

	c.SetWriteDeadline(writeDeadline)
	_, err = c.conn.Write(line)
	c.SetWriteDeadline(0)
	return err
}

// ReadMsg reads one line and deserialises it into a Message. Parse
// failures and over-limit lines wrap message.ErrMalformed with the
// offending line fully consumed, so callers may keep reading.
func (c *Conn) ReadMsg() (*message.Message, error) {
	line, err := c.readLine()
	if err != nil {
		return nil, err
	}
	return message.Decode(line)
}

// readLine accumulates one newline-terminated line, capped at
// MaxMessageSize. An over-limit line is drained without being buffered
// so the next read starts on the following message.
func (c *Conn) readLine() ([]byte, error) {
	var line []byte
	for {
		chunk, err := c.br.ReadSlice('\n')
		line = append(line, chunk...)
		switch {
		case err == nil:
			line = line[:len(line)-1] // strip '\n'
			if len(line) > MaxMessageSize {
				return nil, fmt.Errorf("%w: line exceeds %d bytes", message.ErrMalformed, MaxMessageSize)
			}
			return line, nil
		case err == bufio.ErrBufferFull:
			if len(line) > MaxMessageSize {
				if err := c.drainLine(); err != nil {
					return nil, err
				}
				return nil, fmt.Errorf("%w: line exceeds %d bytes", message.ErrMalformed, MaxMessageSize)
			}
		default:
			return nil, err
		}
	}
}

// drainLine discards input through the next newline.
func (c *Conn) drainLine() error {
	for {
		_, err := c.br.ReadSlice('\n')
		switch {
		case err == nil:
			return nil
		case err == bufio.ErrBufferFull:
		default:
			return err
		}
	}
}
