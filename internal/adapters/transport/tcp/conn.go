package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/bnema/minechat/internal/ports"
)

const defaultDialTimeout = 10 * time.Second

type Dialer struct {
	Timeout time.Duration
}

var _ ports.Dialer = (*Dialer)(nil)

func NewDialer(timeout time.Duration) *Dialer {
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	return &Dialer{Timeout: timeout}
}

func (d *Dialer) Dial(ctx context.Context, address string) (ports.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}

	raw, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	return newConn(ctx, raw), nil
}

// Conn frames a TCP stream as newline-terminated UTF-8 lines.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	stop      func() bool
	closeOnce sync.Once
	closeErr  error
}

var _ ports.Conn = (*Conn)(nil)

func newConn(ctx context.Context, raw net.Conn) *Conn {
	c := &Conn{
		raw:    raw,
		reader: bufio.NewReader(raw),
		writer: bufio.NewWriter(raw),
	}
	c.stop = context.AfterFunc(ctx, func() {
		_ = c.Close()
	})

	return c
}

func (c *Conn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return trimLine(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("read line from %s: %w", c.raw.RemoteAddr(), err)
	}

	return trimLine(line), nil
}

func (c *Conn) WriteLine(text string) error {
	if _, err := c.writer.WriteString(text + "\n"); err != nil {
		return fmt.Errorf("write line to %s: %w", c.raw.RemoteAddr(), err)
	}
	if err := c.writer.Flush(); err != nil {
		return fmt.Errorf("flush line to %s: %w", c.raw.RemoteAddr(), err)
	}

	return nil
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.stop()
		c.closeErr = c.raw.Close()
	})

	return c.closeErr
}

func trimLine(line string) string {
	return strings.TrimRight(line, "\r\n")
}
