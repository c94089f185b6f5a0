package application

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/ports"
	"github.com/bnema/minechat/internal/queue"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errConnClosed = errors.New("use of closed connection")

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// fakeConn serves scripted lines. Once the script is exhausted it blocks
// until closed, or reports EOF / readErr when configured.
type fakeConn struct {
	lines   chan string
	eof     bool
	readErr error

	mu      sync.Mutex
	written []string

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn(lines ...string) *fakeConn {
	c := &fakeConn{
		lines:  make(chan string, len(lines)),
		closed: make(chan struct{}),
	}
	for _, line := range lines {
		c.lines <- line
	}

	return c
}

func (c *fakeConn) withEOF() *fakeConn {
	c.eof = true
	return c
}

func (c *fakeConn) withReadErr(err error) *fakeConn {
	c.readErr = err
	return c
}

func (c *fakeConn) ReadLine() (string, error) {
	select {
	case line := <-c.lines:
		return line, nil
	default:
	}

	if c.eof {
		return "", io.EOF
	}
	if c.readErr != nil {
		return "", c.readErr
	}

	select {
	case line := <-c.lines:
		return line, nil
	case <-c.closed:
		return "", errConnClosed
	}
}

func (c *fakeConn) WriteLine(text string) error {
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, text)

	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) Written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.written...)
}

func (c *fakeConn) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

type dialRecord struct {
	address string
	at      time.Time
	conn    *fakeConn
}

// fakeDialer asks connFor for a connection on every dial. attempt counts
// dials per address, starting at 1.
type fakeDialer struct {
	connFor func(address string, attempt int) (*fakeConn, error)

	mu       sync.Mutex
	attempts map[string]int
	dials    []dialRecord
}

var _ ports.Dialer = (*fakeDialer)(nil)

func (d *fakeDialer) Dial(ctx context.Context, address string) (ports.Conn, error) {
	d.mu.Lock()
	if d.attempts == nil {
		d.attempts = map[string]int{}
	}
	d.attempts[address]++
	attempt := d.attempts[address]
	d.mu.Unlock()

	conn, err := d.connFor(address, attempt)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.dials = append(d.dials, dialRecord{address: address, at: time.Now(), conn: conn})
	d.mu.Unlock()

	context.AfterFunc(ctx, func() { _ = conn.Close() })

	return conn, nil
}

func (d *fakeDialer) Dials(address string) []dialRecord {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []dialRecord
	for _, rec := range d.dials {
		if rec.address == address {
			out = append(out, rec)
		}
	}

	return out
}

func staticDialer(conns map[string]*fakeConn) *fakeDialer {
	return &fakeDialer{connFor: func(address string, _ int) (*fakeConn, error) {
		conn, ok := conns[address]
		if !ok {
			return nil, os.ErrNotExist
		}
		return conn, nil
	}}
}

type inMemoryHistoryRepo struct {
	mu      sync.Mutex
	records []domain.HistoryRecord
	saveErr error
}

func (r *inMemoryHistoryRepo) Save(_ context.Context, record domain.HistoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	r.records = append(r.records, record)
	return nil
}

func (r *inMemoryHistoryRepo) List(_ context.Context) ([]domain.HistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]domain.HistoryRecord(nil), r.records...), nil
}

func (r *inMemoryHistoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.records)
}

func drain[T any](q *queue.Queue[T]) []T {
	var out []T
	for {
		item, ok := q.TryGet()
		if !ok {
			return out
		}
		out = append(out, item)
	}
}

// runAsync runs fn in a goroutine and returns a channel with its result.
func runAsync(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return done
}

func waitResult(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for goroutine to return")
		return nil
	}
}
