package ports

import "context"

// Conn is a line-oriented chat connection. It is closed when the context
// passed to Dial is done, which unblocks pending reads and writes.
type Conn interface {
	// ReadLine returns the next line without its terminator.
	// It returns io.EOF when the peer closed the stream.
	ReadLine() (string, error)
	// WriteLine writes text followed by a newline and flushes it.
	WriteLine(text string) error
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, address string) (Conn, error)
}
