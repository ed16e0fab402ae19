package actuator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/steering"
)

var (
	// ErrWriteFailed wraps any failure to put a command on the wire.
	ErrWriteFailed = errors.New("actuator: write failed")
	// ErrNoResponse is returned when the controller stayed silent for the
	// whole read window. The command itself was delivered.
	ErrNoResponse = errors.New("actuator: no response")
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("actuator: closed")
)

const readChunk = 64

// Serial sends steering commands over a Port and reads one reply line per
// command. Send is safe for concurrent use.
type Serial struct {
	mu         sync.Mutex
	port       Port
	opts       PortOptions
	terminator string
	pending    []byte
	closed     bool
	logger     *slog.Logger
}

// Option configures a Serial.
type Option func(*Serial)

// WithTerminator overrides the line terminator appended to each command.
// An empty terminator sends the bare command text.
func WithTerminator(t string) Option {
	return func(s *Serial) { s.terminator = t }
}

// WithLogger sets the logger. Defaults to the package-global logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Serial) { s.logger = l }
}

// Open opens the serial device at path and wraps it in a Serial.
func Open(path string, opts PortOptions, options ...Option) (*Serial, error) {
	port, err := OpenPort(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s, err := New(port, opts, options...)
	if err != nil {
		port.Close()
		return nil, err
	}
	s.logger = s.logger.With("port", path)
	return s, nil
}

// New wraps an already open port.
func New(port Port, opts PortOptions, options ...Option) (*Serial, error) {
	normalized, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(normalized.ReadTimeout); err != nil {
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	s := &Serial{
		port:       port,
		opts:       normalized,
		terminator: DefaultTerminator,
	}
	for _, o := range options {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.L()
	}
	s.logger = s.logger.With("component", "actuator")
	return s, nil
}

// Send writes cmd and waits up to the configured read timeout for a reply.
// A reply is one line; bytes past the first newline are kept for the next
// call. If the window closes on a partial line, the partial text is returned.
func (s *Serial) Send(ctx context.Context, cmd steering.Command) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	payload := append([]byte(cmd.String()), s.terminator...)
	n, err := s.port.Write(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if n != len(payload) {
		return "", fmt.Errorf("%w: wrote %d of %d bytes", ErrWriteFailed, n, len(payload))
	}

	return s.readLine(ctx)
}

func (s *Serial) readLine(ctx context.Context) (string, error) {
	deadline := time.Now().Add(s.opts.ReadTimeout)
	buf := make([]byte, readChunk)

	for {
		if i := bytes.IndexByte(s.pending, '\n'); i >= 0 {
			line := string(s.pending[:i])
			s.pending = append(s.pending[:0], s.pending[i+1:]...)
			return strings.TrimRight(line, "\r"), nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := s.port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		if n > 0 {
			s.pending = append(s.pending, buf[:n]...)
			if time.Now().Before(deadline) {
				continue
			}
		}

		// read window closed
		if bytes.IndexByte(s.pending, '\n') >= 0 {
			continue
		}
		if len(s.pending) > 0 {
			line := strings.TrimRight(string(s.pending), "\r")
			s.pending = s.pending[:0]
			return line, nil
		}
		return "", ErrNoResponse
	}
}

// Close releases the port. Further sends fail with ErrClosed.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
