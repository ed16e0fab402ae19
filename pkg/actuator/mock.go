package actuator

import (
	"context"
	"sync"

	"github.com/teslashibe/go-linefollow/pkg/steering"
)

// Mock is an in-memory actuator. It records every command and answers with
// Reply, or "OK <command>" when Reply is nil. Used for --dry-run and tests.
type Mock struct {
	mu       sync.Mutex
	commands []steering.Command

	// Reply produces the response for a command.
	Reply func(steering.Command) (string, error)
}

// NewMock creates a mock actuator that acknowledges every command.
func NewMock() *Mock {
	return &Mock{}
}

// Send records cmd and returns the configured reply.
func (m *Mock) Send(ctx context.Context, cmd steering.Command) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.commands = append(m.commands, cmd)
	reply := m.Reply
	m.mu.Unlock()

	if reply != nil {
		return reply(cmd)
	}
	return "OK " + cmd.String(), nil
}

// Commands returns a copy of the commands sent so far.
func (m *Mock) Commands() []steering.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]steering.Command, len(m.commands))
	copy(out, m.commands)
	return out
}

// Reset clears the recorded commands.
func (m *Mock) Reset() {
	m.mu.Lock()
	m.commands = nil
	m.mu.Unlock()
}

// Close is a no-op.
func (m *Mock) Close() error { return nil }
