// Package actuator delivers steering commands to the drive controller over
// a serial line and reads back its acknowledgement.
package actuator

import (
	"io"
	"time"

	"go.bug.st/serial"
)

// Port is the minimal serial port surface the actuator needs.
// serial.Port satisfies it; tests substitute an in-memory port.
type Port interface {
	io.ReadWriteCloser
	// SetReadTimeout bounds each Read. A Read that times out returns 0, nil.
	SetReadTimeout(timeout time.Duration) error
}

var _ Port = (serial.Port)(nil)

// OpenPort opens a real serial port at path.
func OpenPort(path string, opts PortOptions) (Port, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}

	// drop anything the controller printed while we were not listening
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}
