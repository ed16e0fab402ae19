package steering

import "fmt"

// Command is the token written to the actuator.
type Command string

// Actuator commands understood by the drive controller firmware.
const (
	Stop      Command = "STOP"
	GoForward Command = "GO_FORWARD"
	GoLeft    Command = "GO_LEFT"
	GoRight   Command = "GO_RIGHT"
)

// CommandFor maps a direction to its actuator command. The table is total
// over the classifier outputs; anything else is a programming error and
// panics rather than reaching the transport.
func CommandFor(d Direction) Command {
	switch d {
	case NoLine:
		return Stop
	case GoStraight:
		return GoForward
	case TurnLeft:
		return GoLeft
	case TurnRight:
		return GoRight
	default:
		panic(fmt.Sprintf("steering: no command for %v", d))
	}
}

// Bytes returns the wire form of the command, without a terminator.
func (c Command) Bytes() []byte {
	return []byte(c)
}

func (c Command) String() string {
	return string(c)
}
