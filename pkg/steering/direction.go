// Package steering turns a centerline trajectory into a discrete steering
// decision: a least-squares fit, a slope classifier, a debounce state
// machine, and the fixed direction to command table.
package steering

import "fmt"

// Direction is the closed set of steering decisions.
type Direction int

const (
	// Unset is the zero value. It only appears as the stabilizer's state
	// before the first observation and is never a classifier output.
	Unset Direction = iota
	NoLine
	GoStraight
	TurnLeft
	TurnRight
)

var directionNames = map[Direction]string{
	Unset:      "Unset",
	NoLine:     "NoLine",
	GoStraight: "GoStraight",
	TurnLeft:   "TurnLeft",
	TurnRight:  "TurnRight",
}

// Directions lists the classifier outputs.
func Directions() []Direction {
	return []Direction{NoLine, GoStraight, TurnLeft, TurnRight}
}

// Valid reports whether d is one of the classifier outputs.
func (d Direction) Valid() bool {
	return d >= NoLine && d <= TurnRight
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// MarshalText encodes the direction by name for JSON telemetry.
func (d Direction) MarshalText() ([]byte, error) {
	if _, ok := directionNames[d]; !ok {
		return nil, fmt.Errorf("steering: invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText parses a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	for dir, name := range directionNames {
		if name == string(text) {
			*d = dir
			return nil
		}
	}
	return fmt.Errorf("steering: unknown direction %q", text)
}
