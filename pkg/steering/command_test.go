package steering

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandFor(t *testing.T) {
	want := map[Direction]Command{
		NoLine:     Stop,
		GoStraight: GoForward,
		TurnLeft:   GoLeft,
		TurnRight:  GoRight,
	}

	for _, d := range Directions() {
		assert.Equal(t, want[d], CommandFor(d), "direction %v", d)
	}
	assert.Len(t, Directions(), len(want))
}

func TestCommandFor_PanicsOutsideTable(t *testing.T) {
	for _, d := range []Direction{Unset, Direction(99), Direction(-1)} {
		assert.Panics(t, func() { CommandFor(d) }, "direction %v", d)
	}
}

func TestCommand_Bytes(t *testing.T) {
	assert.Equal(t, []byte("GO_LEFT"), GoLeft.Bytes())
	assert.Equal(t, "STOP", Stop.String())
}

func TestDirection_Text(t *testing.T) {
	data, err := json.Marshal(struct {
		Dir Direction `json:"dir"`
	}{TurnRight})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dir":"TurnRight"}`, string(data))

	var back struct {
		Dir Direction `json:"dir"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, TurnRight, back.Dir)

	var d Direction
	assert.Error(t, d.UnmarshalText([]byte("Reverse")))
	_, err = Direction(42).MarshalText()
	assert.Error(t, err)
}

func TestDirection_Valid(t *testing.T) {
	for _, d := range Directions() {
		assert.True(t, d.Valid(), "%v", d)
	}
	assert.False(t, Unset.Valid())
	assert.Equal(t, "Direction(42)", Direction(42).String())
}
