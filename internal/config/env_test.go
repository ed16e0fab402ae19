package config

import "testing"

func TestString(t *testing.T) {
	t.Setenv(EnvSerialPort, "")
	if got := SerialPort(DefaultSerialPort); got != DefaultSerialPort {
		t.Errorf("unset: got %q, want %q", got, DefaultSerialPort)
	}

	t.Setenv(EnvSerialPort, "  /dev/ttyACM0 ")
	if got := SerialPort(DefaultSerialPort); got != "/dev/ttyACM0" {
		t.Errorf("set: got %q, want /dev/ttyACM0", got)
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset", "", 42},
		{"valid", "9600", 9600},
		{"malformed", "fast", 42},
		{"padded", " 7 ", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LINE_TEST_INT", tt.value)
			if got := Int("LINE_TEST_INT", 42); got != tt.want {
				t.Errorf("Int() = %d, want %d", got, tt.want)
			}
		})
	}
}
