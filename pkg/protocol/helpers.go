package protocol

import "time"

// NewPingMessage creates a ping message stamped with the current time
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// Pong answers a ping message. ok is false if m is not a ping.
func Pong(m *Message) (reply *Message, ok bool, err error) {
	if m.Type != TypePing {
		return nil, false, nil
	}
	ping, err := m.GetPingData()
	if err != nil {
		return nil, true, err
	}
	reply, err = NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli())
	return reply, true, err
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
