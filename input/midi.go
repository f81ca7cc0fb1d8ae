package input

import (
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// Hit is one raw note-on from a connected MIDI device.
type Hit struct {
	Note     uint8
	Velocity uint8
	At       time.Time
}

// Listener bridges a MIDI input port to a Hit channel.
type Listener struct {
	id       string
	inPort   drivers.In
	stopFunc func()
	hits     chan Hit
}

// ListPorts returns the names of all MIDI input ports.
func ListPorts() []string {
	ins := gomidi.GetInPorts()
	names := make([]string, len(ins))
	for i, p := range ins {
		names[i] = p.String()
	}
	return names
}

// NewListener opens the input port at index and starts listening. Note-offs
// and zero-velocity note-ons are filtered out; drum input has no sustain.
func NewListener(index int) (*Listener, error) {
	ins := gomidi.GetInPorts()
	if index < 0 || index >= len(ins) {
		return nil, fmt.Errorf("invalid port index: %d", index)
	}
	l := &Listener{
		id:     ins[index].String(),
		inPort: ins[index],
		hits:   make(chan Hit, 32),
	}

	stop, err := gomidi.ListenTo(l.inPort, func(msg gomidi.Message, timestampms int32) {
		var channel, note, velocity uint8
		if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
			select {
			case l.hits <- Hit{Note: note, Velocity: velocity, At: time.Now()}:
			default:
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	l.stopFunc = stop
	return l, nil
}

// ID returns the port name.
func (l *Listener) ID() string {
	return l.id
}

// Hits returns the incoming note stream.
func (l *Listener) Hits() <-chan Hit {
	return l.hits
}

// Close stops listening and releases the port. Safe to call repeatedly.
// The hits channel is deliberately left open: a note callback may still be
// in flight when Close runs, and its non-blocking send must not panic. The
// channel is collected with the listener.
func (l *Listener) Close() error {
	if l.stopFunc != nil {
		l.stopFunc()
		l.stopFunc = nil
	}
	return nil
}
