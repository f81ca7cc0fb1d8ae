package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerCloseIsIdempotent(t *testing.T) {
	stops := 0
	l := &Listener{
		id:       "fake",
		stopFunc: func() { stops++ },
		hits:     make(chan Hit, 32),
	}

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.Equal(t, 1, stops, "the port must be released exactly once")
}

func TestListenerHitsUsableAfterClose(t *testing.T) {
	l := &Listener{hits: make(chan Hit, 32)}
	require.NoError(t, l.Close())

	// A callback still in flight when Close ran performs a non-blocking
	// send; the channel must accept it without panicking.
	assert.NotPanics(t, func() {
		select {
		case l.hits <- Hit{Note: 38, Velocity: 100, At: time.Now()}:
		default:
		}
	})

	select {
	case hit := <-l.Hits():
		assert.Equal(t, uint8(38), hit.Note)
	default:
		t.Fatal("buffered hit should still be readable")
	}
}
