package timing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virgo-core/chart"
)

func TestConfigureDoesNotAffectPlayback(t *testing.T) {
	m := NewMetronome(nil)
	assert.False(t, m.IsPlaying())

	m.Configure(90, chart.TimeSignature{BeatsPerMeasure: 3, NoteValue: 4})
	assert.False(t, m.IsPlaying(), "Configure must not start playback")
	assert.Equal(t, RestBeat, m.CurrentBeat(), "Configure must not touch the beat")

	m.Start()
	defer m.Stop()
	m.Configure(200, chart.CommonTime)
	assert.True(t, m.IsPlaying(), "Configure must not stop playback")
}

func TestConfigureIgnoresInvalidBPM(t *testing.T) {
	m := NewMetronome(nil)
	m.Configure(140, chart.CommonTime)

	for _, bad := range []float64{0, -10, nan(), inf()} {
		m.Configure(bad, chart.CommonTime)
	}

	m.mu.Lock()
	bpm := m.bpm
	m.mu.Unlock()
	assert.Equal(t, 140.0, bpm, "invalid bpm should keep the previous value")
}

func TestStartIdempotent(t *testing.T) {
	m := NewMetronome(nil)
	m.Start()
	m.Start()
	m.Start()
	assert.True(t, m.IsPlaying())

	m.Stop()
	assert.False(t, m.IsPlaying())
}

func TestStopResetsBeatAndIsIdempotent(t *testing.T) {
	m := NewMetronome(nil)
	m.Stop() // before any Start
	m.Configure(600, chart.CommonTime)

	ticks := make(chan int, 16)
	m.SetOnTick(func(beat int, accent bool, at time.Time) {
		select {
		case ticks <- beat:
		default:
		}
	})

	m.Start()
	// Wait for a few beats to actually land.
	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatal("metronome never ticked")
		}
	}

	m.Stop()
	m.Stop()
	assert.False(t, m.IsPlaying())
	assert.Equal(t, RestBeat, m.CurrentBeat())
}

func TestToggle(t *testing.T) {
	m := NewMetronome(nil)
	m.Toggle()
	assert.True(t, m.IsPlaying())
	m.Toggle()
	assert.False(t, m.IsPlaying())
}

func TestRapidStartStopCycles(t *testing.T) {
	m := NewMetronome(nil)
	m.Configure(300, chart.CommonTime)
	for i := 0; i < 30; i++ {
		m.Start()
		m.Stop()
	}
	assert.False(t, m.IsPlaying())
	assert.Equal(t, RestBeat, m.CurrentBeat())
}

func TestCurrentBeatAlwaysInRange(t *testing.T) {
	m := NewMetronome(nil)
	ts := chart.CommonTime
	m.Configure(600, ts)
	m.Start()
	defer m.Stop()

	const readers = 50
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				beat := m.CurrentBeat()
				assert.GreaterOrEqual(t, beat, RestBeat)
				assert.Less(t, beat, ts.BeatsPerMeasure)
			}
		}()
	}
	wg.Wait()
}

func TestBeatProgressDecomposition(t *testing.T) {
	m := NewMetronome(nil)
	m.Configure(120, chart.CommonTime)

	t0 := time.Now()
	current := t0

	// Drive the engine state directly so the decomposition is deterministic.
	m.mu.Lock()
	m.playing = true
	m.startedAt = t0
	m.now = func() time.Time { return current }
	m.mu.Unlock()

	// 120bpm = 2 beats/second. 1.625s elapsed = 3.25 beats.
	current = t0.Add(1625 * time.Millisecond)
	p, ok := m.BeatProgress(chart.CommonTime)
	require.True(t, ok)
	assert.Equal(t, 0, p.Measure)
	assert.Equal(t, 3, p.Beat)
	assert.InDelta(t, 0.25, p.Fraction, 1e-9)
	assert.False(t, p.Accent)

	// 2.25s elapsed = 4.5 beats: second measure, first beat, accented.
	current = t0.Add(2250 * time.Millisecond)
	p, ok = m.BeatProgress(chart.CommonTime)
	require.True(t, ok)
	assert.Equal(t, 1, p.Measure)
	assert.Equal(t, 0, p.Beat)
	assert.InDelta(t, 0.5, p.Fraction, 1e-9)
	assert.True(t, p.Accent)
}

func TestBeatProgressNoneWhenStopped(t *testing.T) {
	m := NewMetronome(nil)
	_, ok := m.BeatProgress(chart.CommonTime)
	assert.False(t, ok)
}

func TestTickSequenceAndAccents(t *testing.T) {
	m := NewMetronome(nil)
	ts := chart.TimeSignature{BeatsPerMeasure: 3, NoteValue: 4}
	m.Configure(600, ts)

	type tick struct {
		beat   int
		accent bool
	}
	ticks := make(chan tick, 32)
	m.SetOnTick(func(beat int, accent bool, at time.Time) {
		select {
		case ticks <- tick{beat, accent}:
		default:
		}
	})

	m.Start()
	defer m.Stop()

	var got []tick
	for len(got) < 7 {
		select {
		case tk := <-ticks:
			got = append(got, tk)
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for ticks")
		}
	}

	want := []tick{{0, true}, {1, false}, {2, false}, {0, true}, {1, false}, {2, false}, {0, true}}
	assert.Equal(t, want, got[:7])
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func inf() float64 {
	var zero float64
	return 1 / zero
}
