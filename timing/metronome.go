package timing

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"virgo-core/chart"
)

// RestBeat is the value CurrentBeat reports while stopped. Beat indices are
// 0-based everywhere in this module, so the rest value doubles as "beat 0
// about to happen".
const RestBeat = 0

// BeatProgress is a decomposed playback position.
type BeatProgress struct {
	Measure  int
	Beat     int
	Fraction float64
	Accent   bool
}

// TickFunc is invoked once per beat from the driver goroutine. Implementations
// must not block; the metronome treats the call as fire-and-forget.
type TickFunc func(beat int, accent bool, at time.Time)

// Metronome is the logical playback clock. One internal goroutine advances the
// beat; any number of goroutines may read CurrentBeat concurrently.
type Metronome struct {
	mu        sync.Mutex
	bpm       float64
	timeSig   chart.TimeSignature
	playing   bool
	startedAt time.Time
	stopChan  chan struct{}
	doneChan  chan struct{}
	onTick    TickFunc

	currentBeat atomic.Int64

	now func() time.Time
	log *logrus.Logger
}

func NewMetronome(log *logrus.Logger) *Metronome {
	if log == nil {
		log = logrus.StandardLogger()
	}
	m := &Metronome{
		bpm:     120,
		timeSig: chart.CommonTime,
		now:     time.Now,
		log:     log,
	}
	m.currentBeat.Store(RestBeat)
	return m
}

// Configure updates tempo and meter. It never touches running state or the
// current beat; a running driver picks the new values up on its next tick.
// Non-finite or non-positive bpm is ignored.
func (m *Metronome) Configure(bpm float64, ts chart.TimeSignature) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bpm > 0 && !math.IsInf(bpm, 0) && !math.IsNaN(bpm) {
		m.bpm = bpm
	}
	m.timeSig = ts.Normalized()
}

// SetOnTick registers the per-beat callback.
func (m *Metronome) SetOnTick(fn TickFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTick = fn
}

// Start begins ticking. Calling Start while already running is a no-op.
func (m *Metronome) Start() {
	m.mu.Lock()
	if m.playing {
		m.mu.Unlock()
		return
	}
	m.playing = true
	m.startedAt = m.now()
	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})
	stop, done := m.stopChan, m.doneChan
	start := m.startedAt
	m.mu.Unlock()

	m.log.WithField("component", "metronome").Debug("started")
	go m.run(stop, done, start)
}

// Stop halts ticking and resets the current beat to RestBeat. Safe to call
// repeatedly and before the first Start.
func (m *Metronome) Stop() {
	m.mu.Lock()
	if !m.playing {
		m.mu.Unlock()
		return
	}
	m.playing = false
	close(m.stopChan)
	done := m.doneChan
	m.mu.Unlock()

	// Wait for the driver to exit so no tick lands after the reset below.
	<-done
	m.currentBeat.Store(RestBeat)
	m.log.WithField("component", "metronome").Debug("stopped")
}

// Toggle starts when stopped and stops when running.
func (m *Metronome) Toggle() {
	if m.IsPlaying() {
		m.Stop()
	} else {
		m.Start()
	}
}

// IsPlaying reports whether the driver is running.
func (m *Metronome) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// CurrentBeat is the 0-based beat within the current measure, or RestBeat when
// stopped. Safe for concurrent readers while the driver advances it.
func (m *Metronome) CurrentBeat() int {
	return int(m.currentBeat.Load())
}

// BeatProgress computes the continuous position for "now". The second return
// is false while stopped.
func (m *Metronome) BeatProgress(ts chart.TimeSignature) (BeatProgress, bool) {
	m.mu.Lock()
	if !m.playing {
		m.mu.Unlock()
		return BeatProgress{}, false
	}
	elapsed := m.now().Sub(m.startedAt)
	bpm := m.bpm
	m.mu.Unlock()

	ts = ts.Normalized()
	totalBeats := elapsed.Seconds() * bpm / 60
	if totalBeats < 0 {
		totalBeats = 0
	}
	whole := int(totalBeats)
	beat := whole % ts.BeatsPerMeasure
	return BeatProgress{
		Measure:  whole / ts.BeatsPerMeasure,
		Beat:     beat,
		Fraction: totalBeats - math.Floor(totalBeats),
		Accent:   beat == 0,
	}, true
}

// run is the tick driver. Each run owns its stop channel, so rapid
// Start/Stop cycles cannot leak a stale driver into a new session.
func (m *Metronome) run(stop, done chan struct{}, start time.Time) {
	defer close(done)
	n := 0
	last := start
	for {
		m.mu.Lock()
		bpm := m.bpm
		beats := m.timeSig.BeatsPerMeasure
		onTick := m.onTick
		m.mu.Unlock()

		local := n % beats
		m.currentBeat.Store(int64(local))
		if onTick != nil {
			onTick(local, local == 0, last)
		}

		next := last.Add(time.Duration(60 / bpm * float64(time.Second)))
		wait := next.Sub(m.now())
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}
		last = next
		n++
	}
}
