package gameplay

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"virgo-core/chart"
	"virgo-core/timing"
)

// State is the coordinator's playback state machine.
type State int

const (
	Idle State = iota
	Loaded
	Playing
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// PlaybackState is the live playback snapshot exposed to the view layer.
// It is owned exclusively by the Coordinator and mutated only through its
// control operations.
type PlaybackState struct {
	CurrentBeat         int
	TotalBeatsElapsed   int
	Progress            float64 // [0,1]
	CurrentMeasureIndex int
	CurrentBeatPosition float64 // beat within the measure, with fraction
	RawBeatPosition     float64 // continuous beats since playback start
	PausedElapsedBeats  float64
}

// Coordinator owns the note-derived beat sequence and everything computed
// from it: the closest-beat resolver, the monotonic elapsed-beat counter and
// the rendering layout caches.
type Coordinator struct {
	mu      sync.RWMutex
	log     *logrus.Logger
	state   State
	notes   []chart.Note
	bpm     float64
	timeSig chart.TimeSignature

	beats            []DrumBeat
	measurePositions map[int]MeasurePosition
	beatXs           map[int]float64
	beamGroups       []BeamGroup
	beamByBeat       map[int]string

	tracker  *BeatTracker
	playback PlaybackState

	metronome *timing.Metronome
	tickSound func(accent bool, at time.Time)
	updates   chan struct{}
}

func NewCoordinator(log *logrus.Logger) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{
		log:     log,
		state:   Idle,
		bpm:     120,
		timeSig: chart.CommonTime,
		tracker: NewBeatTracker(chart.CommonTime.BeatsPerMeasure),
		updates: make(chan struct{}, 1),
	}
}

// Updates signals playback-state changes. Capacity 1; consumers poll or
// re-listen after each receive.
func (c *Coordinator) Updates() <-chan struct{} {
	return c.updates
}

func (c *Coordinator) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// LoadChartData ingests the chart's notes and tempo, computes the sorted beat
// sequence and moves to Loaded. Non-finite or non-positive bpm keeps the
// previous tempo.
func (c *Coordinator) LoadChartData(notes []chart.Note, bpm float64, ts chart.TimeSignature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if bpm > 0 && !math.IsNaN(bpm) && !math.IsInf(bpm, 0) {
		c.bpm = bpm
	}
	c.timeSig = ts.Normalized()
	c.notes = append([]chart.Note(nil), notes...)
	c.beats = ComputeDrumBeats(c.notes)
	c.tracker = NewBeatTracker(c.timeSig.BeatsPerMeasure)
	c.playback = PlaybackState{}
	c.state = Loaded
	c.log.WithFields(logrus.Fields{
		"component": "coordinator",
		"notes":     len(c.notes),
		"beats":     len(c.beats),
	}).Debug("chart loaded")
}

// SetupGameplay builds the layout and beam caches. Called before
// LoadChartData it leaves the derived caches empty but valid: the measure
// map still contains measure 0.
func (c *Coordinator) SetupGameplay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.measurePositions = computeMeasurePositions(c.totalMeasuresLocked(), c.timeSig)
	c.beatXs = computeBeatXPositions(c.beats, c.measurePositions, c.timeSig)
	c.beamGroups, c.beamByBeat = computeBeamGroups(c.beats)
}

// totalMeasuresLocked is the chart length in measures, at least 1.
func (c *Coordinator) totalMeasuresLocked() int {
	if len(c.beats) == 0 {
		return 1
	}
	last := c.beats[len(c.beats)-1]
	return chart.MeasureIndex(last.TimePosition) + 1
}

// TotalMeasures is the chart length in measures.
func (c *Coordinator) TotalMeasures() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalMeasuresLocked()
}

// StartPlayback transitions Loaded (or Paused) to Playing; any other state is
// a no-op.
func (c *Coordinator) StartPlayback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Loaded && c.state != Paused {
		return
	}
	c.state = Playing
	c.notify()
}

// PausePlayback freezes playback, remembering the elapsed position.
func (c *Coordinator) PausePlayback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Playing {
		return
	}
	c.state = Paused
	c.playback.PausedElapsedBeats = c.playback.RawBeatPosition
	c.notify()
}

// RestartPlayback zeroes all playback state and returns to Loaded.
func (c *Coordinator) RestartPlayback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Idle {
		return
	}
	c.playback = PlaybackState{}
	c.tracker.Reset()
	c.state = Loaded
	c.notify()
}

// SkipToEnd jumps to Finished with full progress.
func (c *Coordinator) SkipToEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Idle {
		return
	}
	total := c.totalMeasuresLocked() * c.timeSig.BeatsPerMeasure
	c.playback.Progress = 1.0
	c.playback.TotalBeatsElapsed = total
	c.playback.CurrentMeasureIndex = c.totalMeasuresLocked() - 1
	c.state = Finished
	c.notify()
}

// State returns the current playback state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Snapshot returns a copy of the live playback state.
func (c *Coordinator) Snapshot() PlaybackState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playback
}

// Beats returns the sorted beat sequence.
func (c *Coordinator) Beats() []DrumBeat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]DrumBeat(nil), c.beats...)
}

// MeasurePositions returns the measure-index to layout-position cache.
func (c *Coordinator) MeasurePositions() map[int]MeasurePosition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int]MeasurePosition, len(c.measurePositions))
	for k, v := range c.measurePositions {
		out[k] = v
	}
	return out
}

// BeatX returns the cached X position for a beat id.
func (c *Coordinator) BeatX(beatID int) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	x, ok := c.beatXs[beatID]
	return x, ok
}

// IndicatorX computes the X position of the synthetic playback-progress
// indicator using the same formula as real notes, so the marker aligns
// exactly with a note at the same position.
func (c *Coordinator) IndicatorX(measureIndex int, measureOffset float64) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mp, ok := c.measurePositions[measureIndex]
	if !ok {
		return 0, false
	}
	return xForOffset(mp.XOffset, measureOffset, c.timeSig), true
}

// BeamGroups returns the computed beam groups.
func (c *Coordinator) BeamGroups() []BeamGroup {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]BeamGroup(nil), c.beamGroups...)
}

// BeamGroupFor returns the beam group id containing the beat, if any.
func (c *Coordinator) BeamGroupFor(beatID int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.beamByBeat[beatID]
	return id, ok
}

// FindClosestBeat combines a measure index and a beat position within that
// measure into one position in measures and resolves the nearest beat index.
func (c *Coordinator) FindClosestBeat(measureIndex int, beatPositionWithinMeasure float64) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	target := float64(measureIndex) + beatPositionWithinMeasure/float64(c.timeSig.BeatsPerMeasure)
	return findClosestBeatIndex(c.beats, target)
}

// TrackDuration is the chart's playback length in seconds.
func (c *Coordinator) TrackDuration() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	secondsPerBeat := 60 / c.bpm
	secondsPerMeasure := secondsPerBeat * float64(c.timeSig.BeatsPerMeasure)
	return float64(c.totalMeasuresLocked()) * secondsPerMeasure
}

// BGMOffset is the offset in seconds from the start of measure 1 to the first
// note, used to align a backing track's first audible sample with the chart's
// first hit. Zero when the chart is empty or the first note sits exactly on
// measure 1.
func (c *Coordinator) BGMOffset() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.beats) == 0 {
		return 0
	}
	measures := c.beats[0].TimePosition - 1.0
	if measures < 0 {
		measures = 0
	}
	secondsPerMeasure := 60 / c.bpm * float64(c.timeSig.BeatsPerMeasure)
	return measures * secondsPerMeasure
}

// ObserveBeat feeds one polled local-beat value while playing. The tracker
// turns the wrapping signal into the monotonic elapsed-beat counter.
func (c *Coordinator) ObserveBeat(local int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Playing {
		return
	}
	total := c.tracker.Observe(local)
	beats := c.timeSig.BeatsPerMeasure
	chartBeats := c.totalMeasuresLocked() * beats

	c.playback.CurrentBeat = local
	c.playback.TotalBeatsElapsed = total
	c.playback.CurrentMeasureIndex = total / beats
	progress := float64(total) / float64(chartBeats)
	if progress > 1 {
		progress = 1
	}
	c.playback.Progress = progress
	if progress >= 1 {
		c.state = Finished
	}
	c.notify()
}

// ObserveProgress feeds a continuous position sample from the timing engine,
// updating the raw and within-measure beat positions before delegating the
// whole-beat part to ObserveBeat's tracker.
func (c *Coordinator) ObserveProgress(p timing.BeatProgress) {
	c.mu.Lock()
	if c.state != Playing {
		c.mu.Unlock()
		return
	}
	beats := c.timeSig.BeatsPerMeasure
	c.playback.RawBeatPosition = float64(p.Measure*beats+p.Beat) + p.Fraction
	c.playback.CurrentBeatPosition = float64(p.Beat) + p.Fraction
	c.mu.Unlock()

	c.ObserveBeat(p.Beat)
}

// Attach subscribes the coordinator to a metronome's tick stream. Cleanup
// releases the subscription.
func (c *Coordinator) Attach(m *timing.Metronome) {
	c.mu.Lock()
	c.metronome = m
	c.mu.Unlock()
	m.SetOnTick(func(beat int, accent bool, at time.Time) {
		c.ObserveBeat(beat)
		c.mu.RLock()
		sound := c.tickSound
		c.mu.RUnlock()
		if sound != nil {
			sound(accent, at)
		}
	})
}

// SetTickSound registers a fire-and-forget click hook invoked on every tick
// of an attached metronome. Failures inside the hook must be absorbed by the
// hook itself; the coordinator neither retries nor reports them.
func (c *Coordinator) SetTickSound(fn func(accent bool, at time.Time)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickSound = fn
}

// Cleanup releases the metronome subscription and derived caches. Idempotent
// and safe before SetupGameplay.
func (c *Coordinator) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.metronome != nil {
		c.metronome.SetOnTick(nil)
		c.metronome = nil
	}
	c.measurePositions = nil
	c.beatXs = nil
	c.beamGroups = nil
	c.beamByBeat = nil
}
