package input

import (
	"math"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"virgo-core/chart"
	"virgo-core/gameplay"
)

// HitKind grades a matched input event.
type HitKind int

const (
	Miss HitKind = iota
	Good
	Perfect
)

func (k HitKind) String() string {
	switch k {
	case Perfect:
		return "perfect"
	case Good:
		return "good"
	}
	return "miss"
}

// Judgment is the result of matching one input event against the chart.
type Judgment struct {
	Kind         HitKind
	Drum         chart.DrumType
	BeatID       int
	DeltaSeconds float64 // signed, positive = late
	Velocity     float64 // normalized [0,1]
}

// Timing windows as fractions of one beat.
const (
	perfectWindowBeats = 0.10
	goodWindowBeats    = 0.25
)

// Matcher validates raw keyboard/MIDI events against the expected beats of
// the configured chart.
type Matcher struct {
	mu      sync.RWMutex
	bpm     float64
	timeSig chart.TimeSignature

	beats  []gameplay.DrumBeat
	byDrum map[chart.DrumType][]gameplay.DrumBeat

	keyboard map[string]chart.DrumType
	midiMap  map[uint8]chart.DrumType

	log *logrus.Logger
}

func NewMatcher(log *logrus.Logger) *Matcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Matcher{
		bpm:      120,
		timeSig:  chart.CommonTime,
		keyboard: make(map[string]chart.DrumType),
		midiMap:  make(map[uint8]chart.DrumType),
		log:      log,
	}
}

// Configure rebuilds the timing-window data for a chart. Non-positive or
// non-finite bpm keeps the previous tempo. Empty and very large note lists
// are both fine; per-drum indexes keep event matching cheap.
func (m *Matcher) Configure(bpm float64, ts chart.TimeSignature, notes []chart.Note) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bpm > 0 && !math.IsNaN(bpm) && !math.IsInf(bpm, 0) {
		m.bpm = bpm
	} else {
		m.log.WithFields(logrus.Fields{
			"component": "matcher",
			"bpm":       bpm,
		}).Debug("invalid bpm ignored, keeping previous tempo")
	}
	m.timeSig = ts.Normalized()
	m.beats = gameplay.ComputeDrumBeats(notes)

	m.byDrum = make(map[chart.DrumType][]gameplay.DrumBeat)
	for _, b := range m.beats {
		for _, d := range b.Drums {
			m.byDrum[d] = append(m.byDrum[d], b)
		}
	}
	m.log.WithFields(logrus.Fields{
		"component": "matcher",
		"notes":     len(notes),
		"beats":     len(m.beats),
	}).Debug("chart configured")
}

// SetKeyboardMapping replaces the key-to-drum table. Any string keys are
// accepted, including empty and degenerate ones.
func (m *Matcher) SetKeyboardMapping(mapping map[string]chart.DrumType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyboard = make(map[string]chart.DrumType, len(mapping))
	for k, v := range mapping {
		m.keyboard[k] = v
	}
}

// SetMIDIMapping replaces the note-to-drum table for the full MIDI range.
func (m *Matcher) SetMIDIMapping(mapping map[uint8]chart.DrumType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.midiMap = make(map[uint8]chart.DrumType, len(mapping))
	for k, v := range mapping {
		m.midiMap[k] = v
	}
}

// HandleKey matches a key press at atSeconds (since playback start) against
// the chart. The second return is false when the key maps to no drum.
func (m *Matcher) HandleKey(key string, atSeconds float64) (Judgment, bool) {
	m.mu.RLock()
	drum, ok := m.keyboard[key]
	m.mu.RUnlock()
	if !ok {
		return Judgment{}, false
	}
	return m.judge(drum, atSeconds, 1.0), true
}

// HandleMIDINote matches a MIDI note-on. Notes outside the mapping are
// ignored; velocity is normalized before use.
func (m *Matcher) HandleMIDINote(note, velocity uint8, atSeconds float64) (Judgment, bool) {
	m.mu.RLock()
	drum, ok := m.midiMap[note]
	m.mu.RUnlock()
	if !ok {
		return Judgment{}, false
	}
	return m.judge(drum, atSeconds, NormalizeVelocity(float64(velocity))), true
}

// judge finds the nearest expected beat for the drum and grades the delta.
func (m *Matcher) judge(drum chart.DrumType, atSeconds, velocity float64) Judgment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j := Judgment{Kind: Miss, Drum: drum, BeatID: -1, Velocity: velocity}
	candidates := m.byDrum[drum]
	if len(candidates) == 0 {
		return j
	}
	if math.IsNaN(atSeconds) || math.IsInf(atSeconds, 0) || atSeconds < 0 {
		atSeconds = 0
	}

	secondsPerBeat := 60 / m.bpm
	secondsPerMeasure := secondsPerBeat * float64(m.timeSig.BeatsPerMeasure)
	target := atSeconds / secondsPerMeasure

	i := sort.Search(len(candidates), func(i int) bool {
		return candidates[i].TimePosition >= target
	})
	var best gameplay.DrumBeat
	switch {
	case i >= len(candidates):
		best = candidates[len(candidates)-1]
	case i > 0 && target-candidates[i-1].TimePosition <= candidates[i].TimePosition-target:
		best = candidates[i-1]
	default:
		best = candidates[i]
	}

	delta := (target - best.TimePosition) * secondsPerMeasure
	j.BeatID = best.ID
	j.DeltaSeconds = delta

	abs := math.Abs(delta)
	switch {
	case abs <= perfectWindowBeats*secondsPerBeat:
		j.Kind = Perfect
	case abs <= goodWindowBeats*secondsPerBeat:
		j.Kind = Good
	}
	return j
}

// NormalizeVelocity maps a raw velocity-like value into [0,1]. Non-finite
// input collapses to 0 before clamping, so the result is always finite and
// in range.
func NormalizeVelocity(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	v /= 127
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}
