package chart

import (
	"fmt"
	"math"
)

// DrumType identifies one lane of the drum kit.
type DrumType int

const (
	BassDrum DrumType = iota
	Snare
	HiHatClosed
	HiHatOpen
	HighTom
	LowTom
	FloorTom
	Crash
	Ride
	LeftCymbal
)

var drumNames = map[DrumType]string{
	BassDrum:    "bass",
	Snare:       "snare",
	HiHatClosed: "hihat-closed",
	HiHatOpen:   "hihat-open",
	HighTom:     "high-tom",
	LowTom:      "low-tom",
	FloorTom:    "floor-tom",
	Crash:       "crash",
	Ride:        "ride",
	LeftCymbal:  "left-cymbal",
}

func (d DrumType) String() string {
	if name, ok := drumNames[d]; ok {
		return name
	}
	return fmt.Sprintf("drum(%d)", int(d))
}

// ParseDrumType resolves a config-file drum name.
func ParseDrumType(name string) (DrumType, bool) {
	for d, n := range drumNames {
		if n == name {
			return d, true
		}
	}
	return 0, false
}

// NoteInterval is the notated duration of a note.
type NoteInterval int

const (
	Whole NoteInterval = iota
	Half
	Quarter
	Eighth
	Sixteenth
	ThirtySecond
	SixtyFourth
)

// Short reports whether the interval is an eighth note or shorter.
// Short notes are the ones that get beamed together when adjacent.
func (n NoteInterval) Short() bool {
	return n >= Eighth
}

// TimeSignature defines measure structure: BeatsPerMeasure pulses of
// 1/NoteValue each.
type TimeSignature struct {
	BeatsPerMeasure int `json:"beatsPerMeasure"`
	NoteValue       int `json:"noteValue"`
}

// CommonTime is the 4/4 default.
var CommonTime = TimeSignature{BeatsPerMeasure: 4, NoteValue: 4}

// Normalized returns the signature with degenerate values replaced so that
// BeatsPerMeasure >= 1 always holds for consumers.
func (ts TimeSignature) Normalized() TimeSignature {
	if ts.BeatsPerMeasure < 1 {
		ts.BeatsPerMeasure = CommonTime.BeatsPerMeasure
	}
	if ts.NoteValue < 1 {
		ts.NoteValue = CommonTime.NoteValue
	}
	return ts
}

// Note is one notated hit as delivered by the chart collaborator.
// MeasureOffset is a fraction of the measure in [0,1).
type Note struct {
	Interval      NoteInterval `json:"interval"`
	Drum          DrumType     `json:"drumType"`
	MeasureNumber int          `json:"measureNumber"`
	MeasureOffset float64      `json:"measureOffset"`
}

// TimePosition is the note's canonical chart position in measures
// (1.0 = one full measure).
func (n Note) TimePosition() float64 {
	return float64(n.MeasureNumber) + n.MeasureOffset
}

// MeasureIndex decomposes a measures position into its whole-measure part.
func MeasureIndex(timePosition float64) int {
	if timePosition < 0 || math.IsNaN(timePosition) {
		return 0
	}
	return int(math.Floor(timePosition))
}

// MeasureOffset is the fractional part of a measures position.
func MeasureOffset(timePosition float64) float64 {
	return timePosition - float64(MeasureIndex(timePosition))
}
