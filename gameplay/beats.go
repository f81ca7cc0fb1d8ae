package gameplay

import (
	"math"
	"sort"

	"virgo-core/chart"
)

// DrumBeat is one playable hit: every note quantized to the same millisecond
// within a measure collapses into a single beat with a unioned drum set.
type DrumBeat struct {
	ID           int
	Drums        []chart.DrumType
	TimePosition float64 // measures, 1.0 = one full measure
	Interval     chart.NoteInterval
}

// Has reports whether the beat contains the given drum.
func (b DrumBeat) Has(d chart.DrumType) bool {
	for _, x := range b.Drums {
		if x == d {
			return true
		}
	}
	return false
}

// NotePositionKey groups simultaneous notes without floating-point equality
// pitfalls: the offset is quantized to whole milliseconds of a measure.
type NotePositionKey struct {
	MeasureNumber             int
	MeasureOffsetMilliseconds int
}

func keyForNote(n chart.Note) NotePositionKey {
	return NotePositionKey{
		MeasureNumber:             n.MeasureNumber,
		MeasureOffsetMilliseconds: int(math.Round(n.MeasureOffset * 1000)),
	}
}

// ComputeDrumBeats groups raw notes by position key, unions drum types per
// group and returns one DrumBeat per distinct key, sorted ascending by
// TimePosition. Empty input yields an empty slice.
func ComputeDrumBeats(notes []chart.Note) []DrumBeat {
	type group struct {
		drums    map[chart.DrumType]struct{}
		position float64
		interval chart.NoteInterval
	}
	groups := make(map[NotePositionKey]*group)
	for _, n := range notes {
		key := keyForNote(n)
		g, ok := groups[key]
		if !ok {
			g = &group{
				drums:    make(map[chart.DrumType]struct{}),
				position: float64(key.MeasureNumber) + float64(key.MeasureOffsetMilliseconds)/1000,
				interval: n.Interval,
			}
			groups[key] = g
		}
		g.drums[n.Drum] = struct{}{}
		// A chord keeps the shortest notated duration of its members.
		if n.Interval > g.interval {
			g.interval = n.Interval
		}
	}

	beats := make([]DrumBeat, 0, len(groups))
	for _, g := range groups {
		drums := make([]chart.DrumType, 0, len(g.drums))
		for d := range g.drums {
			drums = append(drums, d)
		}
		sort.Slice(drums, func(i, j int) bool { return drums[i] < drums[j] })
		beats = append(beats, DrumBeat{
			Drums:        drums,
			TimePosition: g.position,
			Interval:     g.interval,
		})
	}
	sort.Slice(beats, func(i, j int) bool { return beats[i].TimePosition < beats[j].TimePosition })
	for i := range beats {
		beats[i].ID = i
	}
	return beats
}

// findClosestBeatIndex binary-searches a sorted beat slice for the index
// nearest to the target measures position. Returns 0 for an empty slice.
func findClosestBeatIndex(beats []DrumBeat, target float64) int {
	if len(beats) == 0 {
		return 0
	}
	i := sort.Search(len(beats), func(i int) bool {
		return beats[i].TimePosition >= target
	})
	if i == 0 {
		return 0
	}
	if i == len(beats) {
		return len(beats) - 1
	}
	if target-beats[i-1].TimePosition <= beats[i].TimePosition-target {
		return i - 1
	}
	return i
}
