package gameplay

import (
	"github.com/google/uuid"

	"virgo-core/chart"
)

// BeamGroup is a rendering grouping of consecutive short-duration notes.
// A beat belongs to at most one group.
type BeamGroup struct {
	ID    string
	Beats []DrumBeat
}

// beamGap is the widest spacing (in measures) that still beams two short
// notes together: one eighth note plus a little float slack.
const beamGap = 1.0/8 + 1e-9

// computeBeamGroups groups temporally adjacent eighth-or-shorter beats within
// the same measure. Groups need at least two members; singles stay unbeamed.
// The second return maps beat id to group id for O(1) membership queries.
func computeBeamGroups(beats []DrumBeat) ([]BeamGroup, map[int]string) {
	var groups []BeamGroup
	byBeat := make(map[int]string)

	var run []DrumBeat
	flush := func() {
		if len(run) >= 2 {
			g := BeamGroup{ID: uuid.NewString(), Beats: run}
			groups = append(groups, g)
			for _, b := range run {
				byBeat[b.ID] = g.ID
			}
		}
		run = nil
	}

	for _, b := range beats {
		if !b.Interval.Short() {
			flush()
			continue
		}
		if len(run) > 0 {
			prev := run[len(run)-1]
			sameMeasure := chart.MeasureIndex(prev.TimePosition) == chart.MeasureIndex(b.TimePosition)
			if !sameMeasure || b.TimePosition-prev.TimePosition > beamGap {
				flush()
			}
		}
		run = append(run, b)
	}
	flush()

	return groups, byBeat
}
