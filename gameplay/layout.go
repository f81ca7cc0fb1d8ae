package gameplay

import "virgo-core/chart"

// Layout geometry. The same X formula is used for notes and for the synthetic
// progress indicator so the marker lands exactly on a note at the same
// position.
const (
	MeasuresPerRow = 2
	BarLineWidth   = 4.0
	BeatSpacing    = 56.0
)

// MeasurePosition places one measure on the score layout.
type MeasurePosition struct {
	Row          int
	XOffset      float64
	MeasureIndex int
}

// measureWidth is the horizontal span of one measure: bar line, lead-in
// spacing, then one slot per beat.
func measureWidth(ts chart.TimeSignature) float64 {
	return BarLineWidth + BeatSpacing + float64(ts.BeatsPerMeasure)*BeatSpacing
}

// xForOffset computes the X position of a point inside a measure.
// beatPositionWithinMeasure = measureOffset * beatsPerMeasure.
func xForOffset(measureStart, measureOffset float64, ts chart.TimeSignature) float64 {
	beatInMeasure := measureOffset * float64(ts.BeatsPerMeasure)
	return measureStart + BarLineWidth + BeatSpacing + beatInMeasure*BeatSpacing
}

// computeMeasurePositions lays out totalMeasures measures in rows. The map
// always contains an entry for measure 0, even for an empty chart.
func computeMeasurePositions(totalMeasures int, ts chart.TimeSignature) map[int]MeasurePosition {
	if totalMeasures < 1 {
		totalMeasures = 1
	}
	width := measureWidth(ts)
	positions := make(map[int]MeasurePosition, totalMeasures)
	for i := 0; i < totalMeasures; i++ {
		positions[i] = MeasurePosition{
			Row:          i / MeasuresPerRow,
			XOffset:      float64(i%MeasuresPerRow) * width,
			MeasureIndex: i,
		}
	}
	return positions
}

// computeBeatXPositions resolves each beat's X position from the measure map.
func computeBeatXPositions(beats []DrumBeat, positions map[int]MeasurePosition, ts chart.TimeSignature) map[int]float64 {
	xs := make(map[int]float64, len(beats))
	for _, b := range beats {
		m := chart.MeasureIndex(b.TimePosition)
		mp, ok := positions[m]
		if !ok {
			continue
		}
		xs[b.ID] = xForOffset(mp.XOffset, chart.MeasureOffset(b.TimePosition), ts)
	}
	return xs
}
