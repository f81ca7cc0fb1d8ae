package gameplay

// BeatTracker derives a strictly monotonic elapsed-beat counter from a
// wrapping local-beat signal. The same local value recurs every measure, so
// the wraparound from the last beat back to 0 is what advances the counter
// into the next measure block. Kept as an explicit state machine so the
// wrap detection is testable on its own.
type BeatTracker struct {
	beatsPerMeasure int
	lastLocal       int
	total           int
	started         bool
}

func NewBeatTracker(beatsPerMeasure int) *BeatTracker {
	if beatsPerMeasure < 1 {
		beatsPerMeasure = 1
	}
	return &BeatTracker{beatsPerMeasure: beatsPerMeasure}
}

// Observe feeds one polled local-beat value (0..beatsPerMeasure-1) and returns
// the running total. The total never decreases; repeated observations of the
// same local beat are idempotent.
func (t *BeatTracker) Observe(local int) int {
	if local < 0 {
		local = 0
	}
	if local >= t.beatsPerMeasure {
		local = t.beatsPerMeasure - 1
	}

	if !t.started {
		t.started = true
		t.lastLocal = local
		t.total = local
		return t.total
	}
	if local == t.lastLocal {
		return t.total
	}

	measureBase := (t.total / t.beatsPerMeasure) * t.beatsPerMeasure
	if local < t.lastLocal {
		// Wrapped: advance into the next measure block.
		t.total = measureBase + t.beatsPerMeasure + local
	} else {
		t.total = measureBase + local
	}
	t.lastLocal = local
	return t.total
}

// Total returns the running total without feeding a new observation.
func (t *BeatTracker) Total() int {
	return t.total
}

// Reset returns the tracker to its initial state.
func (t *BeatTracker) Reset() {
	t.lastLocal = 0
	t.total = 0
	t.started = false
}
