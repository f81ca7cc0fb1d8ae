package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureDecomposition(t *testing.T) {
	cases := []struct {
		pos        float64
		wantIndex  int
		wantOffset float64
	}{
		{0, 0, 0},
		{0.75, 0, 0.75},
		{1.0, 1, 0},
		{2.5, 2, 0.5},
		{17.25, 17, 0.25},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.wantIndex, MeasureIndex(tc.pos), "pos=%f", tc.pos)
		assert.InDelta(t, tc.wantOffset, MeasureOffset(tc.pos), 1e-9, "pos=%f", tc.pos)
	}
}

func TestMeasureDecompositionDegenerateInput(t *testing.T) {
	assert.Equal(t, 0, MeasureIndex(-1.5))
	assert.Equal(t, 0, MeasureIndex(math.NaN()))
}

func TestTimeSignatureNormalized(t *testing.T) {
	ts := TimeSignature{BeatsPerMeasure: 0, NoteValue: 0}.Normalized()
	assert.Equal(t, CommonTime, ts)

	ts = TimeSignature{BeatsPerMeasure: 7, NoteValue: 8}.Normalized()
	assert.Equal(t, 7, ts.BeatsPerMeasure)
	assert.Equal(t, 8, ts.NoteValue)
}

func TestNoteTimePosition(t *testing.T) {
	n := Note{MeasureNumber: 3, MeasureOffset: 0.25}
	assert.InDelta(t, 3.25, n.TimePosition(), 1e-9)
}

func TestParseDrumTypeRoundTrip(t *testing.T) {
	for d := BassDrum; d <= LeftCymbal; d++ {
		parsed, ok := ParseDrumType(d.String())
		require.True(t, ok, "drum %v", d)
		assert.Equal(t, d, parsed)
	}

	_, ok := ParseDrumType("kazoo")
	assert.False(t, ok)
}

func TestIntervalShort(t *testing.T) {
	assert.False(t, Quarter.Short())
	assert.True(t, Eighth.Short())
	assert.True(t, Sixteenth.Short())
	assert.True(t, SixtyFourth.Short())
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore()
	songID := s.AddSong(Song{Title: "Night Drive", Artist: "Test", BPM: 145})
	chartID := s.AddChart(Chart{SongID: songID, Difficulty: "extreme", Level: 85})

	song, ok := s.Song(songID)
	require.True(t, ok)
	assert.Equal(t, "Night Drive", song.Title)

	c, ok := s.Chart(chartID)
	require.True(t, ok)
	assert.Equal(t, songID, c.SongID)

	charts := s.ChartsBySong(songID)
	require.Len(t, charts, 1)
	assert.Equal(t, chartID, charts[0].ID)
}

func TestStorePlaceholderForMissingSong(t *testing.T) {
	s := NewStore()
	songID := s.AddSong(Song{Title: "Gone", Artist: "Soon", BPM: 180})
	chartID := s.AddChart(Chart{SongID: songID})

	s.RemoveSong(songID)

	song := s.SongForChart(chartID)
	assert.Equal(t, PlaceholderTitle, song.Title)
	assert.Equal(t, PlaceholderArtist, song.Artist)
	assert.Equal(t, float64(PlaceholderBPM), song.BPM)

	// Unknown chart id degrades the same way.
	song = s.SongForChart(9999)
	assert.Equal(t, PlaceholderTitle, song.Title)
}
