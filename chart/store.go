package chart

import "sync"

// Song holds the per-song metadata shown in menus.
type Song struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	BPM    float64 `json:"bpm"`
}

// Chart is one difficulty of a song's notation.
type Chart struct {
	ID         int           `json:"id"`
	SongID     int           `json:"songId"`
	Difficulty string        `json:"difficulty"`
	Level      int           `json:"level"`
	BPM        float64       `json:"bpm"`
	TimeSig    TimeSignature `json:"timeSignature"`
	Notes      []Note        `json:"notes"`
}

// Placeholder metadata reported when a chart's song has gone missing.
// Gameplay keeps working against stale chart references.
const (
	PlaceholderTitle  = "Unknown Song"
	PlaceholderArtist = "Unknown Artist"
	PlaceholderBPM    = 130
)

// Store is a flat id-indexed song/chart registry. Songs and charts only
// reference each other through integer ids, never through pointers.
type Store struct {
	mu     sync.RWMutex
	songs  map[int]Song
	charts map[int]Chart
	nextID int
}

func NewStore() *Store {
	return &Store{
		songs:  make(map[int]Song),
		charts: make(map[int]Chart),
		nextID: 1,
	}
}

// AddSong registers a song and returns its assigned id.
func (s *Store) AddSong(song Song) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	song.ID = s.nextID
	s.nextID++
	s.songs[song.ID] = song
	return song.ID
}

// AddChart registers a chart and returns its assigned id. The song does not
// have to exist; lookups fall back to placeholders.
func (s *Store) AddChart(c Chart) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	s.charts[c.ID] = c
	return c.ID
}

// RemoveSong deletes a song. Charts referencing it remain playable.
func (s *Store) RemoveSong(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.songs, id)
}

// Song returns the song by id.
func (s *Store) Song(id int) (Song, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	song, ok := s.songs[id]
	return song, ok
}

// Chart returns the chart by id.
func (s *Store) Chart(id int) (Chart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.charts[id]
	return c, ok
}

// ChartsBySong returns all charts registered for a song id.
func (s *Store) ChartsBySong(songID int) []Chart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Chart
	for _, c := range s.charts {
		if c.SongID == songID {
			out = append(out, c)
		}
	}
	return out
}

// SongForChart resolves a chart's song metadata. A missing song degrades to
// placeholder values instead of failing.
func (s *Store) SongForChart(chartID int) Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.charts[chartID]
	if ok {
		if song, ok := s.songs[c.SongID]; ok {
			return song
		}
	}
	return Song{
		Title:  PlaceholderTitle,
		Artist: PlaceholderArtist,
		BPM:    PlaceholderBPM,
	}
}
