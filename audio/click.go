package audio

import (
	"io"
	"math"
)

// Click synthesis parameters. The accent click is pitched up as well as
// louder so it cuts through even at equal gain.
const (
	clickFreq       = 1000.0
	accentClickFreq = 1500.0
	clickSeconds    = 0.030
)

// genClick renders a short decaying sine burst as stereo float32 LE frames.
func genClick(freq float64) []byte {
	frames := int(clickSeconds * sampleRate)
	buf := make([]byte, frames*bytesPerFrame)
	for i := 0; i < frames; i++ {
		t := float64(i) / sampleRate
		env := 1 - float64(i)/float64(frames)
		sample := math.Sin(2*math.Pi*freq*t) * env * env
		putStereoF32(buf, i, sample)
	}
	return buf
}

// putStereoF32 writes a [-1,1] sample as float32 LE to both channels at frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	buf[i*8] = byte(v)
	buf[i*8+1] = byte(v >> 8)
	buf[i*8+2] = byte(v >> 16)
	buf[i*8+3] = byte(v >> 24)
	buf[i*8+4] = byte(v)
	buf[i*8+5] = byte(v >> 8)
	buf[i*8+6] = byte(v >> 16)
	buf[i*8+7] = byte(v >> 24)
}

// soundReader feeds a rendered sample buffer to an oto player.
type soundReader struct {
	data []byte
	pos  int
}

func (r *soundReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
