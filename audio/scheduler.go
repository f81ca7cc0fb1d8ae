package audio

import (
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/sirupsen/logrus"
)

const (
	sampleRate    = 44100
	channelCount  = 2
	bitDepth      = 0 // 32-bit float frames
	bytesPerFrame = 8 // 2 channels x float32

	// Accent clicks get a louder gain. The base volume is clamped to [0,1]
	// first; the product is clamped to 1 only after multiplication so an
	// accent at full volume still has headroom over the base click.
	accentGain = 1.5

	// Fallback for non-finite volume input.
	defaultVolume = 0.5
)

// Timestamp is a frame count on the audio device's clock, anchored at the
// moment the session was resumed. It is distinct from wall-clock time.
type Timestamp int64

// ClickPlayer schedules metronome clicks on the audio hardware. Every failure
// mode is absorbed here: callers drive it fire-and-forget and logical beat
// timing never depends on it succeeding.
type ClickPlayer struct {
	mu     sync.Mutex
	ctx    *oto.Context
	ready  chan struct{}
	anchor time.Time
	active bool

	normalClick []byte
	accentClick []byte

	log *logrus.Logger
}

func NewClickPlayer(log *logrus.Logger) *ClickPlayer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ClickPlayer{
		normalClick: genClick(clickFreq),
		accentClick: genClick(accentClickFreq),
		log:         log,
	}
}

// Resume opens the hardware session. Hardware failure is logged and absorbed;
// the player stays inactive and clicks are silently dropped.
func (p *ClickPlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx == nil {
		ctx, ready, err := oto.NewContext(sampleRate, channelCount, bitDepth)
		if err != nil {
			p.log.WithError(err).WithField("component", "audio").Warn("audio unavailable, clicks disabled")
			return
		}
		p.ctx = ctx
		p.ready = ready
	}
	if err := p.ctx.Resume(); err != nil {
		p.log.WithError(err).WithField("component", "audio").Warn("audio resume failed")
		return
	}
	p.anchor = time.Now()
	p.active = true
}

// Stop suspends the hardware session. Safe at any state, repeatedly.
func (p *ClickPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	p.active = false
	if p.ctx != nil {
		if err := p.ctx.Suspend(); err != nil {
			p.log.WithError(err).WithField("component", "audio").Warn("audio suspend failed")
		}
	}
}

// Active reports whether a hardware session is open.
func (p *ClickPlayer) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// ConvertToEngineTime maps a logical instant onto the device clock. The
// second return is false when no session is active; callers must treat that
// as "audio unavailable", not as a timing error.
func (p *ClickPlayer) ConvertToEngineTime(logical time.Time) (Timestamp, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active || p.ctx == nil {
		return 0, false
	}
	d := logical.Sub(p.anchor)
	if d < 0 {
		d = 0
	}
	return Timestamp(d.Seconds() * sampleRate), true
}

// PlayTick plays one click. It never fails: volume is sanitized, a missing or
// past timestamp falls back to immediate playback, and a dead session drops
// the click silently.
func (p *ClickPlayer) PlayTick(volume float64, accented bool, at Timestamp, hasAt bool) {
	gain := tickGain(volume, accented)

	p.mu.Lock()
	if !p.active || p.ctx == nil {
		p.mu.Unlock()
		p.log.WithField("component", "audio").Debug("no audio session, click dropped")
		return
	}
	ctx, ready, anchor := p.ctx, p.ready, p.anchor
	p.mu.Unlock()

	samples := p.normalClick
	if accented {
		samples = p.accentClick
	}

	var wait time.Duration
	if hasAt && at >= 0 {
		deadline := anchor.Add(time.Duration(float64(at) / sampleRate * float64(time.Second)))
		wait = time.Until(deadline)
	}

	go func() {
		if wait > 0 {
			time.Sleep(wait)
		}
		select {
		case <-ready:
		default:
			// Hardware not ready yet; drop rather than block the beat.
			return
		}
		player := ctx.NewPlayer(&soundReader{data: samples})
		player.SetVolume(gain)
		player.Play()
		drainAndClose(player)
	}()
}

// clickStream is the slice of the player API the drain loop needs.
type clickStream interface {
	IsPlaying() bool
	Close() error
}

// A click lasts 30ms; a context suspended mid-click never finishes draining,
// so the wait is bounded well past the click length.
const clickDrainTimeout = 200 * time.Millisecond

// drainAndClose waits for the click buffer to play out, then releases the
// player. It always returns within clickDrainTimeout.
func drainAndClose(player clickStream) {
	deadline := time.Now().Add(clickDrainTimeout)
	for player.IsPlaying() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	player.Close()
}

// tickGain sanitizes a requested volume and applies the accent multiplier.
// The result is always finite and in [0,1].
func tickGain(volume float64, accented bool) float64 {
	if math.IsNaN(volume) || math.IsInf(volume, 0) {
		volume = defaultVolume
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	if accented {
		volume *= accentGain
		if volume > 1 {
			volume = 1
		}
	}
	return volume
}
