package audio

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/olivier-w/asciivideo/internal/decode"
)

var (
	globalCtx  *oto.Context
	ctxOnce    sync.Once
	ctxInitErr error
)

// initOto lazily builds the one process-wide oto.Context, matching the
// pattern of a single shared context reused across playback sessions.
func initOto(sampleRate, channels int) (*oto.Context, error) {
	ctxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalCtx, ready, ctxInitErr = oto.NewContext(op)
		if ctxInitErr == nil {
			<-ready
		} else {
			ctxInitErr = friendlyAudioInitError(ctxInitErr)
		}
	})
	return globalCtx, ctxInitErr
}

func friendlyAudioInitError(err error) error {
	if err == nil || runtime.GOOS != "linux" {
		return err
	}
	msg := strings.ToLower(err.Error())
	noDevice := strings.Contains(msg, "alsa error at snd_pcm_open") ||
		strings.Contains(msg, "unknown pcm default") ||
		strings.Contains(msg, "cannot find card '0'")
	if !noDevice {
		return err
	}
	return fmt.Errorf("no Linux audio output device found (ALSA default device unavailable); configure ALSA/PipeWire/PulseAudio or run with audio disabled: %w", err)
}

// Player drives oto playback from a Sync clock and exposes the clock for
// the video side to query and correct against.
type Player struct {
	sync      *Sync
	otoPlayer *oto.Player

	mu     sync.Mutex
	closed bool

	done    chan struct{}
	doneSet sync.Once
}

// NewPlayer initializes oto (if not already initialized for this process)
// and wires a playback Sync around buf. Playback does not start until
// Start is called.
func NewPlayer(buf decode.AudioBuffer) (*Player, error) {
	ctx, err := initOto(buf.SampleRate, buf.Channels)
	if err != nil {
		return nil, err
	}

	s := NewSync(buf)
	return &Player{
		sync:      s,
		otoPlayer: ctx.NewPlayer(s),
		done:      make(chan struct{}),
	}, nil
}

// Start begins playback and launches the goroutine that watches for
// end-of-stream.
func (p *Player) Start() {
	p.otoPlayer.Play()
	go p.watchEOS()
}

func (p *Player) watchEOS() {
	select {
	case <-p.sync.Done():
	}
	p.doneSet.Do(func() { close(p.done) })
}

// Done reports end-of-stream, mirroring a fixed-length poll loop with an
// event instead.
func (p *Player) Done() <-chan struct{} { return p.done }

// AudioTime reports the synchronizer's current playback position.
func (p *Player) AudioTime() time.Duration { return p.sync.AudioTime() }

// UpdateVideoTime forwards the video clock's position to the synchronizer
// so it can request a resync if drift exceeds tolerance.
func (p *Player) UpdateVideoTime(videoTime time.Duration) { p.sync.UpdateVideoTime(videoTime) }

// Stop halts playback without blocking: oto's Close can stall briefly
// waiting on the platform audio backend, so it runs on its own goroutine
// with a short grace period rather than holding up shutdown.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	closed := make(chan struct{})
	go func() {
		p.otoPlayer.Pause()
		p.otoPlayer.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(100 * time.Millisecond):
	}
}
