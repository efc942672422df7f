// Package audio plays a video's decoded PCM track back against a
// speculative, drift-correcting clock and exposes it for video-side sync.
package audio

import (
	"io"
	"sync"
	"time"

	"github.com/olivier-w/asciivideo/internal/decode"
)

// DefaultTolerance is the maximum audio/video drift, in either direction,
// tolerated before the synchronizer snaps audio_time to the video's
// reported position.
const DefaultTolerance = 100 * time.Millisecond

type setTimeCmd struct {
	t time.Duration
}

// Sync is a drift-correcting audio clock: an io.Reader pulling PCM bytes
// out of an in-memory buffer at a speculatively-advancing position, plus a
// bounded queue the video side uses to request resync when it drifts too
// far from the audio clock.
type Sync struct {
	buf       decode.AudioBuffer
	tolerance time.Duration

	mu        sync.Mutex
	audioTime time.Duration

	cmds chan setTimeCmd

	eosOnce sync.Once
	eos     chan struct{}
}

// NewSync builds a synchronizer over buf with the default drift tolerance.
func NewSync(buf decode.AudioBuffer) *Sync {
	return &Sync{
		buf:       buf,
		tolerance: DefaultTolerance,
		cmds:      make(chan setTimeCmd, 32),
		eos:       make(chan struct{}),
	}
}

// AudioTime reports the synchronizer's current playback position.
func (s *Sync) AudioTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audioTime
}

// UpdateVideoTime enqueues a resync request only if the video's reported
// position has drifted from the audio clock beyond tolerance; a command
// queue full of stale requests is dropped rather than blocking the caller.
func (s *Sync) UpdateVideoTime(videoTime time.Duration) {
	if driftExceeds(s.AudioTime(), videoTime, s.tolerance) {
		select {
		case s.cmds <- setTimeCmd{t: videoTime}:
		default:
		}
	}
}

// Done is closed once playback has consumed the entire buffer.
func (s *Sync) Done() <-chan struct{} { return s.eos }

// Read implements io.Reader, called from the audio playback goroutine. It
// advances audio_time speculatively by the frame count requested, then
// drains any pending resync commands, snapping only if the queued time
// differs from the speculative advance by more than tolerance.
func (s *Sync) Read(p []byte) (int, error) {
	s.mu.Lock()

	frameBytes := s.buf.Channels * 2
	if frameBytes <= 0 {
		s.mu.Unlock()
		return 0, io.EOF
	}
	frames := len(p) / frameBytes

	totalFrames := s.buf.NumFrames()
	startIdx := int(s.audioTime.Seconds() * float64(s.buf.SampleRate))
	if startIdx >= totalFrames {
		s.mu.Unlock()
		s.signalEOS()
		return 0, io.EOF
	}

	s.audioTime += time.Duration(float64(frames) / float64(s.buf.SampleRate) * float64(time.Second))

drain:
	for {
		select {
		case cmd := <-s.cmds:
			if driftExceeds(s.audioTime, cmd.t, s.tolerance) {
				s.audioTime = cmd.t
				startIdx = int(cmd.t.Seconds() * float64(s.buf.SampleRate))
			}
		default:
			break drain
		}
	}
	s.mu.Unlock()

	endIdx := startIdx + frames
	startSample := startIdx * s.buf.Channels
	endSample := endIdx * s.buf.Channels
	if endSample > len(s.buf.Samples) {
		endSample = len(s.buf.Samples)
	}

	n := 0
	if startSample < endSample {
		for i, v := range s.buf.Samples[startSample:endSample] {
			off := i * 2
			p[off] = byte(uint16(v))
			p[off+1] = byte(uint16(v) >> 8)
		}
		n = (endSample - startSample) * 2
	}
	for i := n; i < len(p); i++ {
		p[i] = 0
	}

	if endIdx >= totalFrames {
		s.signalEOS()
	}
	return len(p), nil
}

func (s *Sync) signalEOS() {
	s.eosOnce.Do(func() { close(s.eos) })
}

func driftExceeds(a, b time.Duration, tolerance time.Duration) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d > tolerance
}
