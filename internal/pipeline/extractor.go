package pipeline

import (
	"time"

	"github.com/olivier-w/asciivideo/internal/decode"
)

// Extractor pulls decoded BGR frames from a video source at a target frame
// rate and pushes them onto a raw queue, terminating with a single EOS
// marker.
type Extractor struct {
	src  *decode.VideoSource
	raw  *Queue
	fps  int
	stop *StopSignal
}

// NewExtractor builds an extractor over an already-constructed video
// source. Start is not called until Run.
func NewExtractor(src *decode.VideoSource, raw *Queue, fps int, stop *StopSignal) *Extractor {
	return &Extractor{src: src, raw: raw, fps: fps, stop: stop}
}

// Run opens the source and drives frames onto the raw queue until the
// stream ends, a read fails, or the stop signal is raised. On open
// failure it emits EOS immediately and returns the error to the caller
// (a source-open failure, per the error taxonomy).
func (e *Extractor) Run() error {
	if err := e.src.Start(); err != nil {
		e.raw.Put(EOS)
		return err
	}
	defer e.src.Close()

	interval := time.Second / time.Duration(e.fps)

	for {
		if e.stop.Stopped() {
			e.raw.Put(EOS)
			return nil
		}

		select {
		case <-e.stop.Done():
			e.raw.Put(EOS)
			return nil
		case <-time.After(interval):
		}

		frame, ok, err := e.src.Next()
		if !ok {
			// Clean EOS and mid-stream read failure are handled
			// identically: emit EOS and stop.
			e.raw.Put(EOS)
			return err
		}
		e.raw.Put(frame)
	}
}
