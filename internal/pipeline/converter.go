package pipeline

import (
	"sync"
	"time"

	"github.com/olivier-w/asciivideo/internal/ascii"
	"github.com/olivier-w/asciivideo/internal/decode"
)

// batchPollInterval bounds the total time collectBatch waits while filling
// one batch, so a partial batch is never held for more than ~10 ms.
const batchPollInterval = 10 * time.Millisecond

// Item pairs a converted frame with the mean conversion latency, in
// milliseconds, of the batch that produced it.
type Item struct {
	Frame        ascii.Frame
	ConversionMS float64
}

// Converter drains the raw queue in batches, dispatches each batch to a
// fixed-size worker pool, and emits one Item per frame onto the ascii
// queue, preserving input order.
type Converter struct {
	raw  *Queue
	out  *Queue
	stop *StopSignal

	variant   ascii.Variant
	newWidth  int
	batchSize int
	workers   int

	Stats *Stats
}

// NewConverter builds a converter. workers is typically
// runtime.NumCPU(), matching the spec's "N = number of hardware threads".
func NewConverter(raw, out *Queue, stop *StopSignal, variant ascii.Variant, newWidth, batchSize, workers int) *Converter {
	if workers < 1 {
		workers = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Converter{
		raw:       raw,
		out:       out,
		stop:      stop,
		variant:   variant,
		newWidth:  newWidth,
		batchSize: batchSize,
		workers:   workers,
		Stats:     NewStats(64),
	}
}

// Run processes batches until EOS is observed or the stop signal is
// raised, flushing any in-flight batch before exiting.
func (c *Converter) Run() {
	for {
		if c.stop.Stopped() {
			return
		}

		batch, eos := c.collectBatch()
		if len(batch) > 0 {
			c.processBatch(batch)
		}
		if eos {
			c.stop.Set()
			return
		}
	}
}

// collectBatch gathers up to batchSize frames, waiting no more than
// batchPollInterval total across the whole attempt. It reports whether EOS
// was observed while collecting.
func (c *Converter) collectBatch() ([]decode.Frame, bool) {
	batch := make([]decode.Frame, 0, c.batchSize)
	deadline := time.Now().Add(batchPollInterval)

	for len(batch) < c.batchSize {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		v, err := c.raw.Get(remaining)
		if err != nil {
			break
		}
		if IsEOS(v) {
			return batch, true
		}
		batch = append(batch, v.(decode.Frame))
	}
	return batch, false
}

// processBatch converts every frame in the batch in parallel across the
// worker pool (one work unit per frame, not one unit per batch), then
// emits results onto the ascii queue in the original input order.
func (c *Converter) processBatch(batch []decode.Frame) {
	n := len(batch)
	results := make([]ascii.Frame, n)

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.workers)

	start := time.Now()
	for i, f := range batch {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, f decode.Frame) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = ascii.Convert(c.variant, f.Pix, f.W, f.H, c.newWidth)
		}(i, f)
	}
	wg.Wait()
	elapsed := time.Since(start)

	meanMS := elapsed.Seconds() * 1000 / float64(n)
	for _, frame := range results {
		c.out.Put(Item{Frame: frame, ConversionMS: meanMS})
		c.Stats.Record(meanMS)
	}
}
