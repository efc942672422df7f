package pipeline

import (
	"testing"
	"time"

	"github.com/olivier-w/asciivideo/internal/ascii"
	"github.com/olivier-w/asciivideo/internal/decode"
)

func solidFrame(w, h int, b, g, r byte) decode.Frame {
	buf := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		buf[i*3] = b
		buf[i*3+1] = g
		buf[i*3+2] = r
	}
	return decode.Frame{Pix: buf, W: w, H: h}
}

func TestConverterPreservesOrder(t *testing.T) {
	raw := NewQueue(8)
	out := NewQueue(8)
	stop := NewStopSignal()

	frames := []decode.Frame{
		solidFrame(4, 4, 0, 0, 0),
		solidFrame(4, 4, 64, 64, 64),
		solidFrame(4, 4, 255, 255, 255),
	}
	for _, f := range frames {
		raw.Put(f)
	}
	raw.Put(EOS)

	c := NewConverter(raw, out, stop, ascii.VariantPlainText, 4, 2, 2)
	c.Run()

	if !stop.Stopped() {
		t.Fatal("converter should set stop signal on EOS")
	}

	var got []Item
	for {
		v, err := out.Get(10 * time.Millisecond)
		if err != nil {
			break
		}
		got = append(got, v.(Item))
	}

	if len(got) != len(frames) {
		t.Fatalf("got %d items, want %d", len(got), len(frames))
	}
	for i, item := range got {
		want := ascii.ConvertPlainText(frames[i].Pix, 4, 4, 4)
		plain := item.Frame.(ascii.PlainText)
		if len(plain.Lines) != len(want.Lines) || plain.Lines[0] != want.Lines[0] {
			t.Errorf("item %d mismatched conversion", i)
		}
	}
}

func TestConverterBatchSizeIndependence(t *testing.T) {
	// Same frame sequence through batch_size=1 and batch_size=k must
	// produce identical outputs up to ordering (insertion order here).
	frames := []decode.Frame{
		solidFrame(2, 2, 10, 20, 30),
		solidFrame(2, 2, 200, 100, 50),
	}

	run := func(batchSize int) []string {
		raw := NewQueue(8)
		out := NewQueue(8)
		stop := NewStopSignal()
		for _, f := range frames {
			raw.Put(f)
		}
		raw.Put(EOS)
		c := NewConverter(raw, out, stop, ascii.VariantPlainText, 2, batchSize, 4)
		c.Run()

		var lines []string
		for {
			v, err := out.Get(10 * time.Millisecond)
			if err != nil {
				break
			}
			item := v.(Item)
			lines = append(lines, item.Frame.(ascii.PlainText).Lines...)
		}
		return lines
	}

	a := run(1)
	b := run(2)
	if len(a) != len(b) {
		t.Fatalf("len mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("line %d differs: %q vs %q", i, a[i], b[i])
		}
	}
}
