package render

import (
	"strings"
	"testing"

	"github.com/olivier-w/asciivideo/internal/ascii"
)

func plainFrame(lines ...string) ascii.PlainText {
	cols := 0
	if len(lines) > 0 {
		cols = len(lines[0])
	}
	return ascii.PlainText{Lines: lines, Cols_: cols}
}

func TestANSIRendererFullPaintOnFirstFrame(t *testing.T) {
	var buf strings.Builder
	r := NewANSIRenderer(&buf)
	r.Render(plainFrame("ab", "cd"), 80, 24)

	out := buf.String()
	if !strings.Contains(out, hideCursorSeq) {
		t.Error("expected cursor to be hidden on first render")
	}
	if !strings.Contains(out, "\x1b[1;1H") || !strings.Contains(out, "\x1b[2;1H") {
		t.Error("expected a reposition escape for every row on first frame")
	}
}

func TestANSIRendererSingleCellChange(t *testing.T) {
	var buf strings.Builder
	r := NewANSIRenderer(&buf)
	r.Render(plainFrame("  ", "  "), 80, 24)

	buf.Reset()
	r.Render(plainFrame("@ ", "  "), 80, 24)

	out := buf.String()
	if strings.Count(out, "\x1b[") != 1 {
		t.Errorf("expected exactly one reposition escape, got output %q", out)
	}
	if !strings.Contains(out, "\x1b[1;1H") {
		t.Errorf("expected move to row 1, got %q", out)
	}
}

func TestANSIRendererResizeClearsAndFullRepaints(t *testing.T) {
	var buf strings.Builder
	r := NewANSIRenderer(&buf)
	r.Render(plainFrame("ab"), 80, 24)

	buf.Reset()
	r.Render(plainFrame("cd"), 100, 30)

	out := buf.String()
	if !strings.HasPrefix(out, clearAndHomeSeq) {
		t.Errorf("expected clear-and-home as first write on resize, got %q", out)
	}
}

func TestANSIRendererClose(t *testing.T) {
	var buf strings.Builder
	r := NewANSIRenderer(&buf)
	r.Render(plainFrame("ab"), 80, 5)
	buf.Reset()
	r.Close()

	out := buf.String()
	if !strings.Contains(out, showCursorSeq) {
		t.Error("expected cursor to be shown on close")
	}
	if strings.Count(out, "\n") != 5 {
		t.Errorf("expected %d newlines to scroll the frame out, got %d", 5, strings.Count(out, "\n"))
	}
}

func TestVisibleLenSkipsEscapes(t *testing.T) {
	s := "\x1b[38;2;1;2;3mX\x1b[0m"
	if got := visibleLen(s); got != 1 {
		t.Errorf("visibleLen(%q) = %d, want 1", s, got)
	}
}
