package render

import (
	"strings"
	"testing"

	"github.com/olivier-w/asciivideo/internal/ascii"
	"github.com/olivier-w/asciivideo/internal/term"
)

func TestDiffBoundsCommonPrefixSuffix(t *testing.T) {
	start, end := diffBounds("hello world", "hellX world")
	if start != 4 {
		t.Errorf("start = %d, want 4", start)
	}
	if end != 4 {
		t.Errorf("end = %d, want 4", end)
	}
}

func TestDiffBoundsIdentical(t *testing.T) {
	start, end := diffBounds("same", "same")
	if end >= start {
		t.Errorf("expected an empty diff window for identical strings, got [%d,%d]", start, end)
	}
}

func TestSpacesIsCached(t *testing.T) {
	a := spaces(5)
	b := spaces(5)
	if a != "     " || b != "     " {
		t.Errorf("spaces(5) = %q, %q", a, b)
	}
}

func TestClipString(t *testing.T) {
	if got := clipString("abcdef", 3); got != "abc" {
		t.Errorf("clipString = %q, want %q", got, "abc")
	}
	if got := clipString("ab", 3); got != "ab" {
		t.Errorf("clipString should not pad, got %q", got)
	}
}

func TestScreenRendererFirstFrameWritesWholeLine(t *testing.T) {
	var buf strings.Builder
	s := term.NewScreenSize(&buf, 80, 24)
	r := NewScreenRenderer(s)

	r.Render(ascii.PlainText{Lines: []string{"hello"}, Cols_: 5})

	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected full line on first render, got %q", buf.String())
	}
}

func TestScreenRendererSmallEditOnlyTouchesDiff(t *testing.T) {
	var buf strings.Builder
	s := term.NewScreenSize(&buf, 80, 24)
	r := NewScreenRenderer(s)

	r.Render(ascii.PlainText{Lines: []string{"aaaaaaaaaa"}, Cols_: 10})
	buf.Reset()
	r.Render(ascii.PlainText{Lines: []string{"aaaaXaaaaa"}, Cols_: 10})

	out := buf.String()
	if !strings.Contains(out, "X") {
		t.Fatalf("expected changed char in output, got %q", out)
	}
	if strings.Contains(out, "aaaaaaaaaa") {
		t.Errorf("expected a partial update, not a full line redraw, got %q", out)
	}
}

func TestScreenRendererLargeEditFullyRedraws(t *testing.T) {
	var buf strings.Builder
	s := term.NewScreenSize(&buf, 80, 24)
	r := NewScreenRenderer(s)

	r.Render(ascii.PlainText{Lines: []string{"aaaa"}, Cols_: 4})
	buf.Reset()
	r.Render(ascii.PlainText{Lines: []string{""}, Cols_: 0})

	if !strings.Contains(buf.String(), "\x1b[K") {
		t.Errorf("expected full-line clear escape on large delta, got %q", buf.String())
	}
}

func TestScreenRendererPollQuit(t *testing.T) {
	var buf strings.Builder
	s := term.NewScreenSize(&buf, 80, 24)
	r := NewScreenRenderer(s)
	if r.PollQuit() {
		t.Error("expected no pending key")
	}
}
