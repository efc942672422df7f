package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/olivier-w/asciivideo/internal/ascii"
	"github.com/olivier-w/asciivideo/internal/term"
)

// ScreenRenderer implements the screen-library monochrome backend (4.4):
// a character-level diff per row against a PlainText frame, using a
// common-prefix/suffix window and a full-line-redraw threshold.
type ScreenRenderer struct {
	screen *term.Screen
	mirror []string
}

// NewScreenRenderer builds a renderer over an already raw-mode-entered
// Screen.
func NewScreenRenderer(screen *term.Screen) *ScreenRenderer {
	return &ScreenRenderer{screen: screen}
}

// Render diffs frame's lines against the mirror and writes only the
// changed spans.
func (r *ScreenRenderer) Render(frame ascii.Frame) {
	lines := linesOf(frame)

	size := r.screen.Size()
	clip := size.Width - 1
	if clip < 0 {
		clip = 0
	}

	if len(r.mirror) != len(lines) {
		r.mirror = make([]string, len(lines))
	}

	var buf strings.Builder
	for i, rawNew := range lines {
		newLine := clipString(rawNew, clip)
		oldLine := clipString(r.mirror[i], clip)

		if newLine == oldLine {
			continue
		}

		delta := len(newLine) - len(oldLine)
		if abs(delta) > len(newLine)/2 {
			writeMove(&buf, 0, i)
			buf.WriteString("\x1b[K")
			buf.WriteString(newLine)
		} else {
			start, end := diffBounds(oldLine, newLine)
			if len(newLine) != len(oldLine) {
				// The common-suffix window only lines up column for
				// column when both lines have the same length; otherwise
				// the in-place span stops at the shared length.
				end = min(len(oldLine), len(newLine)) - 1
			}
			if end >= start {
				writeMove(&buf, start, i)
				buf.WriteString(newLine[start : end+1])
			}
			switch {
			case len(newLine) > len(oldLine):
				tailStart := len(oldLine)
				if start > tailStart {
					tailStart = start
				}
				writeMove(&buf, tailStart, i)
				buf.WriteString(newLine[tailStart:])
			case len(oldLine) > len(newLine):
				writeMove(&buf, len(newLine), i)
				buf.WriteString(spaces(len(oldLine) - len(newLine)))
			}
		}

		r.mirror[i] = rawNew
	}

	if buf.Len() > 0 {
		r.screen.WriteString(buf.String())
	}
}

// PollQuit performs the per-iteration non-blocking keyboard read and
// reports whether 'q' was pressed.
func (r *ScreenRenderer) PollQuit() bool {
	b, ok := r.screen.ReadKey()
	return ok && b == 'q'
}

// Resize does nothing: Render reads the Screen's current size on every
// frame, and the mirror is kept rather than cleared on a size change.
func (r *ScreenRenderer) Resize() {}

// clipString truncates s to at most max display columns, respecting
// wide/combining rune boundaries rather than cutting mid-glyph.
func clipString(s string, max int) string {
	if max < 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "")
}

// diffBounds finds the common-prefix length (start) and the index of the
// last differing byte in new within the common-suffix window (end).
func diffBounds(old, new string) (start, end int) {
	minLen := len(old)
	if len(new) < minLen {
		minLen = len(new)
	}
	for start < minLen && old[start] == new[start] {
		start++
	}

	oldEnd, newEnd := len(old), len(new)
	for oldEnd > start && newEnd > start && old[oldEnd-1] == new[newEnd-1] {
		oldEnd--
		newEnd--
	}
	end = newEnd - 1
	return start, end
}

var spaceCache = map[int]string{}

// spaces returns a cached run of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	if s, ok := spaceCache[n]; ok {
		return s
	}
	s := strings.Repeat(" ", n)
	spaceCache[n] = s
	return s
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func writeMove(buf *strings.Builder, x, y int) {
	buf.WriteByte(0x1b)
	buf.WriteByte('[')
	buf.WriteString(itoa(y + 1))
	buf.WriteByte(';')
	buf.WriteString(itoa(x + 1))
	buf.WriteByte('H')
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [10]byte
	i := len(b)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
