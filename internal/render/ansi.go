// Package render implements the three terminal renderer backends described
// by the component design: ANSI direct-write, screen-library monochrome,
// and screen-library color, plus the calibration splash.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/olivier-w/asciivideo/internal/ascii"
)

const (
	hideCursorSeq     = "\x1b[?25l"
	showCursorSeq     = "\x1b[?25h"
	clearAndHomeSeq   = "\x1b[2J\x1b[H"
	fullResetSeq      = "\x1bc"
)

// linesOf extracts the line slice from a PlainText or AnsiText frame.
func linesOf(f ascii.Frame) []string {
	switch v := f.(type) {
	case ascii.PlainText:
		return v.Lines
	case ascii.AnsiText:
		return v.Lines
	default:
		return nil
	}
}

// visibleLen sums the terminal column width of runes in s that are not
// part of an ANSI SGR escape sequence, so AnsiText's escape bytes don't
// count toward visible width and any wide/combining glyph still advances
// the cursor by its real column count rather than by one.
func visibleLen(s string) int {
	n := 0
	i := 0
	for i < len(s) {
		if s[i] == 0x1b {
			j := i + 1
			if j < len(s) && s[j] == '[' {
				j++
				for j < len(s) && !(s[j] >= 0x40 && s[j] <= 0x7e) {
					j++
				}
				if j < len(s) {
					j++
				}
			}
			i = j
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		n += runewidth.RuneWidth(r)
		i += size
	}
	return n
}

// ANSIRenderer implements the direct-write, line-diffed backend for
// PlainText and AnsiText frames (4.3).
type ANSIRenderer struct {
	w            io.Writer
	mirror       []string
	termW, termH int
	haveSize     bool
	cursorHidden bool
}

// NewANSIRenderer builds a renderer writing to w.
func NewANSIRenderer(w io.Writer) *ANSIRenderer {
	return &ANSIRenderer{w: w}
}

// Render writes one frame, diffing against the previously committed frame,
// and reports how many lines it actually rewrote — used by the caller to
// log the §6 "Changed lines" figure.
// termW/termH is the renderer's last observed terminal size.
func (r *ANSIRenderer) Render(frame ascii.Frame, termW, termH int) int {
	lines := linesOf(frame)

	var buf strings.Builder
	changed := 0

	if !r.cursorHidden {
		buf.WriteString(hideCursorSeq)
		r.cursorHidden = true
	}

	resized := !r.haveSize || termW != r.termW || termH != r.termH
	if resized {
		buf.WriteString(clearAndHomeSeq)
		r.mirror = nil
		r.termW, r.termH = termW, termH
		r.haveSize = true
	}

	if r.mirror == nil {
		for i, line := range lines {
			fmt.Fprintf(&buf, "\x1b[%d;1H", i+1)
			buf.WriteString(line)
		}
		changed = len(lines)
	} else {
		for i, line := range lines {
			var old string
			if i < len(r.mirror) {
				old = r.mirror[i]
			}
			if line == old {
				continue
			}
			changed++
			fmt.Fprintf(&buf, "\x1b[%d;1H", i+1)
			buf.WriteString(line)
			if newLen, oldLen := visibleLen(line), visibleLen(old); newLen < oldLen {
				buf.WriteString(strings.Repeat(" ", oldLen-newLen))
			}
		}
	}

	r.mirror = lines
	io.WriteString(r.w, buf.String())
	return changed
}

// Close restores terminal state on any exit path: pads the screen with
// blank lines so the final frame scrolls out, then shows the cursor.
func (r *ANSIRenderer) Close() {
	h := r.termH
	if h <= 0 {
		h = 1
	}
	io.WriteString(r.w, strings.Repeat("\n", h))
	io.WriteString(r.w, showCursorSeq)
}
