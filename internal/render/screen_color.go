package render

import (
	"strings"

	"github.com/olivier-w/asciivideo/internal/ascii"
	"github.com/olivier-w/asciivideo/internal/term"
)

// pairCache lazily maps xterm-256 palette indices to a screen-library
// "color pair" handle, falling back to the default attribute once pair
// capacity is exhausted. Owned by the color renderer, per the resource
// model.
type pairCache struct {
	profile  term.ColorProfile
	maxPairs int
	pairs    map[int]int
}

func newPairCache(profile term.ColorProfile, maxPairs int) *pairCache {
	return &pairCache{profile: profile, maxPairs: maxPairs, pairs: make(map[int]int)}
}

// attr resolves paletteIndex to (escape sequence, attribute key). key
// groups cells that share one attribute for run detection; -1 marks the
// shared "default attribute" fallback group.
func (c *pairCache) attr(paletteIndex int) (string, int) {
	idx := paletteIndex
	if n := c.profile.NumColors(); n > 0 && n < 256 {
		idx = paletteIndex % n
	}
	if _, exists := c.pairs[idx]; !exists {
		if len(c.pairs) >= c.maxPairs {
			return "", -1
		}
		c.pairs[idx] = len(c.pairs)
	}
	return term.FgSeq(c.profile, paletteIndex), idx
}

// defaultMaxPairs is a generous cap matching a typical terminal's COLORS
// capacity; exceeding it is the exhaustion path the spec calls for.
const defaultMaxPairs = 256

// ScreenColorRenderer implements the screen-library color backend (4.5):
// a run-based diff per row against a ColorCells frame.
type ScreenColorRenderer struct {
	screen *term.Screen
	pairs  *pairCache
	mirror ascii.ColorCells
}

// NewScreenColorRenderer builds a renderer over an already raw-mode-entered
// Screen using the given color profile.
func NewScreenColorRenderer(screen *term.Screen, profile term.ColorProfile) *ScreenColorRenderer {
	return &ScreenColorRenderer{screen: screen, pairs: newPairCache(profile, defaultMaxPairs)}
}

// Render diffs frame against the mirror, writing one escape sequence per
// contiguous differing run of matching attribute.
func (r *ScreenColorRenderer) Render(frame ascii.ColorCells) {
	rows, cols := frame.Rows(), frame.Cols()
	if len(r.mirror.Grid) != rows || r.mirror.Cols() != cols {
		r.resize(rows, cols)
	}

	var buf strings.Builder
	for y := 0; y < rows; y++ {
		newRow := frame.Grid[y]
		oldRow := r.mirror.Grid[y]

		x := 0
		for x < cols {
			if newRow[x] == oldRow[x] {
				x++
				continue
			}

			start := x
			seq, key := r.pairs.attr(newRow[x].Palette)
			var run strings.Builder
			run.WriteRune(newRow[x].Ch)
			x++

			for x < cols && newRow[x] != oldRow[x] {
				_, k2 := r.pairs.attr(newRow[x].Palette)
				if k2 != key {
					break
				}
				run.WriteRune(newRow[x].Ch)
				x++
			}

			writeMove(&buf, start, y)
			if seq != "" {
				buf.WriteString(seq)
			}
			buf.WriteString(run.String())
			buf.WriteString(term.ResetSeq)
		}

		copy(oldRow, newRow)
	}

	if buf.Len() > 0 {
		r.screen.WriteString(buf.String())
	}
}

// resize clears the screen and rebuilds the mirror as a fully-blank grid
// so the next frame differs from every cell and fully repaints.
func (r *ScreenColorRenderer) resize(rows, cols int) {
	r.screen.ClearScreen()
	grid := make([][]ascii.Cell, rows)
	for i := range grid {
		row := make([]ascii.Cell, cols)
		for j := range row {
			row[j] = ascii.Cell{Ch: 0, Palette: -1}
		}
		grid[i] = row
	}
	r.mirror = ascii.ColorCells{Grid: grid}
}

// PollQuit performs the per-iteration non-blocking keyboard read.
func (r *ScreenColorRenderer) PollQuit() bool {
	b, ok := r.screen.ReadKey()
	return ok && b == 'q'
}
