package ascii

import "fmt"

// Kind identifies which AsciiFrame shape a Frame value carries.
type Kind int

const (
	KindPlainText Kind = iota
	KindAnsiText
	KindColorCells
)

// Frame is the tagged union described by the data model: exactly one of
// PlainText, AnsiText, or ColorCells satisfies it.
type Frame interface {
	Kind() Kind
	Rows() int
	Cols() int
}

// PlainText is a newline-joined grid of glyphs, one line per output row,
// all lines of equal visible width.
type PlainText struct {
	Lines []string
	Cols_ int
}

func (f PlainText) Kind() Kind { return KindPlainText }
func (f PlainText) Rows() int  { return len(f.Lines) }
func (f PlainText) Cols() int  { return f.Cols_ }

// AnsiText is the same shape as PlainText, but each line carries a 24-bit
// foreground SGR introducer before every character and a reset after it.
type AnsiText struct {
	Lines []string
	Cols_ int
}

func (f AnsiText) Kind() Kind { return KindAnsiText }
func (f AnsiText) Rows() int  { return len(f.Lines) }
func (f AnsiText) Cols() int  { return f.Cols_ }

// Cell is one (glyph, xterm-256 palette index) pair in a ColorCells grid.
type Cell struct {
	Ch      rune
	Palette int
}

// ColorCells is a dense 2-D grid of (char, palette-index) cells.
type ColorCells struct {
	Grid [][]Cell
}

func (f ColorCells) Kind() Kind { return KindColorCells }
func (f ColorCells) Rows() int  { return len(f.Grid) }
func (f ColorCells) Cols() int {
	if len(f.Grid) == 0 {
		return 0
	}
	return len(f.Grid[0])
}

// NewHeight computes the row count for an output grid of the given target
// width, preserving source aspect ratio with the 0.5 cell-aspect correction
// used throughout this system (terminal character cells are roughly twice
// as tall as they are wide).
func NewHeight(srcW, srcH, newWidth int) int {
	h := int(float64(srcH) / float64(srcW) * float64(newWidth) * 0.5)
	if h < 1 {
		h = 1
	}
	return h
}

// rgbPixel is a resized, BGR->RGB converted pixel.
type rgbPixel struct {
	r, g, b uint8
}

// resizeBilinear resizes a BGR24 (3 bytes per pixel, row-major) source image
// of srcW x srcH to dstW x dstH using bilinear sampling, converting BGR to
// RGB in the same pass.
func resizeBilinear(src []byte, srcW, srcH, dstW, dstH int) []rgbPixel {
	out := make([]rgbPixel, dstW*dstH)
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return out
	}

	xRatio := float64(srcW) / float64(dstW)
	yRatio := float64(srcH) / float64(dstH)

	sample := func(x, y int) (uint8, uint8, uint8) {
		if x >= srcW {
			x = srcW - 1
		}
		if y >= srcH {
			y = srcH - 1
		}
		off := (y*srcW + x) * 3
		// source is BGR; return as RGB.
		return src[off+2], src[off+1], src[off]
	}

	for dy := 0; dy < dstH; dy++ {
		sy := float64(dy) * yRatio
		y0 := int(sy)
		fy := sy - float64(y0)
		y1 := y0 + 1

		for dx := 0; dx < dstW; dx++ {
			sx := float64(dx) * xRatio
			x0 := int(sx)
			fx := sx - float64(x0)
			x1 := x0 + 1

			r00, g00, b00 := sample(x0, y0)
			r10, g10, b10 := sample(x1, y0)
			r01, g01, b01 := sample(x0, y1)
			r11, g11, b11 := sample(x1, y1)

			r := bilerp(r00, r10, r01, r11, fx, fy)
			g := bilerp(g00, g10, g01, g11, fx, fy)
			b := bilerp(b00, b10, b01, b11, fx, fy)

			out[dy*dstW+dx] = rgbPixel{r, g, b}
		}
	}
	return out
}

func bilerp(v00, v10, v01, v11 uint8, fx, fy float64) uint8 {
	top := float64(v00)*(1-fx) + float64(v10)*fx
	bot := float64(v01)*(1-fx) + float64(v11)*fx
	return uint8(top*(1-fy) + bot*fy + 0.5)
}

// ConvertPlainText converts a BGR24 frame into a PlainText ascii.Frame.
func ConvertPlainText(src []byte, srcW, srcH, newWidth int) PlainText {
	newH := NewHeight(srcW, srcH, newWidth)
	px := resizeBilinear(src, srcW, srcH, newWidth, newH)

	lines := make([]string, newH)
	buf := make([]rune, newWidth)
	for y := 0; y < newH; y++ {
		for x := 0; x < newWidth; x++ {
			p := px[y*newWidth+x]
			buf[x] = Glyph(Luminance(p.r, p.g, p.b))
		}
		lines[y] = string(buf)
	}
	return PlainText{Lines: lines, Cols_: newWidth}
}

// ConvertAnsiText converts a BGR24 frame into an AnsiText ascii.Frame: each
// character is prefixed with a 24-bit truecolor SGR introducer and followed
// by a reset.
func ConvertAnsiText(src []byte, srcW, srcH, newWidth int) AnsiText {
	newH := NewHeight(srcW, srcH, newWidth)
	px := resizeBilinear(src, srcW, srcH, newWidth, newH)

	lines := make([]string, newH)
	for y := 0; y < newH; y++ {
		var b []byte
		// Pre-size for the worst case: "\x1b[38;2;255;255;255m" + char + "\x1b[0m".
		b = make([]byte, 0, newWidth*24)
		for x := 0; x < newWidth; x++ {
			p := px[y*newWidth+x]
			ch := Glyph(Luminance(p.r, p.g, p.b))
			b = append(b, fmt.Sprintf("\x1b[38;2;%d;%d;%dm%c\x1b[0m", p.r, p.g, p.b, ch)...)
		}
		lines[y] = string(b)
	}
	return AnsiText{Lines: lines, Cols_: newWidth}
}

// ConvertColorCells converts a BGR24 frame into a ColorCells ascii.Frame: a
// dense grid of (glyph, xterm-256 palette index) cells.
func ConvertColorCells(src []byte, srcW, srcH, newWidth int) ColorCells {
	newH := NewHeight(srcW, srcH, newWidth)
	px := resizeBilinear(src, srcW, srcH, newWidth, newH)

	grid := make([][]Cell, newH)
	for y := 0; y < newH; y++ {
		row := make([]Cell, newWidth)
		for x := 0; x < newWidth; x++ {
			p := px[y*newWidth+x]
			row[x] = Cell{
				Ch:      Glyph(Luminance(p.r, p.g, p.b)),
				Palette: PaletteIndex(p.r, p.g, p.b),
			}
		}
		grid[y] = row
	}
	return ColorCells{Grid: grid}
}

// Variant selects which ascii.Frame shape the converter pool produces.
type Variant int

const (
	VariantPlainText Variant = iota
	VariantAnsiText
	VariantColorCells
)

// Convert dispatches to the converter matching variant.
func Convert(variant Variant, src []byte, srcW, srcH, newWidth int) Frame {
	switch variant {
	case VariantAnsiText:
		return ConvertAnsiText(src, srcW, srcH, newWidth)
	case VariantColorCells:
		return ConvertColorCells(src, srcW, srcH, newWidth)
	default:
		return ConvertPlainText(src, srcW, srcH, newWidth)
	}
}
