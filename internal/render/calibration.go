package render

import (
	"bufio"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/asciivideo/internal/ascii"
)

// CalibrationFrame builds the calibration splash: a solid block interior,
// a border on all edges, and a cross through the middle row and column.
func CalibrationFrame(width, height int) ascii.PlainText {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	midRow, midCol := height/2, width/2
	lines := make([]string, height)
	row := make([]rune, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch {
			case y == 0 || y == height-1 || x == 0 || x == width-1:
				row[x] = '#'
			case y == midRow || x == midCol:
				row[x] = '+'
			default:
				row[x] = '█'
			}
		}
		lines[y] = string(row)
	}
	return ascii.PlainText{Lines: lines, Cols_: width}
}

var calibrationBanner = lipgloss.NewStyle().Bold(true).Render("calibration - press enter to continue")

// ShowCalibration displays the calibration frame until the operator
// presses enter, then fully resets the terminal.
func ShowCalibration(w io.Writer, in io.Reader, width, height int) {
	frame := CalibrationFrame(width, height)

	io.WriteString(w, clearAndHomeSeq)
	for _, line := range frame.Lines {
		io.WriteString(w, line)
		io.WriteString(w, "\n")
	}
	io.WriteString(w, calibrationBanner+"\n")

	bufio.NewReader(in).ReadString('\n')

	io.WriteString(w, fullResetSeq)
}
