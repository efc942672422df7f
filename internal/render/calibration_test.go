package render

import (
	"strings"
	"testing"
)

func TestCalibrationFrameBorderAndCross(t *testing.T) {
	f := CalibrationFrame(5, 5)
	if len(f.Lines) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(f.Lines))
	}
	if f.Lines[0] != "#####" || f.Lines[4] != "#####" {
		t.Errorf("expected top/bottom border rows of '#', got %q / %q", f.Lines[0], f.Lines[4])
	}
	mid := f.Lines[2]
	if mid[0] != '#' || mid[4] != '#' {
		t.Errorf("expected border columns on middle row, got %q", mid)
	}
	if mid[2] != '+' {
		t.Errorf("expected cross center at midpoint, got %q", mid)
	}
	if []rune(f.Lines[1])[2] != '+' {
		t.Errorf("expected vertical cross arm at col 2 row 1, got %q", f.Lines[1])
	}
}

func TestCalibrationFrameInteriorIsSolid(t *testing.T) {
	f := CalibrationFrame(5, 5)
	if got := []rune(f.Lines[1])[1]; got != '█' {
		t.Errorf("expected solid interior glyph, got %q", got)
	}
}

func TestCalibrationFrameClampsMinimumSize(t *testing.T) {
	f := CalibrationFrame(0, 0)
	if len(f.Lines) != 1 || len(f.Lines[0]) != 1 {
		t.Errorf("expected clamping to 1x1, got %d rows of width %d", len(f.Lines), len(f.Lines[0]))
	}
}

func TestShowCalibrationWritesFrameAndWaitsForEnter(t *testing.T) {
	var out strings.Builder
	in := strings.NewReader("\n")

	ShowCalibration(&out, in, 4, 4)

	s := out.String()
	if !strings.Contains(s, "####") {
		t.Errorf("expected border in calibration output, got %q", s)
	}
	if !strings.Contains(s, fullResetSeq) {
		t.Errorf("expected full reset sequence at end, got %q", s)
	}
}
