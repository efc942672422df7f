package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func tempVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("not a real video"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestParseDefaults(t *testing.T) {
	video := tempVideo(t)
	var stderr bytes.Buffer

	args, err := Parse([]string{video, "80"}, &stderr)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if args.VideoPath != video || args.Width != 80 {
		t.Errorf("args = %+v", args)
	}
	if args.FPS != 10 || args.BatchSize != 1 {
		t.Errorf("expected default fps=10 batch_size=1, got fps=%d batch_size=%d", args.FPS, args.BatchSize)
	}
	if args.UseThreads || args.UseCurses || args.CursesColor || args.LogFPS || args.LogPerf {
		t.Errorf("expected all boolean flags false by default, got %+v", args)
	}
}

func TestParseAllFlags(t *testing.T) {
	video := tempVideo(t)
	var stderr bytes.Buffer

	args, err := Parse([]string{
		"--fps=24", "--batch_size=4", "--use_threads", "--use_curses",
		"--curses_color", "--color", "--log_fps", "--log_performance",
		video, "120",
	}, &stderr)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if args.FPS != 24 || args.BatchSize != 4 {
		t.Errorf("got fps=%d batch_size=%d", args.FPS, args.BatchSize)
	}
	if !args.UseThreads || !args.UseCurses || !args.CursesColor || !args.Color || !args.LogFPS || !args.LogPerf {
		t.Errorf("expected all boolean flags true, got %+v", args)
	}
	if args.Width != 120 {
		t.Errorf("width = %d, want 120", args.Width)
	}
}

func TestParseMissingPositionalArgs(t *testing.T) {
	var stderr bytes.Buffer
	if _, err := Parse([]string{}, &stderr); err == nil {
		t.Fatal("expected an error with no positional arguments")
	}
	if stderr.Len() == 0 {
		t.Error("expected a usage message written to stderr")
	}
}

func TestParseMissingVideoFile(t *testing.T) {
	var stderr bytes.Buffer
	_, err := Parse([]string{"/no/such/file.mp4", "80"}, &stderr)
	if err == nil {
		t.Fatal("expected an error for a nonexistent video path")
	}
}

func TestParseInvalidWidth(t *testing.T) {
	video := tempVideo(t)
	var stderr bytes.Buffer
	if _, err := Parse([]string{video, "not-a-number"}, &stderr); err == nil {
		t.Fatal("expected an error for a non-integer width")
	}
}

func TestParseRejectsNonPositiveFPS(t *testing.T) {
	video := tempVideo(t)
	var stderr bytes.Buffer
	if _, err := Parse([]string{"--fps=0", video, "80"}, &stderr); err == nil {
		t.Fatal("expected an error for --fps=0")
	}
}

func TestParseFlagsAfterPositionals(t *testing.T) {
	video := tempVideo(t)
	var stderr bytes.Buffer

	args, err := Parse([]string{video, "100", "--use_curses", "--fps", "30"}, &stderr)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if args.VideoPath != video || args.Width != 100 {
		t.Errorf("args = %+v", args)
	}
	if !args.UseCurses {
		t.Error("expected --use_curses after positionals to still be recognized")
	}
	if args.FPS != 30 {
		t.Errorf("fps = %d, want 30 (space-separated flag value after positionals)", args.FPS)
	}
}
