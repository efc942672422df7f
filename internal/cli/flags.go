// Package cli parses the command line for the asciivideo renderer.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// Args holds the parsed, validated command line.
type Args struct {
	VideoPath string
	Width     int

	FPS       int
	BatchSize int

	UseThreads  bool // recognized, semantically a no-op: see internal/pipeline.
	UseCurses   bool
	CursesColor bool
	Color       bool // ANSI backend only: emit AnsiText instead of PlainText.
	LogFPS      bool
	LogPerf     bool
}

const usage = "Usage: asciivideo <video_path> <width> [--fps=10] [--batch_size=1] [--use_threads] [--use_curses] [--curses_color] [--color] [--log_fps] [--log_performance]\n"

// valueFlags names the flags that consume a following argument when given
// space-separated (e.g. "--fps 10" rather than "--fps=10"); reorderArgs
// needs this to avoid mistaking a flag's value for a positional argument.
var valueFlags = map[string]bool{"fps": true, "batch_size": true}

// reorderArgs splits argv into its flag tokens and positional tokens,
// preserving each group's relative order, so positional arguments may
// appear before, after, or interleaved with flags. The stdlib flag package
// otherwise stops parsing at the first non-flag token, which would
// silently strand any flag placed after <video_path>/<width> as the usage
// string documents.
func reorderArgs(argv []string) (flags, positional []string) {
	for i := 0; i < len(argv); i++ {
		a := argv[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if strings.Contains(a, "=") {
			continue
		}
		name := strings.TrimLeft(a, "-")
		if valueFlags[name] && i+1 < len(argv) {
			i++
			flags = append(flags, argv[i])
		}
	}
	return flags, positional
}

// Parse validates argv (excluding the program name) and returns an error on
// anything malformed. The usage message is written to stderr only when flag
// parsing fails or the positional arguments are missing; the other
// validation errors are returned without writing anything.
func Parse(argv []string, stderr io.Writer) (Args, error) {
	fs := flag.NewFlagSet("asciivideo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { io.WriteString(stderr, usage) }

	fps := fs.Int("fps", 10, "target frames per second")
	batchSize := fs.Int("batch_size", 1, "frames per conversion batch")
	useThreads := fs.Bool("use_threads", false, "use a thread pool instead of a process pool (no-op on this runtime)")
	useCurses := fs.Bool("use_curses", false, "use the screen-library backend instead of direct ANSI writes")
	cursesColor := fs.Bool("curses_color", false, "with --use_curses, render in color")
	color := fs.Bool("color", false, "without --use_curses, emit 24-bit ANSI color instead of plain text")
	logFPS := fs.Bool("log_fps", false, "log measured frames per second")
	logPerf := fs.Bool("log_performance", false, "log per-stage latency statistics")

	flagArgs, pos := reorderArgs(argv)
	if err := fs.Parse(flagArgs); err != nil {
		return Args{}, err
	}

	if len(pos) < 2 {
		fs.Usage()
		return Args{}, fmt.Errorf("expected <video_path> <width>, got %d positional arguments", len(pos))
	}

	videoPath := pos[0]
	if _, err := os.Stat(videoPath); err != nil {
		return Args{}, fmt.Errorf("opening %s: %w", videoPath, err)
	}

	var width int
	if _, err := fmt.Sscanf(pos[1], "%d", &width); err != nil || width < 1 {
		return Args{}, fmt.Errorf("width must be a positive integer, got %q", pos[1])
	}

	if *fps < 1 {
		return Args{}, fmt.Errorf("--fps must be a positive integer, got %d", *fps)
	}
	if *batchSize < 1 {
		return Args{}, fmt.Errorf("--batch_size must be a positive integer, got %d", *batchSize)
	}

	return Args{
		VideoPath:   videoPath,
		Width:       width,
		FPS:         *fps,
		BatchSize:   *batchSize,
		UseThreads:  *useThreads,
		UseCurses:   *useCurses,
		CursesColor: *cursesColor,
		Color:       *color,
		LogFPS:      *logFPS,
		LogPerf:     *logPerf,
	}, nil
}
