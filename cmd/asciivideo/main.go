// Command asciivideo renders a video file as a live ASCII-art stream in the
// terminal, with audio playback synchronized to the video timeline.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/olivier-w/asciivideo/internal/applog"
	"github.com/olivier-w/asciivideo/internal/ascii"
	"github.com/olivier-w/asciivideo/internal/audio"
	"github.com/olivier-w/asciivideo/internal/cli"
	"github.com/olivier-w/asciivideo/internal/decode"
	"github.com/olivier-w/asciivideo/internal/pipeline"
	"github.com/olivier-w/asciivideo/internal/render"
	"github.com/olivier-w/asciivideo/internal/term"
)

func main() {
	os.Exit(run())
}

func run() int {
	args, err := cli.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		return 1
	}

	logger, closeLog, err := applog.Open("ascii_video.log")
	if err != nil {
		logger = applog.Discard()
	} else {
		defer closeLog()
	}

	probe, err := decode.ProbeMedia(args.VideoPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if !probe.HasVideo {
		fmt.Fprintf(os.Stderr, "Error: %s has no video stream\n", args.VideoPath)
		return 1
	}

	newHeight := ascii.NewHeight(probe.Width, probe.Height, args.Width)
	render.ShowCalibration(os.Stdout, os.Stdin, args.Width, newHeight)

	variant, backend := selectBackend(args)

	queueCap := args.FPS * 3
	rawQueue := pipeline.NewQueue(queueCap)
	asciiQueue := pipeline.NewQueue(queueCap)
	stop := pipeline.NewStopSignal()

	// The source is decoded at its native resolution; the converter alone
	// resizes to (args.Width, newHeight), applying the 0.5 cell-aspect
	// correction exactly once (see ascii.NewHeight).
	videoSrc := decode.NewVideoSource(args.VideoPath, probe.Width, probe.Height, args.FPS)
	extractor := pipeline.NewExtractor(videoSrc, rawQueue, args.FPS, stop)

	workers := runtime.NumCPU()
	converter := pipeline.NewConverter(rawQueue, asciiQueue, stop, variant, args.Width, args.BatchSize, workers)

	extractorErr := make(chan error, 1)
	go func() { extractorErr <- extractor.Run() }()
	go converter.Run()

	var player *audio.Player
	if probe.HasAudio {
		buf, err := decode.ExtractAudio(args.VideoPath, probe.SampleRate, probe.Channels)
		if err != nil {
			logger.Printf("audio disabled: %v", err)
		} else if p, err := audio.NewPlayer(buf); err != nil {
			logger.Printf("audio disabled: %v", err)
		} else {
			player = p
			player.Start()
		}
	}

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupted)

	exitCode := renderLoop(backend, asciiQueue, stop, player, converter.Stats, args, logger, interrupted)

	stop.Set()
	if player != nil {
		player.Stop()
	}
	videoSrc.Close()

	select {
	case err := <-extractorErr:
		if err != nil {
			logger.Printf("extractor error: %v", err)
		}
	case <-time.After(time.Second):
	}

	return exitCode
}

// selectBackend resolves the flag combination to a converter variant and a
// renderer constructor, matching spec.md §6's precedence: --use_curses
// selects the screen-library family, --curses_color within it selects the
// color sub-backend; outside --use_curses, --color selects AnsiText over
// the non-curses default of PlainText.
func selectBackend(args cli.Args) (ascii.Variant, string) {
	switch {
	case args.UseCurses && args.CursesColor:
		return ascii.VariantColorCells, "screen-color"
	case args.UseCurses:
		return ascii.VariantPlainText, "screen"
	case args.Color:
		return ascii.VariantAnsiText, "ansi"
	default:
		return ascii.VariantPlainText, "ansi"
	}
}

func renderLoop(backend string, asciiQueue *pipeline.Queue, stop *pipeline.StopSignal, player *audio.Player, stats *pipeline.Stats, args cli.Args, logger *log.Logger, interrupted chan os.Signal) int {
	switch backend {
	case "screen", "screen-color":
		return runScreenLoop(backend, asciiQueue, stop, player, stats, args, logger, interrupted)
	default:
		return runANSILoop(asciiQueue, stop, player, stats, args, logger, interrupted)
	}
}

// logPerFrame emits the §6 per-frame log line: "Frame <n> - Conversion:
// <ms> ms, Total Rendering: <ms> ms[, Changed lines: <k>]". conversionMS is
// the converter's rolling mean latency (internal/pipeline.Stats), not just
// the single batch that produced this frame. changedLines < 0 omits the
// bracketed suffix (the screen-library backends don't diff at line
// granularity).
func logPerFrame(logger *log.Logger, frameNum int, conversionMS, renderMS float64, changedLines int) {
	if changedLines >= 0 {
		logger.Printf("Frame %d - Conversion: %.3f ms, Total Rendering: %.3f ms, Changed lines: %d", frameNum, conversionMS, renderMS, changedLines)
	} else {
		logger.Printf("Frame %d - Conversion: %.3f ms, Total Rendering: %.3f ms", frameNum, conversionMS, renderMS)
	}
}

// logFPSOncePerSecond emits the §6 "[LOG] FPS display (<backend>): <value>"
// line and resets the rolling conversion-latency window, matching the
// once-per-second cadence of the FPS figure itself.
func logFPSOncePerSecond(logger *log.Logger, backend string, frameCount int, elapsed float64, stats *pipeline.Stats) {
	logger.Printf("[LOG] FPS display (%s): %.1f", backend, float64(frameCount)/elapsed)
	stats.Clear()
}

func runANSILoop(asciiQueue *pipeline.Queue, stop *pipeline.StopSignal, player *audio.Player, stats *pipeline.Stats, args cli.Args, logger *log.Logger, interrupted chan os.Signal) int {
	r := render.NewANSIRenderer(os.Stdout)
	defer r.Close()

	termW, termH := 80, 24
	if w, h, err := term.Size(); err == nil {
		termW, termH = w, h
	}

	frameCount := 0
	start := time.Now()

	for {
		select {
		case <-interrupted:
			return 0
		default:
		}
		if stop.Stopped() {
			item, err := asciiQueue.Get(10 * time.Millisecond)
			if err != nil || pipeline.IsEOS(item) {
				return 0
			}
			r.Render(item.(pipeline.Item).Frame, termW, termH)
			continue
		}

		item, err := asciiQueue.Get(10 * time.Millisecond)
		if err != nil {
			continue
		}
		if pipeline.IsEOS(item) {
			return 0
		}

		v := item.(pipeline.Item)
		renderStart := time.Now()
		changed := r.Render(v.Frame, termW, termH)
		renderMS := time.Since(renderStart).Seconds() * 1000
		frameCount++

		if player != nil {
			player.UpdateVideoTime(time.Since(start))
		}
		if args.LogFPS && frameCount%args.FPS == 0 {
			logFPSOncePerSecond(logger, "ansi", frameCount, time.Since(start).Seconds(), stats)
		}
		if args.LogPerf {
			logPerFrame(logger, frameCount, stats.Mean(), renderMS, changed)
		}
	}
}

func runScreenLoop(backend string, asciiQueue *pipeline.Queue, stop *pipeline.StopSignal, player *audio.Player, stats *pipeline.Stats, args cli.Args, logger *log.Logger, interrupted chan os.Signal) int {
	screen := term.NewScreen()
	if err := screen.EnterRawMode(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: entering raw mode: %v\n", err)
		return 1
	}
	defer screen.ExitRawMode()

	profile := term.DetectColorProfile()

	var mono *render.ScreenRenderer
	var colorR *render.ScreenColorRenderer
	if backend == "screen-color" {
		colorR = render.NewScreenColorRenderer(screen, profile)
	} else {
		mono = render.NewScreenRenderer(screen)
	}

	frameCount := 0
	start := time.Now()

	for {
		select {
		case <-interrupted:
			return 0
		default:
		}

		quit := false
		if mono != nil {
			quit = mono.PollQuit()
		} else {
			quit = colorR.PollQuit()
		}
		if quit {
			stop.Set()
			return 0
		}

		item, err := asciiQueue.Get(10 * time.Millisecond)
		if err != nil {
			if stop.Stopped() {
				return 0
			}
			continue
		}
		if pipeline.IsEOS(item) {
			return 0
		}

		v := item.(pipeline.Item)
		renderStart := time.Now()
		if mono != nil {
			mono.Render(v.Frame)
		} else {
			colorR.Render(v.Frame.(ascii.ColorCells))
		}
		renderMS := time.Since(renderStart).Seconds() * 1000
		frameCount++

		if player != nil {
			player.UpdateVideoTime(time.Since(start))
		}
		if args.LogFPS && frameCount%args.FPS == 0 {
			logFPSOncePerSecond(logger, backend, frameCount, time.Since(start).Seconds(), stats)
		}
		if args.LogPerf {
			// The screen-library backends diff at cell/character
			// granularity, not whole lines, so there is no "Changed
			// lines" figure to report for them.
			logPerFrame(logger, frameCount, stats.Mean(), renderMS, -1)
		}
	}
}
