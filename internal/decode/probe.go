// Package decode wraps ffmpeg/ffprobe subprocesses to provide the decoded
// BGR frame stream and PCM audio buffer the rest of the system treats as
// external collaborators.
package decode

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Probe holds stream metadata reported by ffprobe for a media file.
type Probe struct {
	Width      int
	Height     int
	FPS        float64
	Duration   time.Duration
	HasVideo   bool
	SampleRate int
	Channels   int
	HasAudio   bool
}

type ffprobeResult struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		SampleRate   string `json:"sample_rate"`
		Channels     int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeMedia runs ffprobe once and reports both the video and audio stream
// metadata present in path, if any.
func ProbeMedia(path string) (Probe, error) {
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return Probe{}, fmt.Errorf("ffprobe not found: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	cmd.Stdin = nil

	output, err := cmd.Output()
	if err != nil {
		return Probe{}, fmt.Errorf("ffprobe failed: %w", err)
	}

	var result ffprobeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return Probe{}, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	durSec, _ := strconv.ParseFloat(result.Format.Duration, 64)
	p := Probe{Duration: time.Duration(durSec * float64(time.Second))}

	for _, s := range result.Streams {
		switch s.CodecType {
		case "video":
			if p.HasVideo {
				continue
			}
			fps := parseFraction(s.AvgFrameRate)
			if fps <= 0 {
				fps = parseFraction(s.RFrameRate)
			}
			if fps <= 0 {
				fps = 24
			}
			p.Width = s.Width
			p.Height = s.Height
			p.FPS = fps
			p.HasVideo = true
		case "audio":
			if p.HasAudio {
				continue
			}
			sr, err := strconv.Atoi(s.SampleRate)
			if err != nil || sr <= 0 {
				sr = 44100
			}
			ch := s.Channels
			if ch <= 0 {
				ch = 2
			}
			p.SampleRate = sr
			p.Channels = ch
			p.HasAudio = true
		}
	}

	return p, nil
}

// parseFraction parses an ffprobe "num/den" frame-rate string.
func parseFraction(s string) float64 {
	for i, c := range s {
		if c == '/' {
			num, err1 := strconv.ParseFloat(s[:i], 64)
			den, err2 := strconv.ParseFloat(s[i+1:], 64)
			if err1 != nil || err2 != nil || den == 0 {
				return 0
			}
			return num / den
		}
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
