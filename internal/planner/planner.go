package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/backmassage/ps3check/internal/compat"
	"github.com/backmassage/ps3check/internal/config"
	"github.com/backmassage/ps3check/internal/probe"
)

// ErrNoVideo is returned when the source has no video stream to convert.
var ErrNoVideo = errors.New("no video stream to convert")

const (
	muxQueueDefault = 4096

	// audioCopyMaxBitrate is the upper bound (exclusive) for copying an AAC
	// stream; anything at or above it is re-encoded to the configured rate.
	audioCopyMaxBitrate int64 = 320_000

	// h264MaxLevel is the highest H.264 level the PS3 decodes (4.1).
	h264MaxLevel = 41
)

// BuildPlan produces a FilePlan from config and probe data. This is the
// decision matrix the pipeline calls for every incompatible file.
//
// Flow:
//  1. Decide action: copy video when the codec, level and resolution are
//     already playable, else encode
//  2. Build the video filter chain (downscale, even dimensions)
//  3. Pick one audio track: copy AAC, transcode everything else
//  4. Set container opts and retry initial state
func BuildPlan(cfg *config.Config, pr *probe.ProbeResult, checker *compat.Checker) (*FilePlan, error) {
	v := pr.PrimaryVideo
	if v == nil {
		return nil, ErrNoVideo
	}

	plan := &FilePlan{
		Duration:         pr.Format.Duration,
		VideoStreamIdx:   v.Index,
		VideoCodec:       strings.ToLower(v.Codec),
		CRF:              cfg.CRF,
		MuxQueueSize:     muxQueueDefault,
		DroppedSubtitles: len(pr.SubtitleStreams),
		ContainerOpts:    []string{"-movflags", "+faststart"},
	}
	if len(pr.AudioStreams) > 1 {
		plan.DroppedAudio = len(pr.AudioStreams) - 1
	}

	// --- 1. Action decision ---
	if ok, why := videoCopyable(v, checker); ok {
		plan.Action = ActionRemux
		plan.Note = fmt.Sprintf("%s %s is playable; copying video", v.Codec, pr.Resolution())
	} else {
		plan.Action = ActionEncode
		plan.Note = why
	}

	// --- 2. Video filters ---
	if plan.Action == ActionEncode {
		plan.VideoFilters = BuildVideoFilter(cfg, v)
	}

	// --- 3. Audio ---
	plan.Audio = BuildAudioPlan(cfg, pr, checker)

	return plan, nil
}

// videoCopyable reports whether the primary video can go into the MP4
// unchanged, and otherwise why it must be encoded.
func videoCopyable(v *probe.VideoStream, checker *compat.Checker) (bool, string) {
	if !checker.VideoSupported(v.Codec, v.Width, v.Height) {
		if !checker.WithinLimit(v.Width, v.Height) {
			w, h := checker.MaxResolution()
			return false, fmt.Sprintf("%dx%d exceeds %dx%d; encoding with downscale", v.Width, v.Height, w, h)
		}
		return false, fmt.Sprintf("video codec %s not playable; encoding to H.264", v.Codec)
	}
	if strings.EqualFold(v.Codec, "h264") {
		if v.Level > h264MaxLevel {
			return false, fmt.Sprintf("H.264 level %.1f above 4.1; re-encoding", float64(v.Level)/10)
		}
		if v.PixFmt != "" && v.PixFmt != "yuv420p" && v.PixFmt != "yuvj420p" {
			return false, fmt.Sprintf("H.264 pixel format %s not playable; re-encoding", v.PixFmt)
		}
	}
	return true, ""
}

// BuildAudioPlan selects the primary audio track and decides whether it can
// be copied. AAC below audioCopyMaxBitrate is copied; unknown bitrate (0)
// counts as acceptable to avoid a lossy-to-lossy re-encode.
func BuildAudioPlan(cfg *config.Config, pr *probe.ProbeResult, checker *compat.Checker) AudioPlan {
	a := pr.PrimaryAudio()
	if a == nil {
		return AudioPlan{NoAudio: true}
	}

	ap := AudioPlan{
		StreamIndex: a.Index,
		Channels:    clampChannels(a.Channels, cfg.AudioChannels),
		Bitrate:     cfg.AudioBitrate,
		SampleRate:  cfg.AudioSampleRate,
	}
	if checker.AudioSupported(a.Codec) && pr.AudioBitRate() < audioCopyMaxBitrate {
		ap.Copy = true
	}
	return ap
}

func clampChannels(source, max int) int {
	if source < 1 {
		return max
	}
	if source > max {
		return max
	}
	return source
}
