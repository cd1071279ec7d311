package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/backmassage/ps3check/internal/config"
	"github.com/backmassage/ps3check/internal/planner"
)

// Build constructs the ffmpeg argument slice (without the binary) for a
// file. The retry parameter supplies the current mux queue size and
// timestamp fix, which may differ from the plan's initial values after
// retry adjustments.
func Build(cfg *config.Config, plan *planner.FilePlan, rs *RetryState) []string {
	args := make([]string, 0, 64)

	// --- Preamble ---
	args = append(args, "-hide_banner", "-nostdin", "-y")

	// Loglevel: info when verbose, otherwise error. -stats keeps the
	// "time=" lines coming either way.
	if cfg.Verbose {
		args = append(args, "-loglevel", "info")
	} else {
		args = append(args, "-loglevel", "error")
	}
	args = append(args, "-stats")

	// --- Pre-input flags (timestamp fix) ---
	if rs.TimestampFix {
		args = append(args, "-fflags", "+genpts+discardcorrupt")
	}

	// --- Input ---
	args = append(args, "-i", plan.InputPath)

	// --- Video filter chain (encode path only, before maps) ---
	if plan.Action == planner.ActionEncode && plan.VideoFilters != "" {
		args = append(args, "-vf", plan.VideoFilters)
	}

	// --- Stream maps ---
	args = append(args, "-map", fmt.Sprintf("0:%d", plan.VideoStreamIdx))
	if !plan.Audio.NoAudio {
		args = append(args, "-map", fmt.Sprintf("0:%d", plan.Audio.StreamIndex))
	}

	// --- Global stream flags ---
	args = append(args,
		"-sn", "-dn",
		"-max_muxing_queue_size", strconv.Itoa(rs.MuxQueueSize),
	)

	// --- Codecs ---
	args = appendVideoCodec(args, cfg, plan)
	args = appendAudioCodec(args, cfg, plan)

	// --- Metadata ---
	args = append(args, "-map_metadata", "0", "-map_chapters", "-1")

	// --- Post-input timestamp flag ---
	if rs.TimestampFix {
		args = append(args, "-avoid_negative_ts", "make_zero")
	}

	// --- Container opts and output ---
	args = append(args, plan.ContainerOpts...)
	args = append(args, "-f", "mp4", plan.OutputPath)

	return args
}

// appendVideoCodec adds the codec-specific arguments for the video stream.
func appendVideoCodec(args []string, cfg *config.Config, plan *planner.FilePlan) []string {
	switch plan.Action {
	case planner.ActionRemux:
		args = append(args, "-c:v", "copy")
		// DivX/Xvid in AVI often stores packed B-frames, which MP4 players
		// reject. The filter is a no-op on streams that are not packed.
		if plan.VideoCodec == "mpeg4" {
			args = append(args, "-bsf:v", "mpeg4_unpack_bframes")
		}

	case planner.ActionEncode:
		args = append(args,
			"-c:v", cfg.VideoEncoder,
			"-profile:v", cfg.VideoProfile,
			"-level:v", cfg.VideoLevel,
			"-pix_fmt", cfg.PixFmt,
			"-crf", strconv.Itoa(plan.CRF),
			"-preset", cfg.Preset,
		)
	}
	return args
}

// appendAudioCodec adds audio codec arguments, or -an when the source has
// no audio.
func appendAudioCodec(args []string, cfg *config.Config, plan *planner.FilePlan) []string {
	ap := &plan.Audio

	if ap.NoAudio {
		return append(args, "-an")
	}
	if ap.Copy {
		return append(args, "-c:a", "copy")
	}
	return append(args,
		"-c:a", cfg.AudioEncoder,
		"-ac", strconv.Itoa(ap.Channels),
		"-ar", strconv.Itoa(ap.SampleRate),
		"-b:a", ap.Bitrate,
	)
}
