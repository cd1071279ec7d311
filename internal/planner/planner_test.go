package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/ps3check/internal/compat"
	"github.com/backmassage/ps3check/internal/config"
	"github.com/backmassage/ps3check/internal/probe"
)

// --- Helper builders ---

func defaultCfg() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}

func checker(cfg *config.Config) *compat.Checker {
	return compat.NewChecker(cfg.MaxWidth, cfg.MaxHeight)
}

func mkvH264AC3() *probe.ProbeResult {
	return &probe.ProbeResult{
		Format: probe.FormatInfo{FormatName: "matroska,webm", Duration: 1400},
		PrimaryVideo: &probe.VideoStream{
			Index: 0, Codec: "h264", Profile: "High", Level: 40, PixFmt: "yuv420p",
			Width: 1920, Height: 1080,
		},
		AudioStreams: []probe.AudioStream{
			{Index: 1, Codec: "ac3", Channels: 6, SampleRate: 48000, BitRate: 448000, IsDefault: true},
			{Index: 2, Codec: "aac", Channels: 2, SampleRate: 48000, BitRate: 128000},
		},
		SubtitleStreams: []probe.SubtitleStream{{Index: 3, Codec: "ass"}},
	}
}

func aviDivX() *probe.ProbeResult {
	return &probe.ProbeResult{
		Format: probe.FormatInfo{FormatName: "avi", Duration: 5400},
		PrimaryVideo: &probe.VideoStream{
			Index: 0, Codec: "mpeg4", PixFmt: "yuv420p", Width: 640, Height: 352,
		},
		AudioStreams: []probe.AudioStream{{Index: 1, Codec: "mp3", Channels: 2, SampleRate: 48000, BitRate: 128000}},
	}
}

func mkvHEVC4K() *probe.ProbeResult {
	return &probe.ProbeResult{
		Format: probe.FormatInfo{FormatName: "matroska,webm", Duration: 3000},
		PrimaryVideo: &probe.VideoStream{
			Index: 0, Codec: "hevc", Profile: "Main 10", PixFmt: "yuv420p10le",
			Width: 3840, Height: 2160,
		},
		AudioStreams: []probe.AudioStream{{Index: 1, Codec: "aac", Channels: 2, SampleRate: 48000, BitRate: 192000}},
	}
}

// --- BuildPlan decision matrix tests ---

func TestBuildPlan_RemuxPlayableVideo(t *testing.T) {
	cfg := defaultCfg()
	plan, err := BuildPlan(cfg, mkvH264AC3(), checker(cfg))
	require.NoError(t, err)

	assert.Equal(t, ActionRemux, plan.Action)
	assert.Empty(t, plan.VideoFilters, "remux never filters")
	assert.Equal(t, 0, plan.VideoStreamIdx)
	assert.Equal(t, "h264", plan.VideoCodec)
	assert.InDelta(t, 1400.0, plan.Duration, 1e-9)

	// Default-flagged AC3 is the primary track and must be transcoded.
	assert.False(t, plan.Audio.NoAudio)
	assert.Equal(t, 1, plan.Audio.StreamIndex)
	assert.False(t, plan.Audio.Copy)
	assert.Equal(t, 2, plan.Audio.Channels, "5.1 is downmixed to stereo")
	assert.Equal(t, "192k", plan.Audio.Bitrate)
	assert.Equal(t, 48000, plan.Audio.SampleRate)

	assert.Equal(t, 1, plan.DroppedAudio)
	assert.Equal(t, 1, plan.DroppedSubtitles)
	assert.Equal(t, []string{"-movflags", "+faststart"}, plan.ContainerOpts)
	assert.Equal(t, muxQueueDefault, plan.MuxQueueSize)
	assert.False(t, plan.TimestampFix)
}

func TestBuildPlan_AVIDivXIsRemuxedWithAudioTranscode(t *testing.T) {
	cfg := defaultCfg()
	plan, err := BuildPlan(cfg, aviDivX(), checker(cfg))
	require.NoError(t, err)

	// MPEG-4 Part 2 plays on the PS3 inside MP4; only the container and
	// the MP3 audio are wrong.
	assert.Equal(t, ActionRemux, plan.Action)
	assert.Equal(t, "mpeg4", plan.VideoCodec)
	assert.False(t, plan.Audio.Copy)
}

func TestBuildPlan_EncodeUnsupportedCodecWithDownscale(t *testing.T) {
	cfg := defaultCfg()
	plan, err := BuildPlan(cfg, mkvHEVC4K(), checker(cfg))
	require.NoError(t, err)

	assert.Equal(t, ActionEncode, plan.Action)
	assert.Contains(t, plan.Note, "3840x2160 exceeds 1920x1080")
	assert.Contains(t, plan.VideoFilters, "scale=w=1920:h=1080")
	assert.Contains(t, plan.VideoFilters, "force_original_aspect_ratio=decrease")
	assert.Equal(t, cfg.CRF, plan.CRF)
	assert.True(t, plan.Audio.Copy, "AAC below 320k is copied")
}

func TestBuildPlan_EncodeHEVCInsideLimit(t *testing.T) {
	cfg := defaultCfg()
	pr := mkvHEVC4K()
	pr.PrimaryVideo.Width, pr.PrimaryVideo.Height = 1920, 1080

	plan, err := BuildPlan(cfg, pr, checker(cfg))
	require.NoError(t, err)
	assert.Equal(t, ActionEncode, plan.Action)
	assert.Contains(t, plan.Note, "video codec hevc")
	assert.Empty(t, plan.VideoFilters)
}

func TestBuildPlan_H264AboveLevelIsEncoded(t *testing.T) {
	cfg := defaultCfg()
	pr := mkvH264AC3()
	pr.PrimaryVideo.Level = 51

	plan, err := BuildPlan(cfg, pr, checker(cfg))
	require.NoError(t, err)
	assert.Equal(t, ActionEncode, plan.Action)
	assert.Contains(t, plan.Note, "level 5.1")
}

func TestBuildPlan_H264TenBitIsEncoded(t *testing.T) {
	cfg := defaultCfg()
	pr := mkvH264AC3()
	pr.PrimaryVideo.PixFmt = "yuv420p10le"

	plan, err := BuildPlan(cfg, pr, checker(cfg))
	require.NoError(t, err)
	assert.Equal(t, ActionEncode, plan.Action)
}

func TestBuildPlan_NoVideo(t *testing.T) {
	cfg := defaultCfg()
	pr := aviDivX()
	pr.PrimaryVideo = nil

	_, err := BuildPlan(cfg, pr, checker(cfg))
	assert.ErrorIs(t, err, ErrNoVideo)
}

func TestBuildAudioPlan(t *testing.T) {
	cfg := defaultCfg()
	c := checker(cfg)

	tests := []struct {
		name     string
		streams  []probe.AudioStream
		noAudio  bool
		copy     bool
		channels int
	}{
		{"no audio", nil, true, false, 0},
		{"aac stereo copied", []probe.AudioStream{{Codec: "aac", Channels: 2, BitRate: 192000}}, false, true, 2},
		{"aac unknown bitrate copied", []probe.AudioStream{{Codec: "aac", Channels: 2}}, false, true, 2},
		{"aac 384k re-encoded", []probe.AudioStream{{Codec: "aac", Channels: 2, BitRate: 384000}}, false, false, 2},
		{"default track bitrate decides", []probe.AudioStream{
			{Codec: "aac", Channels: 2, BitRate: 128000},
			{Codec: "aac", Channels: 2, BitRate: 384000, IsDefault: true},
		}, false, false, 2},
		{"dts 5.1 downmixed", []probe.AudioStream{{Codec: "dts", Channels: 6}}, false, false, 2},
		{"mono mp3 stays mono", []probe.AudioStream{{Codec: "mp3", Channels: 1}}, false, false, 1},
		{"unknown channels use target", []probe.AudioStream{{Codec: "wmav2"}}, false, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ap := BuildAudioPlan(cfg, &probe.ProbeResult{AudioStreams: tt.streams}, c)
			assert.Equal(t, tt.noAudio, ap.NoAudio)
			if tt.noAudio {
				return
			}
			assert.Equal(t, tt.copy, ap.Copy)
			assert.Equal(t, tt.channels, ap.Channels)
		})
	}
}

func TestBuildVideoFilter(t *testing.T) {
	cfg := defaultCfg()

	tests := []struct {
		name string
		w, h int
		want string
	}{
		{"inside limit", 1280, 720, ""},
		{"exactly at limit", 1920, 1080, ""},
		{"4k", 3840, 2160, "scale=w=1920:h=1080:force_original_aspect_ratio=decrease:force_divisible_by=2"},
		{"wide cinema", 2048, 858, "scale=w=1920:h=1080:force_original_aspect_ratio=decrease:force_divisible_by=2"},
		{"odd height", 720, 405, "scale=trunc(iw/2)*2:trunc(ih/2)*2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildVideoFilter(cfg, &probe.VideoStream{Width: tt.w, Height: tt.h})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildVideoFilter_CustomLimit(t *testing.T) {
	cfg := defaultCfg()
	cfg.MaxWidth, cfg.MaxHeight = 1280, 720
	got := BuildVideoFilter(cfg, &probe.VideoStream{Width: 1920, Height: 1080})
	assert.Contains(t, got, "scale=w=1280:h=720")
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "encode", ActionEncode.String())
	assert.Equal(t, "remux", ActionRemux.String())
}
