package compat

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/backmassage/ps3check/internal/media"
)

func TestCheck_Table(t *testing.T) {
	c := NewChecker(1920, 1080)

	tests := []struct {
		name      string
		file      media.MediaFile
		want      media.Verdict
		reasonHas []string
	}{
		{
			name: "mp4 h264 aac 1080p",
			file: media.MediaFile{Container: "mp4", VideoCodec: "h264", AudioCodec: "aac", Width: 1920, Height: 1080},
			want: media.Compatible,
		},
		{
			name: "mp4 mpeg4 aac sd",
			file: media.MediaFile{Container: "mp4", VideoCodec: "mpeg4", AudioCodec: "aac", Width: 640, Height: 480},
			want: media.Compatible,
		},
		{
			name: "case and whitespace are ignored",
			file: media.MediaFile{Container: " MP4", VideoCodec: "H264", AudioCodec: "AAC ", Width: 1280, Height: 720},
			want: media.Compatible,
		},
		{
			name:      "avi divx mp3",
			file:      media.MediaFile{Container: "avi", VideoCodec: "mpeg4", AudioCodec: "mp3", Width: 640, Height: 352},
			want:      media.Incompatible,
			reasonHas: []string{"container avi", "audio codec mp3"},
		},
		{
			name:      "mkv hevc",
			file:      media.MediaFile{Container: "matroska", VideoCodec: "hevc", AudioCodec: "aac", Width: 1920, Height: 1080},
			want:      media.Incompatible,
			reasonHas: []string{"container matroska", "video codec hevc"},
		},
		{
			name:      "mp4 over resolution limit",
			file:      media.MediaFile{Container: "mp4", VideoCodec: "h264", AudioCodec: "aac", Width: 3840, Height: 2160},
			want:      media.Incompatible,
			reasonHas: []string{"resolution 3840x2160 exceeds 1920x1080"},
		},
		{
			name:      "width alone over limit",
			file:      media.MediaFile{Container: "mp4", VideoCodec: "h264", AudioCodec: "aac", Width: 2048, Height: 858},
			want:      media.Incompatible,
			reasonHas: []string{"exceeds"},
		},
		{
			name: "mp4 h264 without audio",
			file: media.MediaFile{Container: "mp4", VideoCodec: "h264", Width: 1280, Height: 720},
			want: media.Compatible,
		},
		{
			name:      "avi mpeg4 without audio",
			file:      media.MediaFile{Container: "avi", VideoCodec: "mpeg4", Width: 640, Height: 352},
			want:      media.Incompatible,
			reasonHas: []string{"container avi"},
		},
		{
			name:      "no video",
			file:      media.MediaFile{Container: "mp4", AudioCodec: "aac"},
			want:      media.Incompatible,
			reasonHas: []string{"no video stream"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reasons := c.Check(tt.file, nil)
			assert.Equal(t, tt.want, got)
			if tt.want == media.Compatible {
				assert.Empty(t, reasons)
				return
			}
			assert.NotEmpty(t, reasons)
			for _, sub := range tt.reasonHas {
				assert.True(t, containsSub(reasons, sub), "reasons %q should mention %q", reasons, sub)
			}
		})
	}
}

func TestCheck_ProbeErrorIsIncompatible(t *testing.T) {
	c := NewChecker(1920, 1080)
	// Even a compatible-looking file is incompatible when metadata failed.
	got, reasons := c.Check(
		media.MediaFile{Container: "mp4", VideoCodec: "h264", AudioCodec: "aac"},
		errors.New("ffprobe: exit status 1"),
	)
	assert.Equal(t, media.Incompatible, got)
	assert.Equal(t, []string{"metadata unreadable: ffprobe: exit status 1"}, reasons)
}

func TestCheck_Idempotent(t *testing.T) {
	c := NewChecker(1920, 1080)
	mf := media.MediaFile{Container: "avi", VideoCodec: "mpeg4", AudioCodec: "mp3"}
	v1, r1 := c.Check(mf, nil)
	v2, r2 := c.Check(mf, nil)
	assert.Equal(t, v1, v2)
	assert.Equal(t, r1, r2)
}

func TestCheck_CustomLimit(t *testing.T) {
	c := NewChecker(1280, 720)
	got, _ := c.Check(media.MediaFile{Container: "mp4", VideoCodec: "h264", AudioCodec: "aac", Width: 1920, Height: 1080}, nil)
	assert.Equal(t, media.Incompatible, got)
	w, h := c.MaxResolution()
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)
}

func TestVideoAndAudioSupported(t *testing.T) {
	c := NewChecker(1920, 1080)
	assert.True(t, c.VideoSupported("h264", 1280, 720))
	assert.True(t, c.VideoSupported("mpeg4", 640, 480))
	assert.False(t, c.VideoSupported("h264", 3840, 2160))
	assert.False(t, c.VideoSupported("hevc", 1280, 720))
	assert.True(t, c.AudioSupported("aac"))
	assert.False(t, c.AudioSupported("ac3"))
}

func containsSub(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
