package probe

import (
	"strconv"
	"strings"

	"github.com/backmassage/ps3check/internal/media"
)

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename       string
	NbStreams      int
	FormatName     string
	FormatLongName string
	Duration       float64
	Size           int64
	BitRate        int64
	Tags           map[string]string
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index         int
	Codec         string
	Profile       string
	Level         int
	PixFmt        string
	Width         int
	Height        int
	BitRate       int64
	IsAttachedPic bool
	AvgFrameRate  string
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Index         int
	Codec         string
	Profile       string
	Channels      int
	ChannelLayout string
	SampleRate    int
	BitRate       int64
	Language      string
	IsDefault     bool
}

// SubtitleStream holds the parsed properties of a single subtitle stream.
// MP4 on the PS3 carries no subtitles, so these are only counted and dropped.
type SubtitleStream struct {
	Index    int
	Codec    string
	Language string
}

// ProbeResult is the fully parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type ProbeResult struct {
	Format          FormatInfo
	PrimaryVideo    *VideoStream
	AudioStreams    []AudioStream
	SubtitleStreams []SubtitleStream
}

// AudioBitRate returns the primary audio stream bitrate, or 0.
func (p *ProbeResult) AudioBitRate() int64 {
	if a := p.PrimaryAudio(); a != nil {
		return a.BitRate
	}
	return 0
}

// PrimaryAudio returns the default-flagged audio stream, else the first one,
// else nil.
func (p *ProbeResult) PrimaryAudio() *AudioStream {
	for i := range p.AudioStreams {
		if p.AudioStreams[i].IsDefault {
			return &p.AudioStreams[i]
		}
	}
	if len(p.AudioStreams) > 0 {
		return &p.AudioStreams[0]
	}
	return nil
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (p *ProbeResult) Resolution() string {
	if p.PrimaryVideo == nil || p.PrimaryVideo.Width <= 0 || p.PrimaryVideo.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(p.PrimaryVideo.Width) + "x" + strconv.Itoa(p.PrimaryVideo.Height)
}

// Container returns the normalised container name. ffprobe reports the
// whole demuxer family ("mov,mp4,m4a,3gp,3g2,mj2"); any family that
// includes mp4 or mov is reported as "mp4", others keep their first name.
func (p *ProbeResult) Container() string {
	return NormalizeContainer(p.Format.FormatName)
}

// NormalizeContainer maps an ffprobe format_name list to a single name.
func NormalizeContainer(formatName string) string {
	names := strings.Split(strings.ToLower(strings.TrimSpace(formatName)), ",")
	for _, n := range names {
		switch strings.TrimSpace(n) {
		case "mp4", "mov":
			return "mp4"
		}
	}
	return strings.TrimSpace(names[0])
}

// MediaFile flattens the result into the shared data model. statSize is
// used when ffprobe does not report a size.
func (p *ProbeResult) MediaFile(path string, statSize int64) media.MediaFile {
	mf := media.MediaFile{
		Path:      path,
		Container: p.Container(),
		BitRate:   p.Format.BitRate,
		Duration:  p.Format.Duration,
		Size:      p.Format.Size,
	}
	if mf.Size <= 0 {
		mf.Size = statSize
	}
	if v := p.PrimaryVideo; v != nil {
		mf.VideoCodec = v.Codec
		mf.PixFmt = v.PixFmt
		mf.Width = v.Width
		mf.Height = v.Height
		if mf.BitRate <= 0 {
			mf.BitRate = v.BitRate
		}
	}
	if a := p.PrimaryAudio(); a != nil {
		mf.AudioCodec = a.Codec
	}
	return mf
}
