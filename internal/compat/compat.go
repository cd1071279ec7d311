// Package compat decides whether a PlayStation 3 can play a file natively.
//
// The decision is a lookup of (container, video codec, audio codec) in a
// fixed table plus a resolution limit. A file without audio matches when its
// container and video codec do. Anything else not in the table, and any file
// whose metadata could not be read, is incompatible.
package compat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/backmassage/ps3check/internal/media"
)

// Rule is one supported (container, video, audio) combination.
type Rule struct {
	Container  string
	VideoCodec string
	AudioCodec string
}

// Rules is the PS3 native-playback table for the MP4 family.
var Rules = []Rule{
	{Container: "mp4", VideoCodec: "h264", AudioCodec: "aac"},
	{Container: "mp4", VideoCodec: "mpeg4", AudioCodec: "aac"},
}

// Checker holds the lookup table and resolution limit. Safe for concurrent
// use once built.
type Checker struct {
	table     map[Rule]struct{}
	silent    map[Rule]struct{} // rules with AudioCodec cleared
	maxWidth  int
	maxHeight int

	containers  map[string]struct{}
	videoCodecs map[string]struct{}
	audioCodecs map[string]struct{}
}

// NewChecker builds a Checker from Rules with the given resolution limit.
func NewChecker(maxWidth, maxHeight int) *Checker {
	c := &Checker{
		table:       make(map[Rule]struct{}, len(Rules)),
		silent:      make(map[Rule]struct{}, len(Rules)),
		maxWidth:    maxWidth,
		maxHeight:   maxHeight,
		containers:  map[string]struct{}{},
		videoCodecs: map[string]struct{}{},
		audioCodecs: map[string]struct{}{},
	}
	for _, r := range Rules {
		c.table[r] = struct{}{}
		c.silent[Rule{Container: r.Container, VideoCodec: r.VideoCodec}] = struct{}{}
		c.containers[r.Container] = struct{}{}
		c.videoCodecs[r.VideoCodec] = struct{}{}
		c.audioCodecs[r.AudioCodec] = struct{}{}
	}
	return c
}

// Check assigns a verdict to mf. probeErr non-nil means the metadata was
// unreadable; the verdict is then Incompatible with the error as reason.
// Reasons lists every failed constraint and is empty for compatible files.
func (c *Checker) Check(mf media.MediaFile, probeErr error) (media.Verdict, []string) {
	if probeErr != nil {
		return media.Incompatible, []string{"metadata unreadable: " + probeErr.Error()}
	}

	var reasons []string
	key := Rule{
		Container:  normalize(mf.Container),
		VideoCodec: normalize(mf.VideoCodec),
		AudioCodec: normalize(mf.AudioCodec),
	}
	if !c.matches(key) {
		reasons = append(reasons, c.tableReasons(key)...)
	}
	if r := c.resolutionReason(mf.Width, mf.Height); r != "" {
		reasons = append(reasons, r)
	}

	if len(reasons) == 0 {
		return media.Compatible, nil
	}
	return media.Incompatible, reasons
}

// matches looks key up in the table. The PS3 plays MP4 files that carry no
// audio track, so an empty audio codec matches any rule for the same
// container and video codec.
func (c *Checker) matches(key Rule) bool {
	if key.AudioCodec == "" {
		_, ok := c.silent[key]
		return ok
	}
	_, ok := c.table[key]
	return ok
}

// VideoSupported reports whether a video stream can be copied unchanged
// into the PS3 MP4 output: a supported codec within the resolution limit.
func (c *Checker) VideoSupported(codec string, width, height int) bool {
	_, ok := c.videoCodecs[normalize(codec)]
	return ok && c.WithinLimit(width, height)
}

// AudioSupported reports whether an audio stream can be copied unchanged.
func (c *Checker) AudioSupported(codec string) bool {
	_, ok := c.audioCodecs[normalize(codec)]
	return ok
}

// WithinLimit reports whether width x height fits the resolution limit.
// Unknown dimensions (zero) are treated as fitting.
func (c *Checker) WithinLimit(width, height int) bool {
	return width <= c.maxWidth && height <= c.maxHeight
}

// MaxResolution returns the configured limit.
func (c *Checker) MaxResolution() (int, int) { return c.maxWidth, c.maxHeight }

func (c *Checker) tableReasons(key Rule) []string {
	var reasons []string
	if key.VideoCodec == "" {
		reasons = append(reasons, "no video stream")
	}
	if _, ok := c.containers[key.Container]; !ok {
		reasons = append(reasons, fmt.Sprintf("container %s not supported (want %s)",
			orUnknown(key.Container), joinKeys(c.containers)))
	}
	if _, ok := c.videoCodecs[key.VideoCodec]; !ok && key.VideoCodec != "" {
		reasons = append(reasons, fmt.Sprintf("video codec %s not supported (want %s)",
			key.VideoCodec, joinKeys(c.videoCodecs)))
	}
	if _, ok := c.audioCodecs[key.AudioCodec]; !ok && key.AudioCodec != "" {
		reasons = append(reasons, fmt.Sprintf("audio codec %s not supported (want %s)",
			key.AudioCodec, joinKeys(c.audioCodecs)))
	}
	if len(reasons) == 0 {
		// Every field is individually supported but the combination is not.
		reasons = append(reasons, fmt.Sprintf("combination %s/%s/%s not supported",
			key.Container, key.VideoCodec, key.AudioCodec))
	}
	return reasons
}

func (c *Checker) resolutionReason(width, height int) string {
	if c.WithinLimit(width, height) {
		return ""
	}
	return fmt.Sprintf("resolution %dx%d exceeds %dx%d", width, height, c.maxWidth, c.maxHeight)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func orUnknown(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func joinKeys(m map[string]struct{}) string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return strings.Join(keys, "/")
}
