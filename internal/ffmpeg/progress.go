package ffmpeg

import (
	"regexp"
	"strconv"
	"strings"
)

// reStatsTime matches the elapsed output time in an ffmpeg -stats line,
// e.g. "frame= 240 fps= 60 ... time=00:00:10.01 bitrate=...".
var reStatsTime = regexp.MustCompile(`time=\s*(-?\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// ParseProgressTime extracts the "time=HH:MM:SS.xx" value from a stats line
// as seconds. It returns false for lines without a time or with "time=N/A".
func ParseProgressTime(line string) (float64, bool) {
	m := reStatsTime.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	// Streams with a negative start offset report "time=-00:00:00.04".
	if strings.HasPrefix(m[1], "-") {
		return 0, true
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	secs, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(h)*3600 + float64(mins)*60 + secs, true
}

// Fraction converts elapsed output time into a fraction of duration,
// clamped to [0, 1]. Unknown duration yields 0.
func Fraction(elapsed, duration float64) float64 {
	if duration <= 0 || elapsed <= 0 {
		return 0
	}
	f := elapsed / duration
	if f > 1 {
		return 1
	}
	return f
}
