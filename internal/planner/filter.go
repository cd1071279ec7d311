package planner

import (
	"fmt"
	"strings"

	"github.com/backmassage/ps3check/internal/config"
	"github.com/backmassage/ps3check/internal/probe"
)

// BuildVideoFilter constructs the comma-joined ffmpeg video filter chain for
// the encode path.
//
// Sources above the resolution limit are scaled down to fit while keeping
// their aspect ratio. libx264 with yuv420p needs even dimensions, so odd
// sources inside the limit are trimmed by one pixel.
//
// Returns an empty string when no filters are needed.
func BuildVideoFilter(cfg *config.Config, v *probe.VideoStream) string {
	var filters []string

	switch {
	case v.Width > cfg.MaxWidth || v.Height > cfg.MaxHeight:
		filters = append(filters, fmt.Sprintf(
			"scale=w=%d:h=%d:force_original_aspect_ratio=decrease:force_divisible_by=2",
			cfg.MaxWidth, cfg.MaxHeight))
	case v.Width%2 != 0 || v.Height%2 != 0:
		filters = append(filters, "scale=trunc(iw/2)*2:trunc(ih/2)*2")
	}

	return strings.Join(filters, ",")
}
