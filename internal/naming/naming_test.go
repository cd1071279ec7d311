package naming

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		root      string
		outputDir string
		suffix    string
		want      string
	}{
		{"beside source", "/videos/movie.avi", "/videos", "", "_ps3", "/videos/movie_ps3.mp4"},
		{"nested beside source", "/videos/tv/show.mkv", "/videos", "", "_ps3", "/videos/tv/show_ps3.mp4"},
		{"dotted stem", "/videos/my.holiday.2019.mkv", "/videos", "", "_ps3", "/videos/my.holiday.2019_ps3.mp4"},
		{"mirrored under output", "/videos/tv/s1/ep.mkv", "/videos", "/ps3", "_ps3", "/ps3/tv/s1/ep_ps3.mp4"},
		{"root file under output", "/videos/ep.mkv", "/videos", "/ps3", "", "/ps3/ep.mp4"},
		{"outside root", "/elsewhere/ep.mkv", "/videos", "/ps3", "_ps3", "/ps3/ep_ps3.mp4"},
		{"no extension", "/videos/clip", "/videos", "", "_ps3", "/videos/clip_ps3.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputPath(filepath.FromSlash(tt.input), filepath.FromSlash(tt.root),
				filepath.FromSlash(tt.outputDir), tt.suffix)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestCollisionResolver(t *testing.T) {
	cr := NewCollisionResolver()
	out := filepath.FromSlash("/videos/a_ps3.mp4")

	assert.Equal(t, out, cr.Resolve("/videos/a.avi", out))
	assert.Equal(t, out, cr.Resolve("/videos/a.avi", out), "same input keeps its path")
	assert.Equal(t, filepath.FromSlash("/videos/a_ps3-2.mp4"), cr.Resolve("/videos/a.mkv", out))
	assert.Equal(t, filepath.FromSlash("/videos/a_ps3-3.mp4"), cr.Resolve("/videos/a.wmv", out))
}

func TestCollisionResolver_SkipsClaimedCandidate(t *testing.T) {
	cr := NewCollisionResolver()
	out := filepath.FromSlash("/v/a_ps3.mp4")
	dup := filepath.FromSlash("/v/a_ps3-2.mp4")

	// Another source already owns the first candidate.
	cr.Resolve("/v/a_ps3-2.avi", dup)
	cr.Resolve("/v/a.avi", out)
	assert.Equal(t, filepath.FromSlash("/v/a_ps3-3.mp4"), cr.Resolve("/v/a.mkv", out))
}

func TestCollisionResolver_CaseInsensitive(t *testing.T) {
	cr := NewCollisionResolver()
	cr.Resolve("/v/Movie.avi", filepath.FromSlash("/v/Movie_ps3.mp4"))
	got := cr.Resolve("/v/movie.mkv", filepath.FromSlash("/v/movie_ps3.mp4"))
	assert.Equal(t, filepath.FromSlash("/v/movie_ps3-2.mp4"), got)
}

func TestCollisionResolver_ReservedSourcesAreNotOverwritten(t *testing.T) {
	cr := NewCollisionResolver()
	queued := filepath.FromSlash("/v/a_ps3.mp4")
	cr.Reserve(filepath.FromSlash("/v/a.avi"), queued)

	assert.Equal(t, filepath.FromSlash("/v/a_ps3-2.mp4"), cr.Resolve(filepath.FromSlash("/v/a.avi"), queued))
	assert.Equal(t, queued, cr.Resolve(queued, queued), "a source may still map onto itself")
	assert.Equal(t, filepath.FromSlash("/v/a_ps3_ps3.mp4"),
		cr.Resolve(queued, filepath.FromSlash("/v/a_ps3_ps3.mp4")))
}
