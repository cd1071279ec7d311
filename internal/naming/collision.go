package naming

import (
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// CollisionResolver hands out output paths so that two sources never share
// one: a.avi and a.mkv in the same folder become a_ps3.mp4 and a_ps3-2.mp4.
//
// Paths are compared case-insensitively. Converted files usually end up on
// a FAT32 USB drive for the console, where "A_ps3.mp4" and "a_ps3.mp4" are
// the same file.
type CollisionResolver struct {
	mu      sync.Mutex
	claimed map[string]string // folded output path → source that claimed it
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{claimed: make(map[string]string)}
}

// Reserve marks each source path as taken so no other source is given it as
// an output. A source may still resolve to its own path; callers reject that
// case separately.
func (cr *CollisionResolver) Reserve(sources ...string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	for _, src := range sources {
		cr.claimed[strings.ToLower(src)] = src
	}
}

// Resolve returns the output path for source. The first source to ask for
// an output gets it unchanged; later sources get the lowest free "-N"
// variant, N starting at 2. Asking again for the same source returns the
// path it was given before.
func (cr *CollisionResolver) Resolve(source, output string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	ext := filepath.Ext(output)
	stem := strings.TrimSuffix(output, ext)
	for n := 1; ; n++ {
		candidate := output
		if n > 1 {
			candidate = stem + "-" + strconv.Itoa(n) + ext
		}
		key := strings.ToLower(candidate)
		owner, taken := cr.claimed[key]
		if !taken || owner == source {
			cr.claimed[key] = source
			return candidate
		}
	}
}
