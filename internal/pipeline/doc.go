// Package pipeline runs a batch: discover media files under a directory,
// probe and check each one against the PS3 compatibility rules, and, when
// conversion is enabled, convert the incompatible ones one at a time.
//
// Files:
//   - discover.go: recursive walk filtered by media extension, sorted.
//   - runner.go: Run / RunWith; scan stage, convert stage with retry.
//   - observer.go: Observer events plus the log-line implementation.
//   - stats.go: RunStats aggregated from the per-file results.
package pipeline
