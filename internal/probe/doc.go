// Package probe provides ffprobe-based media inspection and typed result
// structures. One JSON call per file (-show_format -show_streams) yields
// everything the compatibility check and the planner need.
//
// The wire types mirror ffprobe's JSON; numbers arrive as strings and are
// parsed leniently, so a missing field reads as zero rather than an error.
package probe
