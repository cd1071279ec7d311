// Package planner decides how an incompatible file is converted (full
// encode, or remux with the video stream copied) and builds a FilePlan that
// the ffmpeg package consumes.
//
//   - FilePlan, Action, AudioPlan (types.go)
//   - BuildPlan, BuildAudioPlan: decision matrix (planner.go)
//   - BuildVideoFilter: downscale and even-dimension filters (filter.go)
package planner
