// Package ffmpeg builds and executes the PS3 conversion command.
//
// Every conversion uses the same argument skeleton (builder.go): one video
// and at most one audio stream mapped into an MP4 with +faststart, the video
// either copied or encoded to H.264 High@4.1 yuv420p, the audio copied or
// encoded to AAC stereo 48 kHz.
//
// Execute streams ffmpeg's stderr, turning "time=" stat lines into a
// progress fraction and keeping the rest for error classification
// (errors.go). RetryState applies one fix per failed attempt for the two
// muxing failures that have a known remedy (retry.go).
package ffmpeg
