package planner

// Action describes the per-file conversion decision.
type Action int

const (
	ActionEncode Action = iota // Re-encode video to H.264.
	ActionRemux                // Copy the already-compatible video stream.
)

func (a Action) String() string {
	switch a {
	case ActionRemux:
		return "remux"
	default:
		return "encode"
	}
}

// FilePlan holds the complete set of decisions for converting a single
// media file. It is produced by BuildPlan and consumed by the ffmpeg
// package to construct command arguments and by the retry engine for
// initial state.
type FilePlan struct {
	Action Action
	Note   string // Why this action was chosen, for verbose logs.

	InputPath  string
	OutputPath string
	Duration   float64 // Seconds; drives the progress fraction.

	// Video.
	VideoStreamIdx int    // Absolute ffprobe stream index.
	VideoCodec     string // Source codec as reported by ffprobe.
	VideoFilters   string // Comma-joined filter chain (may be empty).
	CRF            int

	// Audio.
	Audio AudioPlan

	// Streams present in the source that the MP4 target drops.
	DroppedSubtitles int
	DroppedAudio     int

	// Container-specific flags.
	ContainerOpts []string // e.g. -movflags +faststart

	// Retry initial state.
	MuxQueueSize int
	TimestampFix bool
}

// AudioPlan describes the handling of the single audio track carried into
// the output.
type AudioPlan struct {
	NoAudio     bool
	StreamIndex int // Absolute ffprobe stream index.
	Copy        bool
	Channels    int
	Bitrate     string
	SampleRate  int
}
