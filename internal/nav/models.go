package nav

// Event is one limb/hold contact observed by the analysis service.
// Timestamp is in seconds from the start of the video. Immutable once received.
type Event struct {
	Limb      string  `json:"limb"`
	Hold      string  `json:"hold"`
	Timestamp float64 `json:"timestamp"`
}

// VideoItem is one camera angle/attempt: a playable resource plus the ordered
// contact events extracted for it. This also matches the JSON payload
// delivered by the analysis service.
type VideoItem struct {
	VideoURL string  `json:"videoUrl"`
	Events   []Event `json:"events"`
}

// Selection is the user's current limb/hold choice. Empty string means unset.
// ActiveHold is only meaningful relative to ActiveLimb.
type Selection struct {
	ActiveLimb string
	ActiveHold string
}

// PlayerState is the transient runtime state for the player at one video
// index. It is rebuilt whenever the video list changes.
type PlayerState struct {
	Loaded   bool
	NotFound bool
}

// SessionState is the top-level in-memory state for one upload session:
// the ordered video list, the user's selection, and per-index player state.
// Indices into Videos and Players are stable for the session's lifetime.
type SessionState struct {
	Videos    []VideoItem
	Selection Selection
	Players   []PlayerState
}

// Snapshot is a consistent copy of SessionState handed out by the repository.
// Mutating a Snapshot never affects stored state.
type Snapshot struct {
	Videos    []VideoItem
	Selection Selection
	Players   []PlayerState
}
