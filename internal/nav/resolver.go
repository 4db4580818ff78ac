package nav

// ResolveTimestamp answers "at what time does video index show limb touching
// hold?". It fails closed: ok is false when index is out of range, when limb
// or hold is empty, or when the video has no matching event. A timestamp of
// exactly 0 seconds is a valid hit, distinguished from absence by ok.
//
// When duplicates exist for the same (limb, hold) pair the first event in the
// video's order wins; no further disambiguation is attempted.
func ResolveTimestamp(videos []VideoItem, index int, limb, hold string) (seconds float64, ok bool) {
	if index < 0 || index >= len(videos) {
		return 0, false
	}
	if limb == "" || hold == "" {
		return 0, false
	}
	for _, event := range videos[index].Events {
		if event.Limb == limb && event.Hold == hold {
			return event.Timestamp, true
		}
	}
	return 0, false
}
