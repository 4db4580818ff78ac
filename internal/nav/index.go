package nav

// LimbIndex maps each limb observed across the video list to the distinct
// holds it touches, preserving first-appearance order of both limb keys and
// hold values so the UI ordering is stable.
type LimbIndex struct {
	limbs []string
	holds map[string][]string
}

// BuildLimbIndex walks videos in list order and events in per-video order and
// collects holds per limb. Events with an empty limb are skipped. The result
// is deterministic: the same video list always yields the same index.
func BuildLimbIndex(videos []VideoItem) LimbIndex {
	index := LimbIndex{holds: make(map[string][]string)}
	for _, video := range videos {
		for _, event := range video.Events {
			if event.Limb == "" {
				continue
			}
			holds, seen := index.holds[event.Limb]
			if !seen {
				index.limbs = append(index.limbs, event.Limb)
			}
			if !containsString(holds, event.Hold) {
				index.holds[event.Limb] = append(holds, event.Hold)
			}
		}
	}
	return index
}

// Limbs returns the limb keys in first-appearance order.
func (ix LimbIndex) Limbs() []string {
	return append([]string(nil), ix.limbs...)
}

// Holds returns the distinct holds for limb in first-appearance order,
// or nil if the limb was never observed.
func (ix LimbIndex) Holds(limb string) []string {
	return append([]string(nil), ix.holds[limb]...)
}

// FirstLimb returns the first limb key by the defined order, used as the
// initial selection after a new video list arrives. ok is false when the
// index is empty.
func (ix LimbIndex) FirstLimb() (limb string, ok bool) {
	if len(ix.limbs) == 0 {
		return "", false
	}
	return ix.limbs[0], true
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
