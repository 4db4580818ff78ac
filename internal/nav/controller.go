package nav

import (
	"errors"
	"math"
	"sync"
)

// DefaultSeekOffsetMillis is the fixed forward offset added to every seek so
// players land just past the contact frame rather than just before it.
const DefaultSeekOffsetMillis int64 = 120

// ErrNoActiveLimb is returned when a hold is selected before any limb.
var ErrNoActiveLimb = errors.New("no active limb selected")

// Player is the control capability for the set of independently-loaded video
// players, keyed by video index. The controller holds only indices, never the
// underlying player instances.
type Player interface {
	// Seek moves the player at index to the given position in milliseconds.
	Seek(index int, ms int64)
}

// Controller is the event-synchronized navigation controller. It owns the
// single mutation pathway for the session's video list, selection, and player
// runtime state, and drives all N players to the correct timestamps (or the
// defined not-found state) whenever the selection changes.
//
// All public methods are serialized by one mutex, so every selection change
// evaluates all per-video decisions against one consistent snapshot.
type Controller struct {
	mu           sync.Mutex
	repo         Repository
	player       Player
	offsetMillis int64
}

// NewController returns a Controller that drives player using repo for state.
// If offsetMillis < 0, DefaultSeekOffsetMillis is used.
func NewController(repo Repository, player Player, offsetMillis int64) *Controller {
	if offsetMillis < 0 {
		offsetMillis = DefaultSeekOffsetMillis
	}
	return &Controller{repo: repo, player: player, offsetMillis: offsetMillis}
}

// ReplaceVideos installs a new video list, replacing (never merging) any prior
// one. Player runtime state is rebuilt from scratch. When the rebuilt limb
// index is non-empty the first limb key becomes the active limb, with no hold
// selected; otherwise nothing is auto-selected.
func (c *Controller) ReplaceVideos(videos []VideoItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sel Selection
	if limb, ok := BuildLimbIndex(videos).FirstLimb(); ok {
		sel.ActiveLimb = limb
	}
	snap := c.repo.ReplaceVideos(videos, sel)
	c.applyLocked(snap)
}

// ClearVideos resets the session to an empty video list and no selection.
func (c *Controller) ClearVideos() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repo.ReplaceVideos(nil, Selection{})
}

// SelectLimb sets the active limb. Changing the limb always clears the active
// hold, so this alone never produces a not-found condition.
func (c *Controller) SelectLimb(limb string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.repo.SetSelection(Selection{ActiveLimb: limb})
	c.applyLocked(snap)
}

// SelectHold sets the active hold relative to the current active limb and
// re-evaluates every video. Returns ErrNoActiveLimb when no limb is selected.
func (c *Controller) SelectHold(hold string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.repo.Snapshot()
	if snap.Selection.ActiveLimb == "" {
		return ErrNoActiveLimb
	}
	snap = c.repo.SetSelection(Selection{
		ActiveLimb: snap.Selection.ActiveLimb,
		ActiveHold: hold,
	})
	c.applyLocked(snap)
	return nil
}

// PlayerReady records that the player at index finished loading and lazily
// re-evaluates that one video against the current selection.
func (c *Controller) PlayerReady(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.repo.SetPlayerLoaded(index, true)
	if err != nil {
		return err
	}
	notFound := c.decideLocked(snap, index)
	c.repo.SetNotFound(map[int]bool{index: notFound})
	return nil
}

// PlayerError records that the player at index failed to load; it is skipped
// by subsequent selection changes until it reports ready again.
func (c *Controller) PlayerError(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.repo.SetPlayerLoaded(index, false)
	return err
}

// applyLocked evaluates the per-video seek decision for every index against
// one snapshot and writes back the resulting not-found flags. Players that
// are not loaded are skipped and their flags left untouched. Caller must hold
// c.mu.
func (c *Controller) applyLocked(snap Snapshot) {
	flags := make(map[int]bool, len(snap.Videos))
	for i := range snap.Videos {
		if !snap.Players[i].Loaded {
			continue
		}
		flags[i] = c.decideLocked(snap, i)
	}
	if len(flags) > 0 {
		c.repo.SetNotFound(flags)
	}
}

// decideLocked makes the seek decision for one video index: on a resolved
// timestamp it issues the seek (with the fixed forward offset) and reports no
// not-found condition; on a miss it reports not-found only when both limb and
// hold are actually set, so an incomplete selection never flags a video.
func (c *Controller) decideLocked(snap Snapshot, index int) (notFound bool) {
	limb := snap.Selection.ActiveLimb
	hold := snap.Selection.ActiveHold

	seconds, ok := ResolveTimestamp(snap.Videos, index, limb, hold)
	if ok {
		c.player.Seek(index, int64(math.Round(seconds*1000))+c.offsetMillis)
		return false
	}
	return limb != "" && hold != ""
}

// VideoView is the per-video read surface exposed to the presentation layer.
type VideoView struct {
	VideoURL string `json:"videoUrl"`
	Loaded   bool   `json:"loaded"`
	NotFound bool   `json:"notFound"`
}

// View is a consistent read-only projection of the session for rendering:
// ordered limb keys, ordered holds for the active limb, the selection, and
// per-video player state.
type View struct {
	ActiveLimb string      `json:"activeLimb"`
	ActiveHold string      `json:"activeHold"`
	Limbs      []string    `json:"limbs"`
	Holds      []string    `json:"holds"`
	Videos     []VideoView `json:"videos"`
}

// View returns the current projection. It reads one repository snapshot, so
// it never observes a partially-applied selection change.
func (c *Controller) View() View {
	snap := c.repo.Snapshot()
	index := BuildLimbIndex(snap.Videos)

	view := View{
		ActiveLimb: snap.Selection.ActiveLimb,
		ActiveHold: snap.Selection.ActiveHold,
		Limbs:      index.Limbs(),
		Videos:     make([]VideoView, len(snap.Videos)),
	}
	if view.ActiveLimb != "" {
		view.Holds = index.Holds(view.ActiveLimb)
	}
	for i, video := range snap.Videos {
		view.Videos[i] = VideoView{
			VideoURL: video.VideoURL,
			Loaded:   snap.Players[i].Loaded,
			NotFound: snap.Players[i].NotFound,
		}
	}
	return view
}
