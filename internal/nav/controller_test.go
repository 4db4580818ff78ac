package nav

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

// recordingPlayer captures seek commands for assertions.
type recordingPlayer struct {
	mu    sync.Mutex
	seeks []seekCommand
}

type seekCommand struct {
	index int
	ms    int64
}

func (p *recordingPlayer) Seek(index int, ms int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seeks = append(p.seeks, seekCommand{index: index, ms: ms})
}

func (p *recordingPlayer) all() []seekCommand {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]seekCommand(nil), p.seeks...)
}

func twoVideoFixture() []VideoItem {
	return []VideoItem{
		{VideoURL: "v0", Events: []Event{{Limb: "L_HAND", Hold: "A", Timestamp: 2}}},
		{VideoURL: "v1", Events: nil},
	}
}

func newTestController(player *recordingPlayer) *Controller {
	// Zero offset so seek targets equal the raw event timestamps.
	return NewController(NewInMemoryRepository(), player, 0)
}

func TestController_ReplaceVideos_auto_selects_first_limb(t *testing.T) {
	player := &recordingPlayer{}
	c := newTestController(player)

	c.ReplaceVideos(twoVideoFixture())

	view := c.View()
	if view.ActiveLimb != "L_HAND" {
		t.Errorf("ActiveLimb = %q, want L_HAND", view.ActiveLimb)
	}
	if view.ActiveHold != "" {
		t.Errorf("ActiveHold = %q, want empty", view.ActiveHold)
	}
	if len(player.all()) != 0 {
		t.Errorf("no player is ready yet, expected no seeks, got %v", player.all())
	}
}

func TestController_ReplaceVideos_empty_index_selects_nothing(t *testing.T) {
	c := newTestController(&recordingPlayer{})

	c.ReplaceVideos([]VideoItem{{VideoURL: "v0"}})

	if view := c.View(); view.ActiveLimb != "" {
		t.Errorf("ActiveLimb = %q, want empty for event-less videos", view.ActiveLimb)
	}
}

func TestController_select_pair_seeks_and_flags(t *testing.T) {
	player := &recordingPlayer{}
	c := newTestController(player)
	c.ReplaceVideos(twoVideoFixture())

	if err := c.PlayerReady(0); err != nil {
		t.Fatalf("PlayerReady(0): %v", err)
	}
	if err := c.PlayerReady(1); err != nil {
		t.Fatalf("PlayerReady(1): %v", err)
	}

	c.SelectLimb("L_HAND")
	if err := c.SelectHold("A"); err != nil {
		t.Fatalf("SelectHold: %v", err)
	}

	seeks := player.all()
	if len(seeks) != 1 || seeks[0].index != 0 || seeks[0].ms != 2000 {
		t.Errorf("expected one seek of video 0 to 2000ms, got %v", seeks)
	}

	view := c.View()
	if view.Videos[0].NotFound {
		t.Error("video 0 has a match, notFound should be false")
	}
	if !view.Videos[1].NotFound {
		t.Error("video 1 has no matching event, notFound should be true")
	}
}

func TestController_changing_limb_clears_hold(t *testing.T) {
	c := newTestController(&recordingPlayer{})
	c.ReplaceVideos(twoVideoFixture())
	_ = c.PlayerReady(0)
	_ = c.PlayerReady(1)
	_ = c.SelectHold("A")

	c.SelectLimb("R_HAND")

	view := c.View()
	if view.ActiveHold != "" {
		t.Errorf("ActiveHold = %q, want cleared after limb change", view.ActiveHold)
	}
	// Limb change alone is an incomplete selection, never a not-found case.
	for i, v := range view.Videos {
		if v.NotFound {
			t.Errorf("video %d notFound after limb change, want false", i)
		}
	}
}

func TestController_SelectHold_without_limb(t *testing.T) {
	c := newTestController(&recordingPlayer{})
	c.ReplaceVideos([]VideoItem{{VideoURL: "v0"}})

	if err := c.SelectHold("A"); !errors.Is(err, ErrNoActiveLimb) {
		t.Errorf("expected ErrNoActiveLimb, got %v", err)
	}
}

func TestController_not_ready_player_skipped(t *testing.T) {
	player := &recordingPlayer{}
	c := newTestController(player)
	c.ReplaceVideos(twoVideoFixture())
	_ = c.PlayerReady(1) // only video 1 is ready

	_ = c.SelectHold("A")

	if len(player.all()) != 0 {
		t.Errorf("video 0 not ready, expected no seeks, got %v", player.all())
	}
	view := c.View()
	if view.Videos[0].NotFound {
		t.Error("skipped player must not gain a notFound flag")
	}
	if !view.Videos[1].NotFound {
		t.Error("ready video 1 lacks the event, notFound should be true")
	}
}

func TestController_late_ready_reevaluates(t *testing.T) {
	player := &recordingPlayer{}
	c := newTestController(player)
	c.ReplaceVideos(twoVideoFixture())
	_ = c.SelectHold("A")

	if err := c.PlayerReady(0); err != nil {
		t.Fatalf("PlayerReady(0): %v", err)
	}

	seeks := player.all()
	if len(seeks) != 1 || seeks[0].index != 0 || seeks[0].ms != 2000 {
		t.Errorf("late-ready player should seek to current selection, got %v", seeks)
	}
}

func TestController_reapply_selection_idempotent(t *testing.T) {
	player := &recordingPlayer{}
	c := newTestController(player)
	c.ReplaceVideos(twoVideoFixture())
	_ = c.PlayerReady(0)
	_ = c.PlayerReady(1)

	_ = c.SelectHold("A")
	first := c.View()
	_ = c.SelectHold("A")
	second := c.View()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-applying the same selection changed the view:\n%+v\n%+v", first, second)
	}
	seeks := player.all()
	if len(seeks) != 2 || seeks[0] != seeks[1] {
		t.Errorf("expected the same seek target twice, got %v", seeks)
	}
}

func TestController_seek_offset_applied(t *testing.T) {
	player := &recordingPlayer{}
	c := NewController(NewInMemoryRepository(), player, 150)
	c.ReplaceVideos(twoVideoFixture())
	_ = c.PlayerReady(0)

	_ = c.SelectHold("A")

	seeks := player.all()
	if len(seeks) != 1 || seeks[0].ms != 2150 {
		t.Errorf("expected seek to 2150ms with 150ms offset, got %v", seeks)
	}
}

func TestController_default_seek_offset(t *testing.T) {
	c := NewController(NewInMemoryRepository(), &recordingPlayer{}, -1)
	if c.offsetMillis != DefaultSeekOffsetMillis {
		t.Errorf("offsetMillis = %d, want default %d", c.offsetMillis, DefaultSeekOffsetMillis)
	}
}

func TestController_PlayerReady_out_of_range(t *testing.T) {
	c := newTestController(&recordingPlayer{})
	c.ReplaceVideos(twoVideoFixture())

	if err := c.PlayerReady(5); !errors.Is(err, ErrNoSuchPlayer) {
		t.Errorf("expected ErrNoSuchPlayer, got %v", err)
	}
}

func TestController_PlayerError_marks_unready(t *testing.T) {
	player := &recordingPlayer{}
	c := newTestController(player)
	c.ReplaceVideos(twoVideoFixture())
	_ = c.PlayerReady(0)

	if err := c.PlayerError(0); err != nil {
		t.Fatalf("PlayerError: %v", err)
	}
	_ = c.SelectHold("A")

	if len(player.all()) != 0 {
		t.Errorf("errored player must not receive seeks, got %v", player.all())
	}
}

func TestController_ClearVideos(t *testing.T) {
	c := newTestController(&recordingPlayer{})
	c.ReplaceVideos(twoVideoFixture())

	c.ClearVideos()

	view := c.View()
	if len(view.Videos) != 0 || view.ActiveLimb != "" || len(view.Limbs) != 0 {
		t.Errorf("expected empty session after reset, got %+v", view)
	}
}

func TestController_View_holds_for_active_limb(t *testing.T) {
	c := newTestController(&recordingPlayer{})
	c.ReplaceVideos([]VideoItem{
		{Events: []Event{
			{Limb: "L_HAND", Hold: "A", Timestamp: 1},
			{Limb: "L_HAND", Hold: "B", Timestamp: 2},
			{Limb: "R_HAND", Hold: "C", Timestamp: 3},
		}},
	})

	view := c.View()
	if want := []string{"A", "B"}; !reflect.DeepEqual(view.Holds, want) {
		t.Errorf("Holds = %v, want %v", view.Holds, want)
	}
}
