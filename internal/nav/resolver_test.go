package nav

import "testing"

func TestResolveTimestamp(t *testing.T) {
	videos := []VideoItem{
		{Events: []Event{
			{Limb: "L_HAND", Hold: "A", Timestamp: 2},
			{Limb: "L_HAND", Hold: "A", Timestamp: 8},
			{Limb: "R_HAND", Hold: "B", Timestamp: 0},
		}},
		{Events: nil},
	}

	tests := []struct {
		name        string
		index       int
		limb, hold  string
		wantSeconds float64
		wantOK      bool
	}{
		{"match", 0, "L_HAND", "A", 2, true},
		{"first match wins on duplicates", 0, "L_HAND", "A", 2, true},
		{"zero timestamp is a valid hit", 0, "R_HAND", "B", 0, true},
		{"no matching event", 1, "L_HAND", "A", 0, false},
		{"index out of range", 2, "L_HAND", "A", 0, false},
		{"negative index", -1, "L_HAND", "A", 0, false},
		{"empty limb", 0, "", "A", 0, false},
		{"empty hold", 0, "L_HAND", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seconds, ok := ResolveTimestamp(videos, tt.index, tt.limb, tt.hold)
			if ok != tt.wantOK || seconds != tt.wantSeconds {
				t.Errorf("ResolveTimestamp(%d, %q, %q) = %v, %v; want %v, %v",
					tt.index, tt.limb, tt.hold, seconds, ok, tt.wantSeconds, tt.wantOK)
			}
		})
	}
}

func TestResolveTimestamp_deterministic(t *testing.T) {
	videos := []VideoItem{
		{Events: []Event{{Limb: "L_FOOT", Hold: "X", Timestamp: 3.5}}},
	}
	for i := 0; i < 3; i++ {
		seconds, ok := ResolveTimestamp(videos, 0, "L_FOOT", "X")
		if !ok || seconds != 3.5 {
			t.Fatalf("call %d: ResolveTimestamp = %v, %v; want 3.5, true", i, seconds, ok)
		}
	}
}
