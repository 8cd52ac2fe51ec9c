package engine

import (
	"testing"
	"time"

	"github.com/llehouerou/jellywaves/internal/player"
)

func TestStallDetector(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) time.Time { return base.Add(d) }

	type obs struct {
		state player.State
		at    time.Duration
	}
	playing := func(d time.Duration) obs { return obs{player.StatePlaying, d} }
	buffering := func(d time.Duration) obs { return obs{player.StateBuffering, d} }

	tests := []struct {
		name  string
		feed  []obs
		fires int
	}{
		{
			name:  "five rapid buffering events",
			feed:  []obs{playing(0), buffering(1 * time.Second), buffering(2 * time.Second), buffering(3 * time.Second), buffering(4 * time.Second), buffering(5 * time.Second)},
			fires: 1,
		},
		{
			name:  "four rapid buffering events",
			feed:  []obs{playing(0), buffering(1 * time.Second), buffering(2 * time.Second), buffering(3 * time.Second), buffering(4 * time.Second)},
			fires: 0,
		},
		{
			name: "playing between buffering starts over",
			feed: []obs{
				playing(0), buffering(500 * time.Millisecond),
				playing(1 * time.Second), buffering(1500 * time.Millisecond),
				playing(2 * time.Second), buffering(2500 * time.Millisecond),
				playing(3 * time.Second), buffering(3500 * time.Millisecond),
				playing(4 * time.Second), buffering(4500 * time.Millisecond),
			},
			fires: 0,
		},
		{
			name: "four stalls then playing then one more",
			feed: []obs{
				playing(0),
				buffering(1 * time.Second), buffering(2 * time.Second), buffering(3 * time.Second), buffering(4 * time.Second),
				playing(5 * time.Second), buffering(6 * time.Second),
			},
			fires: 0,
		},
		{
			name: "buffering after pause is not counted",
			feed: []obs{
				playing(0), {player.StatePaused, 500 * time.Millisecond},
				buffering(1 * time.Second), buffering(2 * time.Second), buffering(3 * time.Second), buffering(4 * time.Second), buffering(5 * time.Second),
			},
			fires: 0,
		},
		{
			name: "events spaced beyond the window",
			feed: []obs{
				playing(0), buffering(1 * time.Second),
				playing(11 * time.Second), buffering(12 * time.Second),
				playing(23 * time.Second), buffering(24 * time.Second),
				playing(35 * time.Second), buffering(36 * time.Second),
				playing(47 * time.Second), buffering(48 * time.Second),
			},
			fires: 0,
		},
		{
			name:  "buffering long after last playing",
			feed:  []obs{playing(0), buffering(11 * time.Second), buffering(12 * time.Second), buffering(13 * time.Second), buffering(14 * time.Second), buffering(15 * time.Second)},
			fires: 0,
		},
		{
			name:  "no playing yet",
			feed:  []obs{buffering(0), buffering(1 * time.Second), buffering(2 * time.Second), buffering(3 * time.Second), buffering(4 * time.Second)},
			fires: 0,
		},
		{
			name: "ten rapid events fire once then need playing again",
			feed: []obs{
				playing(0),
				buffering(1 * time.Second), buffering(2 * time.Second), buffering(3 * time.Second), buffering(4 * time.Second), buffering(5 * time.Second),
				buffering(6 * time.Second), buffering(7 * time.Second), buffering(8 * time.Second), buffering(9 * time.Second), buffering(9500 * time.Millisecond),
			},
			fires: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewStallDetector()
			fires := 0
			for _, o := range tt.feed {
				if d.Observe(o.state, at(o.at)) {
					fires++
				}
			}
			if fires != tt.fires {
				t.Errorf("fired %d times, want %d", fires, tt.fires)
			}
		})
	}
}

func TestStallDetector_IgnoresOtherStates(t *testing.T) {
	d := NewStallDetector()
	now := time.Now()
	d.Observe(player.StatePlaying, now)

	for _, s := range []player.State{player.StatePaused, player.StateOpening, player.StateEnded, player.StateError} {
		if d.Observe(s, now) {
			t.Errorf("Observe(%v) fired", s)
		}
	}
	if d.Count() != 0 {
		t.Errorf("Count() = %d, want 0", d.Count())
	}
}
