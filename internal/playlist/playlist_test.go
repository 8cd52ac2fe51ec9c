//nolint:goconst // test file with repeated string literals
package playlist

import (
	"testing"

	"github.com/llehouerou/jellywaves/internal/media"
)

func ids(items []media.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestNewPlaylist(t *testing.T) {
	p := NewPlaylist()

	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
	if p.Items() == nil {
		t.Error("Items() should return empty slice, not nil")
	}
}

func TestPlaylist_Add(t *testing.T) {
	p := NewPlaylist()

	p.Add(media.Item{ID: "a"}, media.Item{ID: "b"})

	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	items := p.Items()
	if items[0].ID != "a" || items[1].ID != "b" {
		t.Errorf("Items() = %v, want [a b]", ids(items))
	}
}

func TestPlaylist_Remove(t *testing.T) {
	p := NewPlaylist(media.Item{ID: "a"}, media.Item{ID: "b"}, media.Item{ID: "c"})

	if !p.Remove(1) {
		t.Error("Remove should return true")
	}
	got := ids(p.Items())
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Items() = %v, want [a c]", got)
	}

	for _, index := range []int{-1, 2, 10} {
		if p.Remove(index) {
			t.Errorf("Remove(%d) should return false", index)
		}
	}
}

func TestPlaylist_Clear(t *testing.T) {
	p := NewPlaylist(media.Item{ID: "a"}, media.Item{ID: "b"})

	p.Clear()

	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
}

func TestPlaylist_Items_ReturnsCopy(t *testing.T) {
	p := NewPlaylist(media.Item{ID: "a"})

	items := p.Items()
	items[0].ID = "modified"

	if p.Item(0).ID != "a" {
		t.Error("modifying Items() result should not affect playlist")
	}
}

func TestPlaylist_ItemAndIndexOf(t *testing.T) {
	p := NewPlaylist(media.Item{ID: "a"}, media.Item{ID: "b"})

	if it := p.Item(1); it == nil || it.ID != "b" {
		t.Errorf("Item(1) = %v, want b", it)
	}
	if p.Item(-1) != nil || p.Item(2) != nil {
		t.Error("Item() with invalid index should return nil")
	}
	if got := p.IndexOf("b"); got != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", got)
	}
	if got := p.IndexOf("zzz"); got != -1 {
		t.Errorf("IndexOf(zzz) = %d, want -1", got)
	}
}

func TestPlaylist_Move(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"move forward", 0, 2, []string{"b", "c", "a"}},
		{"move backward", 2, 0, []string{"c", "a", "b"}},
		{"same position", 1, 1, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlaylist(media.Item{ID: "a"}, media.Item{ID: "b"}, media.Item{ID: "c"})

			if !p.Move(tt.from, tt.to) {
				t.Fatal("Move should return true")
			}
			got := ids(p.Items())
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Items() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestPlaylist_Move_InvalidIndex(t *testing.T) {
	p := NewPlaylist(media.Item{ID: "a"}, media.Item{ID: "b"})

	tests := []struct {
		name string
		from int
		to   int
	}{
		{"negative from", -1, 0},
		{"negative to", 0, -1},
		{"from out of bounds", 5, 0},
		{"to out of bounds", 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p.Move(tt.from, tt.to) {
				t.Error("Move with invalid index should return false")
			}
		})
	}
}
