package playlist

import "github.com/llehouerou/jellywaves/internal/media"

// Playlist holds an ordered collection of catalog items.
type Playlist struct {
	items []media.Item
}

// NewPlaylist creates a new playlist holding items.
func NewPlaylist(items ...media.Item) *Playlist {
	p := &Playlist{items: make([]media.Item, 0, len(items))}
	p.Add(items...)
	return p
}

// Add appends items to the playlist.
func (p *Playlist) Add(items ...media.Item) {
	p.items = append(p.items, items...)
}

// Remove removes the item at the given index.
// Returns false if index is out of bounds.
func (p *Playlist) Remove(index int) bool {
	if index < 0 || index >= len(p.items) {
		return false
	}
	p.items = append(p.items[:index], p.items[index+1:]...)
	return true
}

// Clear removes all items from the playlist.
func (p *Playlist) Clear() {
	p.items = p.items[:0]
}

// Items returns a copy of all items.
func (p *Playlist) Items() []media.Item {
	result := make([]media.Item, len(p.items))
	copy(result, p.items)
	return result
}

// Item returns the item at the given index, or nil if out of bounds.
func (p *Playlist) Item(index int) *media.Item {
	if index < 0 || index >= len(p.items) {
		return nil
	}
	return &p.items[index]
}

// IndexOf returns the index of the first item with id, or -1.
func (p *Playlist) IndexOf(id string) int {
	for i := range p.items {
		if p.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Len returns the number of items.
func (p *Playlist) Len() int {
	return len(p.items)
}

// Move moves the item at fromIndex to toIndex.
// Returns false if either index is out of bounds.
func (p *Playlist) Move(fromIndex, toIndex int) bool {
	if fromIndex < 0 || fromIndex >= len(p.items) {
		return false
	}
	if toIndex < 0 || toIndex >= len(p.items) {
		return false
	}
	if fromIndex == toIndex {
		return true
	}

	item := p.items[fromIndex]
	p.items = append(p.items[:fromIndex], p.items[fromIndex+1:]...)
	p.items = append(p.items[:toIndex], append([]media.Item{item}, p.items[toIndex:]...)...)
	return true
}
