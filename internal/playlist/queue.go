package playlist

import (
	"sync"

	"github.com/samber/lo"

	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
)

var _ playback.Queue = (*PlayingQueue)(nil)

// PlayingQueue resolves next/previous items for a playback manager. It keeps
// a working order over its playlist: the playlist order when shuffle is off,
// otherwise a shuffle anchored on the current item.
type PlayingQueue struct {
	mu       sync.Mutex
	playlist *Playlist
	order    []int // playlist indices in working order
	current  int   // position in order, -1 if nothing playing
	shuffle  bool
	repeat   playback.RepeatMode
	build    playback.BuildFunc

	watchers map[int]chan playback.Adjacency
	nextID   int
}

// NewQueue creates a playing queue over items. Adjacent items are resolved
// with build.
func NewQueue(build playback.BuildFunc, items ...media.Item) *PlayingQueue {
	q := &PlayingQueue{
		playlist: NewPlaylist(items...),
		current:  -1,
		build:    build,
		watchers: make(map[int]chan playback.Adjacency),
	}
	q.order = q.linearOrder()
	return q
}

// Attach syncs the queue with m's current item and modes.
func (q *PlayingQueue) Attach(m *playback.Manager) {
	item := m.Item()
	shuffle, repeat := m.Shuffle(), m.RepeatMode()

	q.mu.Lock()
	q.repeat = repeat
	q.current = q.positionOf(item.ID)
	if shuffle != q.shuffle {
		q.shuffle = shuffle
		q.reorder()
	}
	q.publishLocked()
	q.mu.Unlock()
}

// ItemDidChange moves the current position to item.
func (q *PlayingQueue) ItemDidChange(item media.Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.current = q.positionOf(item.ID)
	q.publishLocked()
}

// ModeDidChange recomputes the working order and adjacency. The current item
// stays current.
func (q *PlayingQueue) ModeDidChange(shuffle bool, repeat playback.RepeatMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeat = repeat
	if shuffle != q.shuffle {
		q.shuffle = shuffle
		q.reorder()
	}
	q.publishLocked()
}

// NextItem returns a provider for the next item, starting from zero.
func (q *PlayingQueue) NextItem() *playback.Provider {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.providerAt(q.nextPosition())
}

// PreviousItem returns a provider for the previous item, starting from zero.
func (q *PlayingQueue) PreviousItem() *playback.Provider {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.providerAt(q.previousPosition())
}

// HasNextItem reports whether NextItem resolves.
func (q *PlayingQueue) HasNextItem() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nextPosition() >= 0
}

// HasPreviousItem reports whether PreviousItem resolves.
func (q *PlayingQueue) HasPreviousItem() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.previousPosition() >= 0
}

// Watch returns adjacency updates. The channel holds only the latest value
// and starts with the current one.
func (q *PlayingQueue) Watch() (<-chan playback.Adjacency, func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := q.nextID
	q.nextID++
	ch := make(chan playback.Adjacency, 1)
	ch <- q.adjacencyLocked()
	q.watchers[id] = ch

	return ch, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.watchers, id)
	}
}

// Current returns the current item, or nil if none.
func (q *PlayingQueue) Current() *media.Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current < 0 {
		return nil
	}
	return q.playlist.Item(q.order[q.current])
}

// CurrentIndex returns the current position in the working order (-1 if none).
func (q *PlayingQueue) CurrentIndex() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

// Items returns the items in working order.
func (q *PlayingQueue) Items() []media.Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.playlist.Items()
	return lo.Map(q.order, func(i int, _ int) media.Item { return items[i] })
}

// Len returns the number of items.
func (q *PlayingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playlist.Len()
}

// IsEmpty returns true if the queue has no items.
func (q *PlayingQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Shuffle returns whether the working order is shuffled.
func (q *PlayingQueue) Shuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shuffle
}

// RepeatMode returns the repeat mode the queue resolves with.
func (q *PlayingQueue) RepeatMode() playback.RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.repeat
}

// Add appends items without changing the current item.
func (q *PlayingQueue) Add(items ...media.Item) {
	if len(items) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	start := q.playlist.Len()
	q.playlist.Add(items...)
	added := lo.RangeFrom(start, len(items))
	if q.shuffle {
		added = lo.Shuffle(added)
	}
	q.order = append(q.order, added...)
	q.publishLocked()
}

// Replace clears the queue and fills it with items. Nothing is current until
// the manager reports an item.
func (q *PlayingQueue) Replace(items ...media.Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.playlist.Clear()
	q.playlist.Add(items...)
	q.current = -1
	q.reorder()
	q.publishLocked()
}

// RemoveAt removes the item at position index of the working order.
// Returns false if index is out of bounds.
func (q *PlayingQueue) RemoveAt(index int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if index < 0 || index >= len(q.order) {
		return false
	}
	var currentID string
	if q.current >= 0 {
		currentID = q.playlist.Item(q.order[q.current]).ID
	}
	removed := q.order[index]
	q.playlist.Remove(removed)
	q.order = append(q.order[:index], q.order[index+1:]...)
	for i, idx := range q.order {
		if idx > removed {
			q.order[i] = idx - 1
		}
	}
	if index == q.current {
		q.current = -1
	} else if currentID != "" {
		q.current = q.positionOf(currentID)
	}
	q.publishLocked()
	return true
}

// Move moves the item at position from to position to in the working order.
func (q *PlayingQueue) Move(from, to int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.order)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	idx := q.order[from]
	q.order = append(q.order[:from], q.order[from+1:]...)
	q.order = append(q.order[:to], append([]int{idx}, q.order[to:]...)...)

	switch {
	case q.current == from:
		q.current = to
	case from < q.current && to >= q.current:
		q.current--
	case from > q.current && to <= q.current && q.current >= 0:
		q.current++
	}
	q.publishLocked()
	return true
}

// Clear removes all items.
func (q *PlayingQueue) Clear() {
	q.Replace()
}

func (q *PlayingQueue) linearOrder() []int {
	return lo.Range(q.playlist.Len())
}

// reorder rebuilds the working order. With shuffle on, the current item is
// placed first and the rest is shuffled.
func (q *PlayingQueue) reorder() {
	anchor := -1
	if q.current >= 0 && q.current < len(q.order) {
		anchor = q.order[q.current]
	}

	order := q.linearOrder()
	if !q.shuffle {
		q.order = order
		q.current = anchor
		return
	}

	if anchor < 0 {
		q.order = lo.Shuffle(order)
		return
	}
	rest := lo.Shuffle(lo.Without(order, anchor))
	q.order = append([]int{anchor}, rest...)
	q.current = 0
}

func (q *PlayingQueue) positionOf(id string) int {
	if id == "" {
		return -1
	}
	_, pos, ok := lo.FindIndexOf(q.order, func(idx int) bool {
		return q.playlist.Item(idx).ID == id
	})
	if !ok {
		return -1
	}
	return pos
}

// nextPosition returns the working-order position of the next item, or -1.
func (q *PlayingQueue) nextPosition() int {
	if q.current < 0 {
		return -1
	}
	switch {
	case q.repeat == playback.RepeatOne:
		return q.current
	case q.current+1 < len(q.order):
		return q.current + 1
	case q.repeat == playback.RepeatAll:
		return 0
	}
	return -1
}

// previousPosition mirrors nextPosition.
func (q *PlayingQueue) previousPosition() int {
	if q.current < 0 {
		return -1
	}
	switch {
	case q.repeat == playback.RepeatOne:
		return q.current
	case q.current > 0:
		return q.current - 1
	case q.repeat == playback.RepeatAll:
		return len(q.order) - 1
	}
	return -1
}

func (q *PlayingQueue) providerAt(pos int) *playback.Provider {
	if pos < 0 {
		return nil
	}
	item := q.playlist.Item(q.order[pos])
	return playback.NewProvider(*item, q.build).FromStart()
}

func (q *PlayingQueue) adjacencyLocked() playback.Adjacency {
	return playback.Adjacency{
		HasNext:     q.nextPosition() >= 0,
		HasPrevious: q.previousPosition() >= 0,
	}
}

func (q *PlayingQueue) publishLocked() {
	adj := q.adjacencyLocked()
	for _, ch := range q.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- adj
	}
}
