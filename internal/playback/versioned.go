package playback

import (
	"context"
	"sync"

	"github.com/llehouerou/jellywaves/internal/media"
)

// FetchFunc loads fresh metadata for an item.
type FetchFunc func(ctx context.Context, id string) (media.Item, error)

// VersionedItem holds catalog metadata refreshed in the background. Each
// refresh takes a version when it starts; a result is kept only if no later
// refresh has been applied, so a slow response never overwrites a newer one.
type VersionedItem struct {
	mu      sync.RWMutex
	item    media.Item
	version uint64 // version of item
	issued  uint64 // last version handed out
}

// NewVersionedItem wraps item at version zero.
func NewVersionedItem(item media.Item) *VersionedItem {
	return &VersionedItem{item: item}
}

// Item returns the current metadata.
func (v *VersionedItem) Item() media.Item {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.item
}

// Version returns the version of the current metadata.
func (v *VersionedItem) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// NextVersion reserves a version for an update about to be fetched.
func (v *VersionedItem) NextVersion() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued++
	return v.issued
}

// Update installs item if version is newer than the current one and
// reports whether it did.
func (v *VersionedItem) Update(item media.Item, version uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if version <= v.version {
		return false
	}
	v.item = item
	v.version = version
	return true
}

// Refresh fetches the item again and applies the result under a version
// reserved before the fetch.
func (v *VersionedItem) Refresh(ctx context.Context, fetch FetchFunc) (bool, error) {
	version := v.NextVersion()
	item, err := fetch(ctx, v.Item().ID)
	if err != nil {
		return false, err
	}
	return v.Update(item, version), nil
}
