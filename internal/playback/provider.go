package playback

import (
	"context"
	"errors"

	"github.com/llehouerou/jellywaves/internal/media"
)

// ErrNoProvider is returned when a provider has no build function.
var ErrNoProvider = errors.New("no item provider")

// BuildFunc resolves a catalog item into a playable item.
type BuildFunc func(ctx context.Context, item media.Item) (*Item, error)

// Provider lazily builds a playback item for a known catalog item.
type Provider struct {
	item  media.Item
	build BuildFunc
}

// NewProvider creates a provider that builds item with fn.
func NewProvider(item media.Item, fn BuildFunc) *Provider {
	return &Provider{item: item, build: fn}
}

// ItemProvider wraps an already resolved item.
func ItemProvider(it *Item) *Provider {
	return NewProvider(it.BaseItem(), func(context.Context, media.Item) (*Item, error) {
		return it, nil
	})
}

// Item returns the catalog item the provider resolves.
func (p *Provider) Item() media.Item {
	return p.item
}

// Build resolves the playback item.
func (p *Provider) Build(ctx context.Context) (*Item, error) {
	if p.build == nil {
		return nil, ErrNoProvider
	}
	return p.build(ctx, p.item)
}

// FromStart returns a provider for the same item with its start position
// reset to zero.
func (p *Provider) FromStart() *Provider {
	return &Provider{item: p.item.WithStartPosition(0), build: p.build}
}
