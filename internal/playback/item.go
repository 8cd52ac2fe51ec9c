package playback

import (
	"context"
	"sync"
	"time"

	"github.com/llehouerou/jellywaves/internal/media"
)

// Thumbnailer returns a preview image for a position within an item.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, at time.Duration) ([]byte, error)
}

// ItemConfig describes a resolved playback item.
type ItemConfig struct {
	BaseItem            media.Item
	Source              media.Source
	URL                 string
	PlaySessionID       string
	Segments            []media.Segment
	AudioStreamIndex    int // -1 for none
	SubtitleStreamIndex int // -1 for none
	Thumbnailer         Thumbnailer
}

// Item is the concrete, resolved media being played: URL, stream
// selections, session id and segments. URL and session id are fixed at
// construction; stream selections may change and are re-read by the
// engine on its next configuration.
type Item struct {
	baseItem      media.Item
	source        media.Source
	url           string
	playSessionID string
	segments      []media.Segment
	thumbnailer   Thumbnailer

	mu            sync.RWMutex
	audioIndex    int
	subtitleIndex int
}

// NewItem creates a playback item from cfg.
func NewItem(cfg ItemConfig) *Item {
	segments := make([]media.Segment, len(cfg.Segments))
	copy(segments, cfg.Segments)
	return &Item{
		baseItem:      cfg.BaseItem,
		source:        cfg.Source,
		url:           cfg.URL,
		playSessionID: cfg.PlaySessionID,
		segments:      segments,
		thumbnailer:   cfg.Thumbnailer,
		audioIndex:    cfg.AudioStreamIndex,
		subtitleIndex: cfg.SubtitleStreamIndex,
	}
}

func (i *Item) BaseItem() media.Item      { return i.baseItem }
func (i *Item) Source() media.Source      { return i.source }
func (i *Item) URL() string               { return i.url }
func (i *Item) PlaySessionID() string     { return i.playSessionID }
func (i *Item) Segments() []media.Segment { return i.segments }
func (i *Item) Thumbnailer() Thumbnailer  { return i.thumbnailer }

// AudioStreamIndex returns the selected audio stream, or -1.
func (i *Item) AudioStreamIndex() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.audioIndex
}

// SetAudioStreamIndex changes the selected audio stream.
func (i *Item) SetAudioStreamIndex(index int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.audioIndex = index
}

// SubtitleStreamIndex returns the selected subtitle stream, or -1.
func (i *Item) SubtitleStreamIndex() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.subtitleIndex
}

// SetSubtitleStreamIndex changes the selected subtitle stream.
func (i *Item) SetSubtitleStreamIndex(index int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.subtitleIndex = index
}
