package jellyfin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/llehouerou/jellywaves/internal/media"
)

// ErrNoThumbnails is returned when an item has no trickplay images.
var ErrNoThumbnails = errors.New("no thumbnails available")

// Thumbnailer serves scrub previews for one item. Video items use the
// server's trickplay tile sheets; audio items return the primary image.
type Thumbnailer struct {
	client   *Client
	item     media.Item
	sourceID string

	mu   sync.Mutex
	info *trickplayInfoDTO
	none bool
}

// NewThumbnailer creates a thumbnailer for item played from sourceID.
func (c *Client) NewThumbnailer(item media.Item, sourceID string) *Thumbnailer {
	return &Thumbnailer{client: c, item: item, sourceID: sourceID}
}

// Thumbnail returns the tile sheet containing the preview for at.
func (t *Thumbnailer) Thumbnail(ctx context.Context, at time.Duration) ([]byte, error) {
	if t.item.IsAudio() {
		return t.client.Image(ctx, t.item, 512)
	}

	info, err := t.trickplay(ctx)
	if err != nil {
		return nil, err
	}

	sheet := sheetIndex(*info, at)
	path := fmt.Sprintf("/Videos/%s/Trickplay/%d/%d.jpg", url.PathEscape(t.item.ID), info.Width, sheet)
	return t.client.fetch(ctx, path, url.Values{"mediaSourceId": {t.sourceID}})
}

// trickplay loads the tile layout once. Transient failures are retried on
// the next call.
func (t *Thumbnailer) trickplay(ctx context.Context) (*trickplayInfoDTO, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.none {
		return nil, ErrNoThumbnails
	}
	if t.info != nil {
		return t.info, nil
	}
	info, err := t.load(ctx)
	if errors.Is(err, ErrNoThumbnails) {
		t.none = true
	}
	if err != nil {
		return nil, err
	}
	t.info = info
	return info, nil
}

func (t *Thumbnailer) load(ctx context.Context) (*trickplayInfoDTO, error) {
	dto, err := t.client.getItemDTO(ctx, t.item.ID, "Trickplay")
	if err != nil {
		return nil, err
	}
	byWidth, ok := dto.Trickplay[t.sourceID]
	if !ok || len(byWidth) == 0 {
		return nil, ErrNoThumbnails
	}

	// Smallest resolution keeps scrubbing light.
	widths := make([]int, 0, len(byWidth))
	for w := range byWidth {
		if n, err := strconv.Atoi(w); err == nil {
			widths = append(widths, n)
		}
	}
	if len(widths) == 0 {
		return nil, ErrNoThumbnails
	}
	sort.Ints(widths)
	info := byWidth[strconv.Itoa(widths[0])]
	if info.Interval <= 0 || info.TileWidth <= 0 || info.TileHeight <= 0 {
		return nil, ErrNoThumbnails
	}
	return &info, nil
}

// sheetIndex returns the tile sheet holding the thumbnail for at.
func sheetIndex(info trickplayInfoDTO, at time.Duration) int {
	if at < 0 {
		at = 0
	}
	n := int(at / (time.Duration(info.Interval) * time.Millisecond))
	if info.ThumbnailCount > 0 && n >= info.ThumbnailCount {
		n = info.ThumbnailCount - 1
	}
	return n / (info.TileWidth * info.TileHeight)
}
