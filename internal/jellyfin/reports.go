package jellyfin

import (
	"context"
	"net/http"
	"net/url"
)

// PlaybackReport is the body of the start, progress and stopped reports.
type PlaybackReport struct {
	ItemID              string `json:"ItemId"`
	MediaSourceID       string `json:"MediaSourceId,omitempty"`
	PlaySessionID       string `json:"PlaySessionId,omitempty"`
	PositionTicks       int64  `json:"PositionTicks"`
	IsPaused            bool   `json:"IsPaused"`
	AudioStreamIndex    *int   `json:"AudioStreamIndex,omitempty"`
	SubtitleStreamIndex *int   `json:"SubtitleStreamIndex,omitempty"`
}

// ReportStart tells the server playback of an item began.
func (c *Client) ReportStart(ctx context.Context, r PlaybackReport) error {
	return c.do(ctx, http.MethodPost, "/Sessions/Playing", nil, r, nil)
}

// ReportProgress sends a periodic position update.
func (c *Client) ReportProgress(ctx context.Context, r PlaybackReport) error {
	return c.do(ctx, http.MethodPost, "/Sessions/Playing/Progress", nil, r, nil)
}

// ReportStopped tells the server playback of an item ended.
func (c *Client) ReportStopped(ctx context.Context, r PlaybackReport) error {
	return c.do(ctx, http.MethodPost, "/Sessions/Playing/Stopped", nil, r, nil)
}

// MarkPlayed marks an item as played for the signed-in user.
func (c *Client) MarkPlayed(ctx context.Context, itemID string) error {
	userID, err := c.requireUser()
	if err != nil {
		return err
	}
	q := url.Values{"userId": {userID}}
	return c.do(ctx, http.MethodPost, "/UserPlayedItems/"+url.PathEscape(itemID), q, nil, nil)
}
