package jellyfin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/llehouerou/jellywaves/internal/errmsg"
	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
)

// PlaybackInfo is the server's answer to a playback negotiation.
type PlaybackInfo struct {
	Sources       []media.Source
	PlaySessionID string
}

// BuildOptions controls how items are resolved into playable streams.
type BuildOptions struct {
	// AudioLanguage is preferred when choosing the initial audio stream.
	AudioLanguage string
	// AudioContainers, when set, restricts audio items to these containers
	// through the universal endpoint, transcoding when needed.
	AudioContainers []string
	// MaxStreamingBitrate caps the negotiated bitrate; 0 leaves it to the server.
	MaxStreamingBitrate int
}

func itoa(n int) string { return strconv.Itoa(n) }

// GetPlaybackInfo negotiates the media sources for itemID.
func (c *Client) GetPlaybackInfo(ctx context.Context, itemID string, start int64, opts BuildOptions) (*PlaybackInfo, error) {
	userID, err := c.requireUser()
	if err != nil {
		return nil, err
	}

	req := playbackInfoRequest{
		UserID:              userID,
		StartTimeTicks:      start,
		MaxStreamingBitrate: opts.MaxStreamingBitrate,
		AutoOpenLiveStream:  true,
		EnableDirectPlay:    true,
		EnableDirectStream:  true,
		EnableTranscoding:   true,
	}
	var resp playbackInfoResponse
	path := "/Items/" + url.PathEscape(itemID) + "/PlaybackInfo"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		if IsNotFound(err) {
			return nil, errmsg.NewMediaError(errmsg.KindItemNotFound, err).WithItem(itemID)
		}
		return nil, errmsg.NewMediaError(errmsg.KindSessionCreationFailed, err).WithItem(itemID)
	}

	if resp.ErrorCode != "" {
		me := errmsg.NewMediaError(errmsg.KindNoPlayableSource, fmt.Errorf("server refused playback: %s", resp.ErrorCode))
		me.Detail = resp.ErrorCode
		return nil, me
	}
	if len(resp.MediaSources) == 0 {
		return nil, errmsg.NewMediaError(errmsg.KindNoMediaInfo, nil).WithItem(itemID)
	}

	info := &PlaybackInfo{PlaySessionID: resp.PlaySessionID}
	for _, s := range resp.MediaSources {
		info.Sources = append(info.Sources, s.toSource())
	}
	if info.PlaySessionID == "" {
		info.PlaySessionID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return info, nil
}

// StreamURL returns the address the engine should open for item.
func (c *Client) StreamURL(item media.Item, src media.Source, playSessionID string, opts BuildOptions) (string, error) {
	q := url.Values{
		"mediaSourceId": {src.ID},
		"playSessionId": {playSessionID},
		"deviceId":      {c.deviceID},
		"api_key":       {c.Token()},
	}

	if item.IsAudio() && len(opts.AudioContainers) > 0 {
		q.Set("userId", c.UserID())
		q.Set("container", strings.Join(opts.AudioContainers, ","))
		q.Set("transcodingContainer", opts.AudioContainers[0])
		q.Set("audioCodec", opts.AudioContainers[0])
		q.Set("transcodingProtocol", "http")
		if opts.MaxStreamingBitrate > 0 {
			q.Set("maxStreamingBitrate", itoa(opts.MaxStreamingBitrate))
		}
		return c.baseURL + "/Audio/" + url.PathEscape(item.ID) + "/universal?" + q.Encode(), nil
	}

	if src.SupportsDirectPlay || src.SupportsDirectStream {
		q.Set("static", "true")
		if src.Container != "" {
			q.Set("container", src.Container)
		}
		kind := "Videos"
		if item.IsAudio() {
			kind = "Audio"
		}
		return c.baseURL + "/" + kind + "/" + url.PathEscape(item.ID) + "/stream?" + q.Encode(), nil
	}

	if src.TranscodingURL != "" {
		return c.baseURL + src.TranscodingURL, nil
	}

	return "", errmsg.NewMediaError(errmsg.KindNotPlayable, nil).WithItem(item.ID)
}

// Builder returns a BuildFunc that resolves catalog items into playback
// items: playback negotiation, stream address, initial stream selection,
// media segments and thumbnails.
func (c *Client) Builder(opts BuildOptions) playback.BuildFunc {
	log := c.log.WithField("op", "build")
	return func(ctx context.Context, item media.Item) (*playback.Item, error) {
		info, err := c.GetPlaybackInfo(ctx, item.ID, media.Ticks(item.StartPosition), opts)
		if err != nil {
			return nil, err
		}
		src := info.Sources[0]

		streamURL, err := c.StreamURL(item, src, info.PlaySessionID, opts)
		if err != nil {
			return nil, err
		}

		var segments []media.Segment
		if !item.IsAudio() {
			segments, err = c.GetSegments(ctx, item.ID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.WithError(err).WithField("itemID", item.ID).Warn("media segments unavailable")
			}
		}

		return playback.NewItem(playback.ItemConfig{
			BaseItem:            item,
			Source:              src,
			URL:                 streamURL,
			PlaySessionID:       info.PlaySessionID,
			Segments:            segments,
			AudioStreamIndex:    src.SelectAudioStream(opts.AudioLanguage),
			SubtitleStreamIndex: src.SelectSubtitleStream(),
			Thumbnailer:         c.NewThumbnailer(item, src.ID),
		}), nil
	}
}

// GetSegments returns the intro/outro style segments of an item.
func (c *Client) GetSegments(ctx context.Context, itemID string) ([]media.Segment, error) {
	var resp segmentsResponse
	if err := c.do(ctx, http.MethodGet, "/MediaSegments/"+url.PathEscape(itemID), nil, nil, &resp); err != nil {
		return nil, err
	}
	segments := make([]media.Segment, 0, len(resp.Items))
	for _, s := range resp.Items {
		if s.EndTicks <= s.StartTicks {
			c.log.WithField("segmentID", s.ID).Debug("skipping empty segment")
			continue
		}
		segments = append(segments, s.toSegment())
	}
	return segments, nil
}
