package jellyfin

import (
	"context"
	"net/http"
	"net/url"
)

// Session is a server-side view of a client session.
type Session struct {
	ID               string
	UserName         string
	DeviceID         string
	NowPlayingItemID string
	PlayMethod       string
	IsPaused         bool
	Transcoding      *TranscodingInfo
}

// TranscodingInfo describes how the server is delivering the stream.
type TranscodingInfo struct {
	Bitrate       int
	VideoCodec    string
	AudioCodec    string
	Container     string
	IsVideoDirect bool
	IsAudioDirect bool
	Reasons       []string
}

// GetSessions returns the server sessions belonging to this device.
func (c *Client) GetSessions(ctx context.Context) ([]Session, error) {
	q := url.Values{"deviceId": {c.deviceID}}
	var dtos []sessionDTO
	if err := c.do(ctx, http.MethodGet, "/Sessions", q, nil, &dtos); err != nil {
		return nil, err
	}

	sessions := make([]Session, 0, len(dtos))
	for _, d := range dtos {
		s := Session{
			ID:       d.ID,
			UserName: d.UserName,
			DeviceID: d.DeviceID,
		}
		if d.NowPlayingItem != nil {
			s.NowPlayingItemID = d.NowPlayingItem.ID
		}
		if d.PlayState != nil {
			s.PlayMethod = d.PlayState.PlayMethod
			s.IsPaused = d.PlayState.IsPaused
		}
		if t := d.TranscodingInfo; t != nil {
			s.Transcoding = &TranscodingInfo{
				Bitrate:       t.Bitrate,
				VideoCodec:    t.VideoCodec,
				AudioCodec:    t.AudioCodec,
				Container:     t.Container,
				IsVideoDirect: t.IsVideoDirect,
				IsAudioDirect: t.IsAudioDirect,
				Reasons:       t.TranscodeReasons,
			}
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
