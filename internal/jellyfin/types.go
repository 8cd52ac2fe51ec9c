package jellyfin

import (
	"github.com/samber/lo"

	"github.com/llehouerou/jellywaves/internal/media"
)

type authRequest struct {
	Username string `json:"Username"`
	Pw       string `json:"Pw"`
}

type authResponse struct {
	AccessToken string  `json:"AccessToken"`
	User        userDTO `json:"User"`
}

type userDTO struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

type userDataDTO struct {
	PlaybackPositionTicks int64   `json:"PlaybackPositionTicks"`
	PlayedPercentage      float64 `json:"PlayedPercentage"`
	Played                bool    `json:"Played"`
}

type itemDTO struct {
	ID           string                                 `json:"Id"`
	Name         string                                 `json:"Name"`
	SeriesName   string                                 `json:"SeriesName"`
	Album        string                                 `json:"Album"`
	Artists      []string                               `json:"Artists"`
	Type         string                                 `json:"Type"`
	RunTimeTicks int64                                  `json:"RunTimeTicks"`
	UserData     *userDataDTO                           `json:"UserData"`
	ImageTags    map[string]string                      `json:"ImageTags"`
	MediaSources []mediaSourceDTO                       `json:"MediaSources"`
	Trickplay    map[string]map[string]trickplayInfoDTO `json:"Trickplay"`
}

type itemsResponse struct {
	Items []itemDTO `json:"Items"`
}

type mediaStreamDTO struct {
	Index        int    `json:"Index"`
	Type         string `json:"Type"`
	Language     string `json:"Language"`
	DisplayTitle string `json:"DisplayTitle"`
	Codec        string `json:"Codec"`
	IsExternal   bool   `json:"IsExternal"`
}

type mediaSourceDTO struct {
	ID                         string           `json:"Id"`
	Container                  string           `json:"Container"`
	MediaStreams               []mediaStreamDTO `json:"MediaStreams"`
	DefaultAudioStreamIndex    *int             `json:"DefaultAudioStreamIndex"`
	DefaultSubtitleStreamIndex *int             `json:"DefaultSubtitleStreamIndex"`
	TranscodingURL             string           `json:"TranscodingUrl"`
	SupportsDirectPlay         bool             `json:"SupportsDirectPlay"`
	SupportsDirectStream       bool             `json:"SupportsDirectStream"`
}

type playbackInfoRequest struct {
	UserID              string `json:"UserId"`
	StartTimeTicks      int64  `json:"StartTimeTicks,omitempty"`
	MaxStreamingBitrate int    `json:"MaxStreamingBitrate,omitempty"`
	AutoOpenLiveStream  bool   `json:"AutoOpenLiveStream"`
	EnableDirectPlay    bool   `json:"EnableDirectPlay"`
	EnableDirectStream  bool   `json:"EnableDirectStream"`
	EnableTranscoding   bool   `json:"EnableTranscoding"`
}

type playbackInfoResponse struct {
	MediaSources  []mediaSourceDTO `json:"MediaSources"`
	PlaySessionID string           `json:"PlaySessionId"`
	ErrorCode     string           `json:"ErrorCode"`
}

type segmentDTO struct {
	ID         string `json:"Id"`
	Type       string `json:"Type"`
	StartTicks int64  `json:"StartTicks"`
	EndTicks   int64  `json:"EndTicks"`
}

type segmentsResponse struct {
	Items []segmentDTO `json:"Items"`
}

type trickplayInfoDTO struct {
	Width          int `json:"Width"`
	Height         int `json:"Height"`
	TileWidth      int `json:"TileWidth"`
	TileHeight     int `json:"TileHeight"`
	ThumbnailCount int `json:"ThumbnailCount"`
	Interval       int `json:"Interval"` // milliseconds
}

type playStateDTO struct {
	PlayMethod    string `json:"PlayMethod"`
	IsPaused      bool   `json:"IsPaused"`
	PositionTicks int64  `json:"PositionTicks"`
}

type transcodingInfoDTO struct {
	Bitrate          int      `json:"Bitrate"`
	VideoCodec       string   `json:"VideoCodec"`
	AudioCodec       string   `json:"AudioCodec"`
	Container        string   `json:"Container"`
	IsVideoDirect    bool     `json:"IsVideoDirect"`
	IsAudioDirect    bool     `json:"IsAudioDirect"`
	TranscodeReasons []string `json:"TranscodeReasons"`
}

type sessionDTO struct {
	ID              string              `json:"Id"`
	UserName        string              `json:"UserName"`
	DeviceID        string              `json:"DeviceId"`
	NowPlayingItem  *itemDTO            `json:"NowPlayingItem"`
	PlayState       *playStateDTO       `json:"PlayState"`
	TranscodingInfo *transcodingInfoDTO `json:"TranscodingInfo"`
}

func (d itemDTO) toItem() media.Item {
	it := media.Item{
		ID:         d.ID,
		Name:       d.Name,
		SeriesName: d.SeriesName,
		Album:      d.Album,
		Artists:    d.Artists,
		Type:       media.ItemType(d.Type),
		Runtime:    media.FromTicks(d.RunTimeTicks),
		ImageTag:   d.ImageTags["Primary"],
	}
	it.IsLive = it.Type == media.TypeTVChannel || (it.Type == media.TypeProgram && d.RunTimeTicks == 0)
	if d.UserData != nil {
		it.StartPosition = media.FromTicks(d.UserData.PlaybackPositionTicks)
		it.PlayedPercentage = d.UserData.PlayedPercentage
	}
	return it
}

func (d mediaSourceDTO) toSource() media.Source {
	return media.Source{
		ID:        d.ID,
		Container: d.Container,
		Streams: lo.Map(d.MediaStreams, func(s mediaStreamDTO, _ int) media.Stream {
			return media.Stream{
				Index:        s.Index,
				Type:         media.StreamType(s.Type),
				Language:     s.Language,
				DisplayTitle: s.DisplayTitle,
				Codec:        s.Codec,
				IsExternal:   s.IsExternal,
			}
		}),
		DefaultAudioStreamIndex:    d.DefaultAudioStreamIndex,
		DefaultSubtitleStreamIndex: d.DefaultSubtitleStreamIndex,
		TranscodingURL:             d.TranscodingURL,
		SupportsDirectPlay:         d.SupportsDirectPlay,
		SupportsDirectStream:       d.SupportsDirectStream,
	}
}

func (d segmentDTO) toSegment() media.Segment {
	t := media.SegmentType(d.Type)
	switch t {
	case media.SegmentIntro, media.SegmentOutro, media.SegmentRecap,
		media.SegmentPreview, media.SegmentCommercial:
	default:
		t = media.SegmentUnknown
	}
	return media.Segment{
		ID:    d.ID,
		Type:  t,
		Start: media.FromTicks(d.StartTicks),
		End:   media.FromTicks(d.EndTicks),
	}
}
