// Package media describes catalog entries as the server reports them.
package media

import "time"

// ItemType is the server-side kind of a catalog item.
type ItemType string

const (
	TypeMovie      ItemType = "Movie"
	TypeEpisode    ItemType = "Episode"
	TypeAudio      ItemType = "Audio"
	TypeMusicVideo ItemType = "MusicVideo"
	TypeTVChannel  ItemType = "TvChannel"
	TypeProgram    ItemType = "Program"
	TypeVideo      ItemType = "Video"
)

// Item is a catalog entry, independent of any playback session.
type Item struct {
	ID               string
	Name             string
	SeriesName       string
	Album            string
	Artists          []string
	Type             ItemType
	Runtime          time.Duration // zero when unknown
	StartPosition    time.Duration // resume point
	IsLive           bool
	PlayedPercentage float64
	ImageTag         string
}

// DisplayTitle returns the title shown to the user.
func (i Item) DisplayTitle() string {
	if i.Type == TypeEpisode && i.SeriesName != "" {
		return i.SeriesName + " - " + i.Name
	}
	return i.Name
}

// IsAudio reports whether the item plays without a video surface.
func (i Item) IsAudio() bool {
	return i.Type == TypeAudio
}

// HasRuntime reports whether the server knows the item's length.
func (i Item) HasRuntime() bool {
	return i.Runtime > 0
}

// WithStartPosition returns a copy of the item starting at pos.
func (i Item) WithStartPosition(pos time.Duration) Item {
	i.StartPosition = pos
	return i
}

// PrimaryArtist returns the first listed artist, or "".
func (i Item) PrimaryArtist() string {
	if len(i.Artists) == 0 {
		return ""
	}
	return i.Artists[0]
}
