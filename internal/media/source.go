package media

import (
	"strings"

	"github.com/samber/lo"
)

// StreamType is the kind of an elementary stream inside a media source.
type StreamType string

const (
	StreamVideo    StreamType = "Video"
	StreamAudio    StreamType = "Audio"
	StreamSubtitle StreamType = "Subtitle"
)

// Stream is one elementary stream of a media source.
type Stream struct {
	Index        int
	Type         StreamType
	Language     string
	DisplayTitle string
	Codec        string
	IsExternal   bool
}

// Source is one playable version of an item.
type Source struct {
	ID                         string
	Container                  string
	Streams                    []Stream
	DefaultAudioStreamIndex    *int
	DefaultSubtitleStreamIndex *int
	TranscodingURL             string
	SupportsDirectPlay         bool
	SupportsDirectStream       bool
}

// AudioStreams returns the audio streams in server order.
func (s Source) AudioStreams() []Stream {
	return s.streamsOf(StreamAudio)
}

// SubtitleStreams returns the subtitle streams in server order.
func (s Source) SubtitleStreams() []Stream {
	return s.streamsOf(StreamSubtitle)
}

func (s Source) streamsOf(t StreamType) []Stream {
	return lo.Filter(s.Streams, func(st Stream, _ int) bool {
		return st.Type == t
	})
}

// SelectAudioStream picks the initial audio stream index.
// A stream in the preferred language wins, then a default index that names
// an audio stream, then the first audio stream. Returns -1 when the source
// has no audio.
func (s Source) SelectAudioStream(preferredLanguage string) int {
	audio := s.AudioStreams()
	if len(audio) == 0 {
		return -1
	}

	if preferredLanguage != "" {
		if st, ok := lo.Find(audio, func(st Stream) bool {
			return strings.EqualFold(st.Language, preferredLanguage)
		}); ok {
			return st.Index
		}
	}

	if s.DefaultAudioStreamIndex != nil {
		def := *s.DefaultAudioStreamIndex
		if lo.ContainsBy(audio, func(st Stream) bool { return st.Index == def }) {
			return def
		}
	}

	return audio[0].Index
}

// SelectSubtitleStream returns the default subtitle index, or -1 for none.
func (s Source) SelectSubtitleStream() int {
	if s.DefaultSubtitleStreamIndex == nil {
		return -1
	}
	def := *s.DefaultSubtitleStreamIndex
	if lo.ContainsBy(s.SubtitleStreams(), func(st Stream) bool { return st.Index == def }) {
		return def
	}
	return -1
}
