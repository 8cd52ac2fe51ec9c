package media

import "time"

// SegmentType classifies a media segment.
type SegmentType string

const (
	SegmentIntro      SegmentType = "Intro"
	SegmentOutro      SegmentType = "Outro"
	SegmentRecap      SegmentType = "Recap"
	SegmentPreview    SegmentType = "Preview"
	SegmentCommercial SegmentType = "Commercial"
	SegmentUnknown    SegmentType = "Unknown"
)

// Segment is a time-coded span within an item, used for skip affordances.
type Segment struct {
	ID    string
	Type  SegmentType
	Start time.Duration
	End   time.Duration
}

// Contains reports whether pos falls inside the segment, both ends included.
func (s Segment) Contains(pos time.Duration) bool {
	return pos >= s.Start && pos <= s.End
}

// SegmentAt returns the first segment containing pos, or nil.
func SegmentAt(segments []Segment, pos time.Duration) *Segment {
	for i := range segments {
		if segments[i].Contains(pos) {
			return &segments[i]
		}
	}
	return nil
}
