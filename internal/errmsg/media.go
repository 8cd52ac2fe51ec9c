package errmsg

import (
	"errors"
	"fmt"
)

// Kind classifies a media playback failure.
type Kind int

const (
	KindNoPlayableSource Kind = iota
	KindUnsupportedFormat
	KindTranscodingFailed
	KindStreamEnded
	KindLoadFailed
	KindItemNotFound
	KindNoMediaInfo
	KindNotPlayable
	KindSessionCreationFailed
	KindSessionExpired
	KindReportingFailed
)

// String returns a short description of the kind.
func (k Kind) String() string {
	switch k {
	case KindNoPlayableSource:
		return "no playable source"
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindTranscodingFailed:
		return "transcoding failed"
	case KindStreamEnded:
		return "stream ended unexpectedly"
	case KindLoadFailed:
		return "failed to load media"
	case KindItemNotFound:
		return "item not found"
	case KindNoMediaInfo:
		return "item has no media"
	case KindNotPlayable:
		return "item is not playable"
	case KindSessionCreationFailed:
		return "could not create playback session"
	case KindSessionExpired:
		return "playback session expired"
	case KindReportingFailed:
		return "failed to report playback"
	default:
		return "unknown media error"
	}
}

// MediaError is a playback failure shown to the user.
type MediaError struct {
	Kind   Kind
	Detail string // format name, item id or server reason
	Err    error
}

// NewMediaError wraps err with a kind.
func NewMediaError(kind Kind, err error) *MediaError {
	return &MediaError{Kind: kind, Err: err}
}

// WithItem records the item id the error refers to.
func (e *MediaError) WithItem(id string) *MediaError {
	e.Detail = id
	return e
}

func (e *MediaError) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MediaError) Unwrap() error { return e.Err }

// Title groups kinds under a heading for error screens.
func (e *MediaError) Title() string {
	switch e.Kind {
	case KindNoPlayableSource, KindUnsupportedFormat, KindNotPlayable:
		return "Cannot Play"
	case KindTranscodingFailed:
		return "Transcoding Error"
	case KindStreamEnded, KindLoadFailed:
		return "Playback Error"
	case KindItemNotFound, KindNoMediaInfo:
		return "Item Error"
	case KindSessionCreationFailed, KindSessionExpired, KindReportingFailed:
		return "Session Error"
	default:
		return "Error"
	}
}

// IsRetryable reports whether trying again may succeed.
func (e *MediaError) IsRetryable() bool {
	switch e.Kind {
	case KindTranscodingFailed, KindStreamEnded, KindLoadFailed, KindSessionExpired, KindReportingFailed:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether err is a retryable media error.
func IsRetryable(err error) bool {
	var me *MediaError
	return errors.As(err, &me) && me.IsRetryable()
}

// Describe returns a message for any error, using the media error title
// when there is one.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var me *MediaError
	if errors.As(err, &me) {
		return me.Title() + ": " + me.Error()
	}
	return err.Error()
}
