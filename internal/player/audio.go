package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/sirupsen/logrus"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"

	positionInterval = 250 * time.Millisecond
	resampleQuality  = 4
)

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// InitSpeaker opens the shared audio device once. Later calls are no-ops.
func InitSpeaker(rate beep.SampleRate) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return err
	}
	speakerSampleRate = rate
	speakerInitialized = true
	return nil
}

// SpeakerInitialized reports whether the shared audio device is open.
func SpeakerInitialized() bool {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	return speakerInitialized
}

// Audio plays audio-only streams through beep. The stream is downloaded to
// a temporary file so it can be decoded and seeked locally.
type Audio struct {
	mu          sync.Mutex
	client      *http.Client
	state       State
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	resampler   *beep.Resampler
	volume      *effects.Volume
	file        *os.File
	rate        float64
	volumeLevel float64
	muted       bool
	wantPaused  bool
	generation  uint64
	cancel      context.CancelFunc
	events      chan Event
	log         *logrus.Entry
}

// NewAudio creates an audio backend using client for downloads.
func NewAudio(client *http.Client) *Audio {
	if client == nil {
		client = http.DefaultClient
	}
	return &Audio{
		client:      client,
		rate:        1,
		volumeLevel: 1,
		events:      make(chan Event, eventBufferSize),
		log:         logrus.WithField("component", "player.audio"),
	}
}

// Load stops the current stream and starts fetching cfg.URL. The result is
// reported through Events.
func (a *Audio) Load(cfg Config) error {
	if cfg.URL == "" {
		return errors.New("empty stream url")
	}

	a.mu.Lock()
	a.stopLocked()
	a.generation++
	gen := a.generation
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.wantPaused = false
	if cfg.Rate > 0 {
		a.rate = cfg.Rate
	}
	a.setStateLocked(StateOpening, nil)
	a.mu.Unlock()

	go a.open(ctx, gen, cfg)
	return nil
}

func (a *Audio) open(ctx context.Context, gen uint64, cfg Config) {
	a.mu.Lock()
	if gen == a.generation {
		a.setStateLocked(StateBuffering, nil)
	}
	a.mu.Unlock()

	f, ext, err := a.download(ctx, cfg.URL)
	if err != nil {
		a.failed(gen, err)
		return
	}

	streamer, format, err := decode(f, ext)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		a.failed(gen, err)
		return
	}
	if err := InitSpeaker(format.SampleRate); err != nil {
		streamer.Close()
		f.Close()
		os.Remove(f.Name())
		a.failed(gen, fmt.Errorf("init speaker: %w", err))
		return
	}

	if start := format.SampleRate.N(cfg.Start); start > 0 && start < streamer.Len() {
		if err := streamer.Seek(start); err != nil {
			a.log.WithError(err).Warn("seek to start position failed")
		}
	}

	a.mu.Lock()
	if gen != a.generation {
		a.mu.Unlock()
		streamer.Close()
		f.Close()
		os.Remove(f.Name())
		return
	}
	a.file = f
	a.streamer = streamer
	a.format = format

	ratio := a.rate
	if format.SampleRate != speakerSampleRate {
		ratio *= float64(format.SampleRate) / float64(speakerSampleRate)
	}
	a.resampler = beep.ResampleRatio(resampleQuality, ratio, streamer)
	a.ctrl = &beep.Ctrl{Streamer: a.resampler, Paused: a.wantPaused}
	a.volume = &effects.Volume{Streamer: a.ctrl, Base: 2, Volume: levelToVolume(a.volumeLevel), Silent: a.muted}
	volume := a.volume
	state := StatePlaying
	if a.wantPaused {
		state = StatePaused
	}
	a.setStateLocked(state, nil)
	a.mu.Unlock()

	speaker.Play(beep.Seq(volume, beep.Callback(func() {
		go a.finished(gen)
	})))
	go a.reportPositions(ctx, gen)
}

// download writes the stream to a temporary file and returns it rewound,
// with the extension naming its container.
func (a *Audio) download(ctx context.Context, rawURL string) (*os.File, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch stream: status %d", resp.StatusCode)
	}

	ext := containerExt(resp.Header.Get("Content-Type"), rawURL)
	if ext == "" {
		return nil, "", fmt.Errorf("unsupported stream type: %s", resp.Header.Get("Content-Type"))
	}

	f, err := os.CreateTemp("", "jellywaves-*"+ext)
	if err != nil {
		return nil, "", fmt.Errorf("create temp file: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, "", fmt.Errorf("download stream: %w", err)
	}

	a.log.WithFields(logrus.Fields{
		"size":   humanize.Bytes(uint64(n)),
		"format": strings.TrimPrefix(ext, "."),
	}).Debug("stream downloaded")
	return f, ext, nil
}

// containerExt picks a decoder from the response type, falling back to the
// URL's path or container query parameter.
func containerExt(contentType, rawURL string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "audio/mpeg", "audio/mp3":
			return extMP3
		case "audio/flac", "audio/x-flac":
			return extFLAC
		case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
			return extWAV
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	candidates := []string{strings.ToLower(path.Ext(u.Path))}
	for c := range strings.SplitSeq(u.Query().Get("container"), ",") {
		candidates = append(candidates, "."+strings.ToLower(strings.TrimSpace(c)))
	}
	for _, ext := range candidates {
		switch ext {
		case extMP3, extFLAC, extWAV:
			return ext
		}
	}
	return ""
}

func decode(f *os.File, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case extMP3:
		return mp3.Decode(f)
	case extFLAC:
		return flac.Decode(f)
	case extWAV:
		return wav.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported format: %s", ext)
	}
}

func (a *Audio) reportPositions(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(positionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.mu.Lock()
			if gen != a.generation {
				a.mu.Unlock()
				return
			}
			playing := a.state == StatePlaying
			a.mu.Unlock()
			if playing {
				emit(a.events, Event{Kind: EventPosition, Position: a.Position()})
			}
		}
	}
}

func (a *Audio) finished(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation || a.state == StateIdle {
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.setStateLocked(StateEnded, nil)
}

func (a *Audio) failed(gen uint64, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	a.log.WithError(err).Error("audio stream failed")
	a.setStateLocked(StateError, err)
}

func (a *Audio) setStateLocked(s State, err error) {
	a.state = s
	emit(a.events, Event{Kind: EventState, State: s, Err: err})
}

// Play resumes playback. Before the stream is ready it clears a pending pause.
func (a *Audio) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.wantPaused = false
	if a.state != StatePaused || a.ctrl == nil {
		return nil
	}
	speaker.Lock()
	a.ctrl.Paused = false
	speaker.Unlock()
	a.setStateLocked(StatePlaying, nil)
	return nil
}

// Pause pauses playback. Before the stream is ready the pause is applied
// once it starts.
func (a *Audio) Pause() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.wantPaused = true
	if a.state != StatePlaying || a.ctrl == nil {
		return nil
	}
	speaker.Lock()
	a.ctrl.Paused = true
	speaker.Unlock()
	a.setStateLocked(StatePaused, nil)
	return nil
}

// Stop stops playback and releases the stream.
func (a *Audio) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateIdle {
		return nil
	}
	a.generation++
	a.stopLocked()
	a.setStateLocked(StateIdle, nil)
	return nil
}

func (a *Audio) stopLocked() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.streamer == nil {
		return
	}
	speaker.Clear()
	a.streamer.Close()
	a.streamer = nil
	if a.file != nil {
		a.file.Close()
		os.Remove(a.file.Name())
		a.file = nil
	}
	a.ctrl = nil
	a.resampler = nil
	a.volume = nil
}

// Seek moves to an absolute position. Seeking past the end ends the stream.
func (a *Audio) Seek(pos time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil {
		return nil
	}

	n := max(a.format.SampleRate.N(pos), 0)
	if n >= a.streamer.Len() {
		a.generation++
		a.stopLocked()
		a.setStateLocked(StateEnded, nil)
		return nil
	}

	speaker.Lock()
	err := a.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	emit(a.events, Event{Kind: EventPosition, Position: a.format.SampleRate.D(n)})
	return nil
}

// SetRate changes the playback speed. Pitch follows the rate.
func (a *Audio) SetRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("invalid rate: %v", rate)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rate = rate
	if a.resampler == nil {
		return nil
	}
	ratio := rate
	if a.format.SampleRate != speakerSampleRate {
		ratio *= float64(a.format.SampleRate) / float64(speakerSampleRate)
	}
	speaker.Lock()
	a.resampler.SetRatio(ratio)
	speaker.Unlock()
	return nil
}

// SetAudioTrack is a no-op: downloaded streams carry one audio track.
func (a *Audio) SetAudioTrack(int) error { return nil }

// SetSubtitleTrack is a no-op for audio streams.
func (a *Audio) SetSubtitleTrack(int) error { return nil }

func (a *Audio) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Position returns the current playback position.
func (a *Audio) Position() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := a.format.SampleRate.D(a.streamer.Position())
	speaker.Unlock()
	return pos
}

// Duration returns the decoded stream length.
func (a *Audio) Duration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil {
		return 0
	}
	return a.format.SampleRate.D(a.streamer.Len())
}

func (a *Audio) VideoSize() (int, int) { return 0, 0 }

func (a *Audio) Events() <-chan Event { return a.events }

// Close stops playback. The events channel stays open.
func (a *Audio) Close() error {
	return a.Stop()
}
