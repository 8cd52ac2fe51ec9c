// internal/player/mock.go
package player

import (
	"sync"
	"time"
)

// Mock is a test double for a playback backend.
type Mock struct {
	mu         sync.Mutex
	state      State
	position   time.Duration
	width      int
	height     int
	rate       float64
	loadErr    error
	loads      []Config
	calls      []string
	seekCalls  []time.Duration
	audioTrack int
	subTrack   int
	events     chan Event
	closed     bool
}

// NewMock creates a new mock backend for testing.
func NewMock() *Mock {
	return &Mock{
		state:  StateIdle,
		rate:   1,
		events: make(chan Event, eventBufferSize),
	}
}

func (m *Mock) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *Mock) Load(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("load")
	m.loads = append(m.loads, cfg)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.state = StateOpening
	m.position = cfg.Start
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("play")
	if m.state == StatePaused {
		m.state = StatePlaying
	}
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("pause")
	if m.state.CanPause() {
		m.state = StatePaused
	}
	return nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("stop")
	m.state = StateIdle
	return nil
}

func (m *Mock) Seek(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("seek")
	m.seekCalls = append(m.seekCalls, pos)
	m.position = pos
	return nil
}

func (m *Mock) SetRate(rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("rate")
	m.rate = rate
	return nil
}

func (m *Mock) SetAudioTrack(track int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("audio")
	m.audioTrack = track
	return nil
}

func (m *Mock) SetSubtitleTrack(track int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("subtitle")
	m.subTrack = track
	return nil
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) VideoSize() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

func (m *Mock) Events() <-chan Event {
	return m.events
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) Loads() []Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Config(nil), m.loads...)
}

func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times call was recorded.
func (m *Mock) CallCount(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *Mock) Tracks() (audio, subtitle int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.audioTrack, m.subTrack
}

// SimulateState sets the state and reports it.
func (m *Mock) SimulateState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	emit(m.events, Event{Kind: EventState, State: s})
}

// SimulateError moves to the error state and reports err.
func (m *Mock) SimulateError(err error) {
	m.mu.Lock()
	m.state = StateError
	m.mu.Unlock()
	emit(m.events, Event{Kind: EventState, State: StateError, Err: err})
}

// SimulatePosition sets the position and reports it.
func (m *Mock) SimulatePosition(pos time.Duration) {
	m.mu.Lock()
	m.position = pos
	m.mu.Unlock()
	emit(m.events, Event{Kind: EventPosition, Position: pos})
}

// SimulateVideoSize sets the size and reports it.
func (m *Mock) SimulateVideoSize(width, height int) {
	m.mu.Lock()
	m.width, m.height = width, height
	m.mu.Unlock()
	emit(m.events, Event{Kind: EventVideoSize, Width: width, Height: height})
}
