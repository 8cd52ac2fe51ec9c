package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	maxRetries        = 3
	retryDelay        = 100 * time.Millisecond
	readDeadline      = time.Second
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// observedProperties are watched on the event connection.
var observedProperties = []string{
	"time-pos",
	"pause",
	"paused-for-cache",
	"eof-reached",
	"idle-active",
	"width",
	"height",
}

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id,omitempty"`
}

// ipcMessage is a reply or an event read from mpv's IPC socket.
type ipcMessage struct {
	RequestID int64  `json:"request_id"`
	Error     string `json:"error"`
	Data      any    `json:"data"`
	Event     string `json:"event"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

// MPV drives an mpv process over its JSON IPC socket.
type MPV struct {
	binary    string
	extraArgs []string

	mu         sync.Mutex // serialises process lifecycle and commands
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	conn       net.Conn
	requestID  atomic.Int64

	statusMu sync.Mutex
	status   mpvStatus

	events chan Event
	log    *logrus.Entry
}

// NewMPV creates an mpv backend. The process starts on the first Load.
func NewMPV(binary string, extraArgs ...string) *MPV {
	if binary == "" {
		binary = "mpv"
	}
	return &MPV{
		binary:    binary,
		extraArgs: extraArgs,
		events:    make(chan Event, eventBufferSize),
		log:       logrus.WithField("component", "player.mpv"),
	}
}

// Load replaces the current file with cfg.URL.
func (m *MPV) Load(cfg Config) error {
	if cfg.URL == "" {
		return errors.New("empty stream url")
	}
	if err := m.ensureRunning(); err != nil {
		return err
	}

	rate := cfg.Rate
	if rate <= 0 {
		rate = 1
	}
	props := [][2]any{
		{"start", "+" + formatSeconds(cfg.Start)},
		{"aid", trackValue(cfg.AudioTrack, "auto")},
		{"sid", trackValue(cfg.SubtitleTrack, "no")},
		{"speed", rate},
		{"pause", false},
	}
	if cfg.NetworkCaching > 0 {
		props = append(props, [2]any{"cache-secs", cfg.NetworkCaching.Seconds()})
	}
	if cfg.Title != "" {
		props = append(props, [2]any{"force-media-title", cfg.Title})
	}
	for _, p := range props {
		if _, err := m.sendCommand("set_property", p[0], p[1]); err != nil {
			return fmt.Errorf("set %v: %w", p[0], err)
		}
	}

	m.update(func(s *mpvStatus) {
		*s = mpvStatus{opening: true}
	})
	if _, err := m.sendCommand("loadfile", cfg.URL, "replace"); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}
	return nil
}

func trackValue(track int, fallback string) any {
	if track <= 0 {
		return fallback
	}
	return track
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(max(d, 0).Seconds(), 'f', 3, 64)
}

func (m *MPV) Play() error {
	_, err := m.sendCommand("set_property", "pause", false)
	return err
}

func (m *MPV) Pause() error {
	_, err := m.sendCommand("set_property", "pause", true)
	return err
}

func (m *MPV) Stop() error {
	if !m.running() {
		return nil
	}
	_, err := m.sendCommand("stop")
	m.update(func(s *mpvStatus) { *s = mpvStatus{idle: true} })
	return err
}

// Seek moves to an absolute position.
func (m *MPV) Seek(pos time.Duration) error {
	_, err := m.sendCommand("seek", max(pos, 0).Seconds(), "absolute")
	return err
}

func (m *MPV) SetRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("invalid rate: %v", rate)
	}
	_, err := m.sendCommand("set_property", "speed", rate)
	return err
}

func (m *MPV) SetAudioTrack(track int) error {
	_, err := m.sendCommand("set_property", "aid", trackValue(track, "auto"))
	return err
}

func (m *MPV) SetSubtitleTrack(track int) error {
	_, err := m.sendCommand("set_property", "sid", trackValue(track, "no"))
	return err
}

func (m *MPV) State() State {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return m.status.state()
}

func (m *MPV) Position() time.Duration {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return m.status.position
}

func (m *MPV) VideoSize() (int, int) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return m.status.width, m.status.height
}

func (m *MPV) Events() <-chan Event { return m.events }

// Close quits mpv and removes its socket.
func (m *MPV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd == nil {
		return nil
	}
	_, _ = m.doSendCommand([]any{"quit"})
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	select {
	case <-m.exited:
	case <-time.After(time.Second):
		_ = killProcess(m.cmd)
	}
	os.Remove(m.socketPath)
	m.cmd = nil
	return nil
}

func (m *MPV) running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd == nil {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// ensureRunning starts an idle mpv and its event connection if needed.
func (m *MPV) ensureRunning() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cmd != nil {
		select {
		case <-m.exited:
			m.cmd = nil
		default:
			return nil
		}
	}

	m.socketPath = filepath.Join(os.TempDir(), "jellywaves-"+uuid.NewString()+".sock")
	args := append([]string{
		"--no-terminal",
		"--really-quiet",
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=no",
		"--input-ipc-server=" + m.socketPath,
	}, m.extraArgs...)

	cmd := exec.Command(m.binary, args...)
	cmd.SysProcAttr = sysProcAttr()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()
	m.cmd = cmd
	m.exited = exited

	if err := m.waitForSocket(); err != nil {
		_ = killProcess(cmd)
		m.cmd = nil
		return fmt.Errorf("mpv socket not ready: %w", err)
	}
	if err := m.listen(); err != nil {
		_ = killProcess(cmd)
		m.cmd = nil
		return err
	}
	go m.watchExit(exited)

	m.log.WithField("socket", m.socketPath).Info("mpv started")
	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for range socketWaitRetries {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) watchExit(exited chan struct{}) {
	<-exited
	m.mu.Lock()
	current := m.exited == exited
	m.mu.Unlock()
	if !current {
		return
	}
	m.update(func(s *mpvStatus) {
		if s.loaded || s.opening {
			s.err = errors.New("mpv exited")
		}
	})
}

// sendCommand sends a JSON-IPC command, retrying transient failures.
func (m *MPV) sendCommand(command ...any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd == nil {
		return nil, errors.New("mpv is not running")
	}

	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}
		result, err := m.doSendCommand(command)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// doSendCommand performs a single command on a fresh connection and waits
// for its reply, skipping broadcast events.
func (m *MPV) doSendCommand(command []any) (any, error) {
	conn, err := net.Dial("unix", m.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	id := m.requestID.Add(1)
	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Event != "" || msg.RequestID != id {
			continue
		}
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv error: %s", msg.Error)
		}
		return msg.Data, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, errors.New("read: connection closed")
}

// listen opens the persistent event connection and observes properties on it.
func (m *MPV) listen() error {
	conn, err := net.Dial("unix", m.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	for i, name := range observedProperties {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err != nil {
			conn.Close()
			return fmt.Errorf("marshal: %w", err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}
	m.conn = conn
	go m.readLoop(conn)
	return nil
}

// readLoop reads newline-delimited events until the connection closes.
func (m *MPV) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		m.handleMessage(msg)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		m.log.WithError(err).Warn("mpv event connection lost")
	}
}

func (m *MPV) handleMessage(msg ipcMessage) {
	switch msg.Event {
	case "property-change":
		m.handleProperty(msg.Name, msg.Data)
	case "":
	default:
		m.update(func(s *mpvStatus) { s.applyEvent(msg) })
	}
}

func (m *MPV) handleProperty(name string, data any) {
	switch name {
	case "time-pos":
		secs, ok := data.(float64)
		if !ok {
			return
		}
		pos := time.Duration(secs * float64(time.Second))
		m.statusMu.Lock()
		m.status.position = pos
		m.statusMu.Unlock()
		emit(m.events, Event{Kind: EventPosition, Position: pos})
	case "width", "height":
		v, _ := data.(float64)
		m.statusMu.Lock()
		if name == "width" {
			m.status.width = int(v)
		} else {
			m.status.height = int(v)
		}
		w, h := m.status.width, m.status.height
		m.statusMu.Unlock()
		emit(m.events, Event{Kind: EventVideoSize, Width: w, Height: h})
	default:
		m.update(func(s *mpvStatus) { s.applyProperty(name, data) })
	}
}

// update applies fn to the status and reports the derived state if it
// changed.
func (m *MPV) update(fn func(*mpvStatus)) {
	m.statusMu.Lock()
	before := m.status.state()
	fn(&m.status)
	after := m.status.state()
	err := m.status.err
	m.statusMu.Unlock()

	if before != after {
		emit(m.events, Event{Kind: EventState, State: after, Err: err})
	}
}

// mpvStatus mirrors the mpv properties a State is derived from.
type mpvStatus struct {
	idle           bool
	opening        bool
	loaded         bool
	paused         bool
	pausedForCache bool
	ended          bool
	err            error
	position       time.Duration
	width          int
	height         int
}

func (s *mpvStatus) applyProperty(name string, data any) {
	b, _ := data.(bool)
	switch name {
	case "pause":
		s.paused = b
	case "paused-for-cache":
		s.pausedForCache = b
	case "eof-reached":
		if b && s.loaded {
			s.ended = true
		}
	case "idle-active":
		s.idle = b
	}
}

func (s *mpvStatus) applyEvent(msg ipcMessage) {
	switch msg.Event {
	case "start-file":
		*s = mpvStatus{opening: true, paused: s.paused, width: s.width, height: s.height}
	case "file-loaded", "playback-restart":
		s.opening = false
		s.loaded = true
	case "end-file":
		switch msg.Reason {
		case "eof":
			s.ended = true
		case "error":
			s.err = errors.New("mpv: " + msg.FileError)
		}
	}
}

func (s mpvStatus) state() State {
	switch {
	case s.err != nil:
		return StateError
	case s.ended:
		return StateEnded
	case s.opening:
		return StateOpening
	case !s.loaded:
		return StateIdle
	case s.pausedForCache:
		return StateBuffering
	case s.paused:
		return StatePaused
	default:
		return StatePlaying
	}
}
