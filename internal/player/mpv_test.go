package player

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMPVStatus_State(t *testing.T) {
	tests := []struct {
		name  string
		steps func(s *mpvStatus)
		want  State
	}{
		{"fresh", func(*mpvStatus) {}, StateIdle},
		{"start file", func(s *mpvStatus) {
			s.applyEvent(ipcMessage{Event: "start-file"})
		}, StateOpening},
		{"loaded", func(s *mpvStatus) {
			s.applyEvent(ipcMessage{Event: "start-file"})
			s.applyEvent(ipcMessage{Event: "file-loaded"})
		}, StatePlaying},
		{"cache underrun", func(s *mpvStatus) {
			s.applyEvent(ipcMessage{Event: "file-loaded"})
			s.applyProperty("paused-for-cache", true)
		}, StateBuffering},
		{"paused", func(s *mpvStatus) {
			s.applyEvent(ipcMessage{Event: "file-loaded"})
			s.applyProperty("pause", true)
		}, StatePaused},
		{"paused wins over nothing loaded", func(s *mpvStatus) {
			s.applyProperty("pause", true)
		}, StateIdle},
		{"eof", func(s *mpvStatus) {
			s.applyEvent(ipcMessage{Event: "file-loaded"})
			s.applyEvent(ipcMessage{Event: "end-file", Reason: "eof"})
		}, StateEnded},
		{"eof property before load ignored", func(s *mpvStatus) {
			s.applyProperty("eof-reached", true)
		}, StateIdle},
		{"stop is not an end", func(s *mpvStatus) {
			s.applyEvent(ipcMessage{Event: "file-loaded"})
			s.applyEvent(ipcMessage{Event: "end-file", Reason: "stop"})
		}, StatePlaying},
		{"error", func(s *mpvStatus) {
			s.applyEvent(ipcMessage{Event: "start-file"})
			s.applyEvent(ipcMessage{Event: "end-file", Reason: "error", FileError: "loading failed"})
		}, StateError},
		{"next file clears error", func(s *mpvStatus) {
			s.applyEvent(ipcMessage{Event: "end-file", Reason: "error", FileError: "x"})
			s.applyEvent(ipcMessage{Event: "start-file"})
		}, StateOpening},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s mpvStatus
			tt.steps(&s)
			if got := s.state(); got != tt.want {
				t.Errorf("state() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMPV_HandleMessage_EmitsTransitions(t *testing.T) {
	m := NewMPV("")

	m.handleMessage(ipcMessage{Event: "start-file"})
	m.handleMessage(ipcMessage{Event: "file-loaded"})
	m.handleMessage(ipcMessage{Event: "property-change", Name: "time-pos", Data: 12.5})
	m.handleMessage(ipcMessage{Event: "property-change", Name: "pause", Data: false})
	m.handleMessage(ipcMessage{Event: "property-change", Name: "width", Data: 1920.0})
	m.handleMessage(ipcMessage{Event: "property-change", Name: "height", Data: 1080.0})

	var states []State
	var positions []time.Duration
	for len(m.events) > 0 {
		e := <-m.events
		switch e.Kind {
		case EventState:
			states = append(states, e.State)
		case EventPosition:
			positions = append(positions, e.Position)
		case EventVideoSize:
		}
	}

	assert.Equal(t, []State{StateOpening, StatePlaying}, states)
	assert.Equal(t, []time.Duration{12500 * time.Millisecond}, positions)
	assert.Equal(t, 12500*time.Millisecond, m.Position())
	w, h := m.VideoSize()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}

func TestTrackValue(t *testing.T) {
	assert.Equal(t, "auto", trackValue(0, "auto"))
	assert.Equal(t, "no", trackValue(-1, "no"))
	assert.Equal(t, 2, trackValue(2, "no"))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "12.500", formatSeconds(12500*time.Millisecond))
	assert.Equal(t, "0.000", formatSeconds(-time.Second))
}

// fakeIPC answers every command with data, after a broadcast event.
func fakeIPC(t *testing.T, data any) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "mpvtest")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "ipc.sock")

	ln, err := net.Listen("unix", socket)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					var cmd ipcCommand
					if json.Unmarshal(scanner.Bytes(), &cmd) != nil {
						return
					}
					_, _ = conn.Write([]byte(`{"event":"playback-restart"}` + "\n"))
					reply, _ := json.Marshal(map[string]any{
						"request_id": cmd.RequestID,
						"error":      "success",
						"data":       data,
					})
					_, _ = conn.Write(append(reply, '\n'))
				}
			}(conn)
		}
	}()
	return socket
}

func TestMPV_DoSendCommand_SkipsEvents(t *testing.T) {
	m := NewMPV("")
	m.socketPath = fakeIPC(t, 42.0)

	got, err := m.doSendCommand([]any{"get_property", "time-pos"})

	require.NoError(t, err)
	assert.InDelta(t, 42.0, got, 0.0001)
}

func TestMPV_SendCommandNotRunning(t *testing.T) {
	m := NewMPV("")

	_, err := m.sendCommand("stop")

	require.Error(t, err)
	require.NoError(t, m.Stop(), "stopping an idle backend is a no-op")
}
