package app

import (
	"github.com/samber/lo"

	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/state"
)

// saveResume stores the queue and position of the active session. Nothing
// is written when no session is active, so the last saved state survives a
// stop.
func (m *Model) saveResume() {
	mgr := m.holder.Current()
	if m.queue == nil || mgr != m.current || !mgr.HasActiveSession() {
		return
	}
	m.deps.State.SaveResume(state.ResumeState{
		ItemIDs:      lo.Map(m.queue.Items(), func(it media.Item, _ int) string { return it.ID }),
		CurrentIndex: m.queue.CurrentIndex(),
		Position:     mgr.Seconds(),
		RepeatMode:   int(mgr.RepeatMode()),
		Shuffle:      mgr.Shuffle(),
	})
}

// adjustVolume changes the software volume of backends that have one.
func (m *Model) adjustVolume(delta float64) bool {
	vc, ok := m.deps.Backend.(volumeControl)
	if !ok {
		return false
	}
	vc.SetVolume(vc.Volume() + delta)
	m.saveVolume(vc)
	return true
}

func (m *Model) toggleMute() bool {
	vc, ok := m.deps.Backend.(volumeControl)
	if !ok {
		return false
	}
	vc.SetMuted(!vc.Muted())
	m.saveVolume(vc)
	return true
}

func (m *Model) saveVolume(vc volumeControl) {
	if err := m.deps.State.SaveVolume(vc.Volume(), vc.Muted()); err != nil {
		m.log.WithError(err).Warn("failed to save volume")
	}
}
