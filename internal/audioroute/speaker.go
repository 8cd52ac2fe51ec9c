package audioroute

import (
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/jellywaves/internal/player"
)

// Speaker is the backend for the built-in audio engine: the shared beep
// speaker is suspended while the route is released.
type Speaker struct{}

// Activate resumes the speaker if it was initialised.
func (Speaker) Activate() error {
	if !player.SpeakerInitialized() {
		return nil
	}
	return speaker.Resume()
}

// Deactivate suspends the speaker so other applications can use the device.
func (Speaker) Deactivate() error {
	if !player.SpeakerInitialized() {
		return nil
	}
	return speaker.Suspend()
}
