package audioroute

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	activations   int
	deactivations int
	activateErr   error
}

func (f *fakeBackend) Activate() error {
	f.activations++
	return f.activateErr
}

func (f *fakeBackend) Deactivate() error {
	f.deactivations++
	return nil
}

func TestConfigureAndDeactivate(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)

	require.NoError(t, s.Configure())
	assert.True(t, s.IsActive())

	require.NoError(t, s.Deactivate())
	assert.False(t, s.IsActive())
	assert.Equal(t, 1, b.deactivations)
}

func TestDeactivate_SkippedWhenInactive(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)

	require.NoError(t, s.Deactivate())
	assert.Equal(t, 0, b.deactivations)
}

func TestConfigure_Failure(t *testing.T) {
	b := &fakeBackend{activateErr: errors.New("device busy")}
	s := New(b)

	require.Error(t, s.Configure())
	assert.False(t, s.IsActive())
	assert.False(t, s.EnsureActive())
}

func TestEnsureActive_OnlyActivatesOnce(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)

	assert.True(t, s.EnsureActive())
	assert.True(t, s.EnsureActive())
	assert.Equal(t, 1, b.activations)
}

func TestNilBackendTracksState(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Configure())
	assert.True(t, s.IsActive())
	require.NoError(t, s.Deactivate())
	assert.False(t, s.IsActive())
}

func TestWatch_DeliversInterruptions(t *testing.T) {
	s := New(nil)
	a, releaseA := s.Watch()
	b, releaseB := s.Watch()
	defer releaseA()

	s.Interrupt(Interruption{Kind: InterruptionBegan})

	assert.Equal(t, Interruption{Kind: InterruptionBegan}, <-a)
	assert.Equal(t, Interruption{Kind: InterruptionBegan}, <-b)

	releaseB()
	releaseB()
	_, open := <-b
	assert.False(t, open, "released watch should be closed")

	s.Interrupt(Interruption{Kind: InterruptionEnded, ShouldResume: true})
	assert.Equal(t, Interruption{Kind: InterruptionEnded, ShouldResume: true}, <-a)
}

func TestInterrupt_DoesNotBlockOnFullWatcher(t *testing.T) {
	s := New(nil)
	_, release := s.Watch()
	defer release()

	for range 10 {
		s.Interrupt(Interruption{Kind: InterruptionBegan})
	}
}

func TestInterruptionKindString(t *testing.T) {
	assert.Equal(t, "began", InterruptionBegan.String())
	assert.Equal(t, "ended", InterruptionEnded.String())
}
