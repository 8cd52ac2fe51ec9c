package lastfm

import (
	"testing"

	"github.com/llehouerou/jellywaves/internal/state"
)

func TestRetryPendingCmd_Empty(t *testing.T) {
	msg := RetryPendingCmd(RetryPendingParams{Client: &fakeSubmitter{}, Outbox: state.NewMock()})()
	if res, ok := msg.(RetryResultMsg); !ok || res != (RetryResultMsg{}) {
		t.Errorf("RetryPendingCmd() = %#v, want empty RetryResultMsg", msg)
	}
}

func TestRetryPendingCmd_SkipsExhausted(t *testing.T) {
	outbox := state.NewMock()
	_ = outbox.AddPendingScrobble(state.PendingScrobble{Artist: "Band", Track: "One"})
	for range 10 {
		_ = outbox.UpdatePendingScrobbleAttempt(1, "offline")
	}

	f := &fakeSubmitter{}
	res, _ := RetryPendingCmd(RetryPendingParams{Client: f, Outbox: outbox})().(RetryResultMsg)
	if res.Succeeded != 0 || res.Failed != 0 {
		t.Errorf("RetryResultMsg = %+v, want nothing retried", res)
	}
	if _, n := f.counts(); n != 0 {
		t.Errorf("scrobbles = %d, want 0", n)
	}
	if pending, _ := outbox.GetPendingScrobbles(); len(pending) != 1 {
		t.Errorf("GetPendingScrobbles() = %d entries, want 1", len(pending))
	}
}
