package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/jellywaves/internal/jellyfin"
	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
	"github.com/llehouerou/jellywaves/internal/state"
)

type call struct {
	kind   string
	report jellyfin.PlaybackReport
}

// fakeReporter records reports and fails the kinds listed in fail.
type fakeReporter struct {
	mu    sync.Mutex
	calls []call
	fail  map[string]error
}

func (r *fakeReporter) record(kind string, rep jellyfin.PlaybackReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{kind: kind, report: rep})
	return r.fail[kind]
}

func (r *fakeReporter) ReportStart(_ context.Context, rep jellyfin.PlaybackReport) error {
	return r.record("start", rep)
}

func (r *fakeReporter) ReportProgress(_ context.Context, rep jellyfin.PlaybackReport) error {
	return r.record("progress", rep)
}

func (r *fakeReporter) ReportStopped(_ context.Context, rep jellyfin.PlaybackReport) error {
	return r.record("stop", rep)
}

func (r *fakeReporter) MarkPlayed(_ context.Context, itemID string) error {
	return r.record("played", jellyfin.PlaybackReport{ItemID: itemID})
}

func (r *fakeReporter) of(kind string) []jellyfin.PlaybackReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []jellyfin.PlaybackReport
	for _, c := range r.calls {
		if c.kind == kind {
			out = append(out, c.report)
		}
	}
	return out
}

func (r *fakeReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func build(_ context.Context, item media.Item) (*playback.Item, error) {
	return playback.NewItem(playback.ItemConfig{
		BaseItem:            item,
		Source:              media.Source{ID: "src-" + item.ID},
		PlaySessionID:       "ps-" + item.ID,
		AudioStreamIndex:    1,
		SubtitleStreamIndex: -1,
	}), nil
}

func movie(id string) media.Item {
	return media.Item{ID: id, Name: id, Type: media.TypeMovie, Runtime: 100 * time.Second}
}

func start(t *testing.T, o *Observer, item media.Item) *playback.Manager {
	t.Helper()
	m := playback.New(playback.NewProvider(item, build), playback.WithObservers(o))
	m.Start()
	synctest.Wait()
	require.Equal(t, playback.StatePlayback, m.State())
	return m
}

func TestObserver_StartThenProgress(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rep := &fakeReporter{}
		o := New(rep, nil, Options{})
		m := start(t, o, movie("m1"))
		defer m.Stop()

		starts := rep.of("start")
		require.Len(t, starts, 1)
		assert.Equal(t, "m1", starts[0].ItemID)
		assert.Equal(t, "src-m1", starts[0].MediaSourceID)
		assert.Equal(t, "ps-m1", starts[0].PlaySessionID)
		require.NotNil(t, starts[0].AudioStreamIndex)
		assert.Equal(t, 1, *starts[0].AudioStreamIndex)
		assert.Nil(t, starts[0].SubtitleStreamIndex)
		assert.Empty(t, rep.of("progress"))

		m.ReportSeconds(20 * time.Second)
		time.Sleep(DefaultInterval)
		synctest.Wait()

		progress := rep.of("progress")
		require.Len(t, progress, 1)
		assert.Equal(t, media.Ticks(20*time.Second), progress[0].PositionTicks)
		assert.False(t, progress[0].IsPaused)

		time.Sleep(DefaultInterval)
		synctest.Wait()
		assert.Len(t, rep.of("progress"), 2)
	})
}

func TestObserver_PauseSendsPausedProgress(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rep := &fakeReporter{}
		o := New(rep, nil, Options{})
		m := start(t, o, movie("m1"))
		defer m.Stop()

		m.SetPlaybackRequestStatus(playback.RequestPaused)
		synctest.Wait()

		progress := rep.of("progress")
		require.Len(t, progress, 1)
		assert.True(t, progress[0].IsPaused)

		time.Sleep(DefaultInterval)
		synctest.Wait()
		progress = rep.of("progress")
		require.Len(t, progress, 2)
		assert.True(t, progress[1].IsPaused)
	})
}

func TestObserver_ItemChangeMarksAndStops(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rep := &fakeReporter{}
		o := New(rep, nil, Options{})
		m := start(t, o, movie("m1"))
		defer m.Stop()

		m.ReportSeconds(95 * time.Second)
		synctest.Wait()
		m.PlayNewItem(playback.NewProvider(movie("m2"), build))
		synctest.Wait()

		played := rep.of("played")
		require.Len(t, played, 1)
		assert.Equal(t, "m1", played[0].ItemID)

		stops := rep.of("stop")
		require.Len(t, stops, 1)
		assert.Equal(t, "m1", stops[0].ItemID)
		assert.Equal(t, media.Ticks(95*time.Second), stops[0].PositionTicks)

		starts := rep.of("start")
		require.Len(t, starts, 2)
		assert.Equal(t, "m2", starts[1].ItemID)
	})
}

func TestObserver_BelowThresholdNotMarked(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rep := &fakeReporter{}
		o := New(rep, nil, Options{Threshold: 0.9})
		m := start(t, o, movie("m1"))

		m.ReportSeconds(50 * time.Second)
		synctest.Wait()
		m.Stop()
		synctest.Wait()

		assert.Empty(t, rep.of("played"))
		assert.Len(t, rep.of("stop"), 1)
	})
}

func TestObserver_MarkedOnlyOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rep := &fakeReporter{}
		o := New(rep, nil, Options{})
		m := start(t, o, movie("m1"))

		m.ReportSeconds(92 * time.Second)
		time.Sleep(DefaultInterval)
		synctest.Wait()
		require.Len(t, rep.of("played"), 1)

		// seeking back does not undo the mark, and stop does not resend it
		m.ReportSeconds(10 * time.Second)
		synctest.Wait()
		m.ReportSeconds(95 * time.Second)
		synctest.Wait()
		m.Stop()
		synctest.Wait()

		assert.Len(t, rep.of("played"), 1)
	})
}

func TestObserver_StopSendsOneStopAndEndsTimer(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rep := &fakeReporter{}
		o := New(rep, nil, Options{})
		m := start(t, o, movie("m1"))

		m.ReportSeconds(30 * time.Second)
		synctest.Wait()
		m.Stop()
		synctest.Wait()

		stops := rep.of("stop")
		require.Len(t, stops, 1)
		assert.Equal(t, media.Ticks(30*time.Second), stops[0].PositionTicks)

		n := rep.count()
		time.Sleep(3 * DefaultInterval)
		synctest.Wait()
		assert.Equal(t, n, rep.count())
	})
}

func TestObserver_ErrorSendsStop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rep := &fakeReporter{}
		o := New(rep, nil, Options{})
		h := playback.NewHolder()
		m := playback.New(playback.NewProvider(movie("m1"), build), playback.WithObservers(o))
		h.Replace(m)
		m.Start()
		synctest.Wait()

		m.Error(errors.New("decoder crashed"))
		synctest.Wait()

		assert.Equal(t, playback.StateStopped, m.State())
		assert.Len(t, rep.of("stop"), 1)
	})
}

func TestObserver_FailedReportsQueued(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		boom := errors.New("server unavailable")
		rep := &fakeReporter{fail: map[string]error{
			"start":    boom,
			"progress": boom,
			"stop":     boom,
		}}
		outbox := state.NewMock()
		o := New(rep, outbox, Options{})
		m := start(t, o, movie("m1"))

		time.Sleep(DefaultInterval)
		synctest.Wait()
		m.Stop()
		synctest.Wait()

		pending, err := outbox.GetPendingReports()
		require.NoError(t, err)
		kinds := make([]string, 0, len(pending))
		for _, p := range pending {
			kinds = append(kinds, p.Kind)
			assert.Equal(t, "m1", p.ItemID)
			assert.Equal(t, "ps-m1", p.PlaySessionID)
			assert.Equal(t, "src-m1", p.MediaSourceID)
			require.NotNil(t, p.AudioStreamIndex)
			assert.Equal(t, 1, *p.AudioStreamIndex)
			assert.Nil(t, p.SubtitleStreamIndex)
			assert.Equal(t, boom.Error(), p.LastError)
		}
		assert.ElementsMatch(t, []string{state.ReportStart, state.ReportStop}, kinds)
	})
}

func TestReachedThreshold(t *testing.T) {
	tests := []struct {
		name    string
		runtime time.Duration
		pos     time.Duration
		want    bool
	}{
		{"unknown runtime", 0, time.Hour, false},
		{"below", 100 * time.Second, 89 * time.Second, false},
		{"at threshold", 100 * time.Second, 90 * time.Second, true},
		{"past end", 100 * time.Second, 120 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := media.Item{Runtime: tt.runtime}
			if got := reachedThreshold(item, tt.pos, 0.9); got != tt.want {
				t.Errorf("reachedThreshold() = %v, want %v", got, tt.want)
			}
		})
	}
}
