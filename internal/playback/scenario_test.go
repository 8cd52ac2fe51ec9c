package playback_test

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
	"github.com/llehouerou/jellywaves/internal/playlist"
)

func build(_ context.Context, item media.Item) (*playback.Item, error) {
	return playback.NewItem(playback.ItemConfig{
		BaseItem:            item,
		URL:                 "http://server/Videos/" + item.ID + "/stream",
		AudioStreamIndex:    -1,
		SubtitleStreamIndex: -1,
	}), nil
}

func queueItems() []media.Item {
	return []media.Item{
		{ID: "i1", Name: "One", Runtime: 100 * time.Second, StartPosition: 40 * time.Second},
		{ID: "i2", Name: "Two", Runtime: 100 * time.Second},
		{ID: "i3", Name: "Three", Runtime: 100 * time.Second},
	}
}

func TestEndOfQueueStops(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		items := queueItems()
		q := playlist.NewQueue(build, items...)
		m := playback.New(playback.NewProvider(items[2], build), playback.WithQueue(q))

		m.Start()
		synctest.Wait()
		require.Equal(t, playback.StatePlayback, m.State())
		require.False(t, q.HasNextItem())

		m.ReportSeconds(99500 * time.Millisecond)
		m.Ended("i3")

		assert.Equal(t, playback.StateStopped, m.State())
	})
}

func TestRepeatAllWrapsFromStart(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		items := queueItems()
		q := playlist.NewQueue(build, items...)
		m := playback.New(playback.NewProvider(items[2], build),
			playback.WithQueue(q), playback.WithModes(false, playback.RepeatAll))
		sub := m.Subscribe()

		m.Start()
		synctest.Wait()
		m.ReportSeconds(99500 * time.Millisecond)
		m.Ended("i3")
		synctest.Wait()

		assert.Equal(t, playback.StatePlayback, m.State())
		assert.Equal(t, "i1", m.Item().ID)
		assert.Equal(t, time.Duration(0), m.Seconds())
		assert.Equal(t, 0, q.CurrentIndex())

		var played []string
		for len(sub.Actions) > 0 {
			if a := <-sub.Actions; a.Action == playback.ActionPlayNewItem {
				played = append(played, a.ItemID)
			}
		}
		assert.Equal(t, []string{"i1"}, played)
	})
}

func TestRepeatOneReplaysOnSkip(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		items := queueItems()
		q := playlist.NewQueue(build, items...)
		m := playback.New(playback.NewProvider(items[1], build),
			playback.WithQueue(q), playback.WithModes(false, playback.RepeatOne))

		m.Start()
		synctest.Wait()
		m.ReportSeconds(50 * time.Second)
		m.SkipNext()
		synctest.Wait()

		assert.Equal(t, "i2", m.Item().ID)
		assert.Equal(t, time.Duration(0), m.Seconds())
	})
}

func TestShuffleKeepsPlayingItem(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		items := queueItems()
		q := playlist.NewQueue(build, items...)
		m := playback.New(playback.NewProvider(items[1], build), playback.WithQueue(q))
		m.Start()
		synctest.Wait()

		m.ToggleShuffle()

		require.NotNil(t, q.Current())
		assert.Equal(t, "i2", q.Current().ID)
		assert.Equal(t, 0, q.CurrentIndex())
		assert.Equal(t, "i2", m.Item().ID)
	})
}
