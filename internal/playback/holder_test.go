package playback

import (
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewHolder_Placeholder(t *testing.T) {
	h := NewHolder()

	m := h.Current()
	if m == nil {
		t.Fatal("Current() = nil, want placeholder")
	}
	if m.State() != StateStopped {
		t.Errorf("placeholder State() = %v, want Stopped", m.State())
	}
	if h.HasActiveSession() {
		t.Error("HasActiveSession() = true, want false")
	}
}

func TestHolder_Replace(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := NewHolder()
		first, _ := startedManager(t, testItem("i1", time.Minute, 0))
		h.Replace(first)
		<-h.Changed()

		assert.Same(t, first, h.Current())
		assert.True(t, h.HasActiveSession())

		second := New(NewProvider(testItem("i2", time.Minute, 0), buildFor()), WithProxy(&fakeProxy{}))
		h.Replace(second)
		<-h.Changed()

		assert.Same(t, second, h.Current())
		assert.Equal(t, StateStopped, first.State())
	})
}

func TestHolder_RecyclesOnStop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := NewHolder()
		m, _ := startedManager(t, testItem("i1", time.Minute, 0))
		h.Replace(m)
		<-h.Changed()

		m.Stop()

		<-h.Changed()
		assert.NotSame(t, m, h.Current())
		assert.Equal(t, StateStopped, h.Current().State())
		assert.False(t, h.HasActiveSession())
	})
}

func TestHolder_RecyclesOnError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := NewHolder()
		m, _ := startedManager(t, testItem("i1", time.Minute, 0))
		h.Replace(m)
		<-h.Changed()
		sub := m.Subscribe()

		m.Error(errors.New("decoder crashed"))

		<-h.Changed()
		assert.NotSame(t, m, h.Current())
		assert.Equal(t, StateStopped, m.State())
		assert.EqualError(t, m.Err(), "decoder crashed")
		<-sub.Done

		ev := <-sub.Error
		assert.Equal(t, "i1", ev.ItemID)
	})
}

func TestHolder_ReplaceStaleRecycleKeepsCurrent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := NewHolder()
		old, _ := startedManager(t, testItem("old", time.Minute, 0))
		h.Replace(old)
		next, _ := startedManager(t, testItem("next", time.Minute, 0))
		h.Replace(next)

		// old was stopped by Replace; its recycle must not evict next.
		assert.Same(t, next, h.Current())
	})
}

func TestHolder_Reset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := NewHolder()
		m, _ := startedManager(t, testItem("i1", time.Minute, 0))
		h.Replace(m)

		h.Reset()

		assert.Equal(t, StateStopped, m.State())
		assert.False(t, h.HasActiveSession())
	})
}
