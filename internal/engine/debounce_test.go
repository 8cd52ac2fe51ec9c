package engine

import (
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"
)

func TestDebouncer_RunsLastCall(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := NewDebouncer(300 * time.Millisecond)
		var last, runs atomic.Int32

		for i := int32(1); i <= 3; i++ {
			d.Call(func() {
				last.Store(i)
				runs.Add(1)
			})
			time.Sleep(100 * time.Millisecond)
		}
		if runs.Load() != 0 {
			t.Errorf("ran %d times before the delay elapsed", runs.Load())
		}

		time.Sleep(300 * time.Millisecond)
		synctest.Wait()

		if runs.Load() != 1 {
			t.Errorf("runs = %d, want 1", runs.Load())
		}
		if last.Load() != 3 {
			t.Errorf("last = %d, want 3", last.Load())
		}
		if d.Pending() {
			t.Error("Pending() = true after run")
		}
	})
}

func TestDebouncer_Cancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := NewDebouncer(300 * time.Millisecond)
		var runs atomic.Int32

		d.Call(func() { runs.Add(1) })
		if !d.Pending() {
			t.Error("Pending() = false after Call")
		}
		d.Cancel()
		time.Sleep(time.Second)
		synctest.Wait()

		if runs.Load() != 0 {
			t.Errorf("runs = %d, want 0", runs.Load())
		}
	})
}
