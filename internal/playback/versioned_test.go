package playback

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/llehouerou/jellywaves/internal/media"
)

func TestVersionedItem_Update(t *testing.T) {
	v := NewVersionedItem(media.Item{ID: "a", Name: "Old"})

	if !v.Update(media.Item{ID: "a", Name: "Two"}, 2) {
		t.Fatal("Update(v2) = false, want true")
	}
	if v.Update(media.Item{ID: "a", Name: "One"}, 1) {
		t.Error("Update(v1) after v2 = true, want false")
	}
	if v.Update(media.Item{ID: "a", Name: "Again"}, 2) {
		t.Error("Update(v2) twice = true, want false")
	}
	if got := v.Item().Name; got != "Two" {
		t.Errorf("Item().Name = %q, want Two", got)
	}
	if got := v.Version(); got != 2 {
		t.Errorf("Version() = %d, want 2", got)
	}
}

func TestVersionedItem_SlowRefreshDropped(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		v := NewVersionedItem(media.Item{ID: "a", Name: "Initial"})

		slow := func(ctx context.Context, id string) (media.Item, error) {
			time.Sleep(2 * time.Second)
			return media.Item{ID: id, Name: "Slow"}, nil
		}
		fast := func(ctx context.Context, id string) (media.Item, error) {
			time.Sleep(time.Second)
			return media.Item{ID: id, Name: "Fast"}, nil
		}

		results := make(chan bool, 2)
		go func() {
			ok, _ := v.Refresh(context.Background(), slow)
			results <- ok
		}()
		synctest.Wait()
		go func() {
			ok, _ := v.Refresh(context.Background(), fast)
			results <- ok
		}()

		if ok := <-results; !ok {
			t.Error("fast refresh applied = false, want true")
		}
		if ok := <-results; ok {
			t.Error("slow refresh applied = true, want false")
		}
		if got := v.Item().Name; got != "Fast" {
			t.Errorf("Item().Name = %q, want Fast", got)
		}
	})
}

func TestVersionedItem_RefreshError(t *testing.T) {
	v := NewVersionedItem(media.Item{ID: "a", Name: "Initial"})
	want := errors.New("offline")

	ok, err := v.Refresh(context.Background(), func(context.Context, string) (media.Item, error) {
		return media.Item{}, want
	})
	if ok || !errors.Is(err, want) {
		t.Errorf("Refresh() = %v, %v, want false, %v", ok, err, want)
	}
	if got := v.Item().Name; got != "Initial" {
		t.Errorf("Item().Name = %q, want Initial", got)
	}
}
