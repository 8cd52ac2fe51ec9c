package artwork

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/llehouerou/jellywaves/internal/media"
)

type fakeFetcher struct {
	calls int
	data  []byte
	err   error
}

func (f *fakeFetcher) Image(_ context.Context, _ media.Item, _ int) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func TestPath_DownloadsOnce(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{data: []byte{0xFF, 0xD8, 0xFF}}
	c := NewCacheDir(dir, f)
	item := media.Item{ID: "album-1", ImageTag: "tag"}

	path, err := c.Path(context.Background(), item)
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	want := filepath.Join(dir, "album-1-tag.jpg")
	if path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cached file: %v", err)
	}
	if len(data) != 3 {
		t.Errorf("cached file has %d bytes, want 3", len(data))
	}

	if _, err := c.Path(context.Background(), item); err != nil {
		t.Fatalf("second Path() error = %v", err)
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls)
	}
}

func TestPath_NewTagRefetches(t *testing.T) {
	f := &fakeFetcher{data: []byte("x")}
	c := NewCacheDir(t.TempDir(), f)

	_, _ = c.Path(context.Background(), media.Item{ID: "a", ImageTag: "1"})
	_, _ = c.Path(context.Background(), media.Item{ID: "a", ImageTag: "2"})

	if f.calls != 2 {
		t.Errorf("fetch calls = %d, want 2", f.calls)
	}
}

func TestPath_NoImage(t *testing.T) {
	f := &fakeFetcher{}
	c := NewCacheDir(t.TempDir(), f)

	path, err := c.Path(context.Background(), media.Item{ID: "a"})
	if err != nil || path != "" {
		t.Errorf("Path() = %q, %v, want empty and nil", path, err)
	}
	if f.calls != 0 {
		t.Errorf("fetch calls = %d, want 0", f.calls)
	}
}

func TestPath_FetchError(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{err: errors.New("offline")}
	c := NewCacheDir(dir, f)

	if _, err := c.Path(context.Background(), media.Item{ID: "a", ImageTag: "t"}); err == nil {
		t.Error("Path() expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after failure, want 0", len(entries))
	}
}

func TestFileName_Sanitised(t *testing.T) {
	got := fileName(media.Item{ID: "../etc", ImageTag: "a/b"})
	if filepath.Base(got) != got {
		t.Errorf("fileName() = %q escapes the cache dir", got)
	}
}
