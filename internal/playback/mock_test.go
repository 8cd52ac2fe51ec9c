package playback

import (
	"context"
	"sync"
	"time"

	"github.com/llehouerou/jellywaves/internal/media"
)

// fakeProxy records the commands it receives.
type fakeProxy struct {
	mu      sync.Mutex
	calls   []string
	loaded  []string
	rate    float64
	loadErr error
}

var _ EngineProxy = (*fakeProxy)(nil)

func (p *fakeProxy) record(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, name)
}

func (p *fakeProxy) Count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (p *fakeProxy) Loaded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.loaded...)
}

func (p *fakeProxy) Load(item *Item) error {
	p.record("load")
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return p.loadErr
	}
	p.loaded = append(p.loaded, item.BaseItem().ID)
	return nil
}

func (p *fakeProxy) Play() error                      { p.record("play"); return nil }
func (p *fakeProxy) Pause() error                     { p.record("pause"); return nil }
func (p *fakeProxy) Stop() error                      { p.record("stop"); return nil }
func (p *fakeProxy) JumpForward(time.Duration) error  { p.record("jumpForward"); return nil }
func (p *fakeProxy) JumpBackward(time.Duration) error { p.record("jumpBackward"); return nil }
func (p *fakeProxy) SetSeconds(time.Duration) error   { p.record("seek"); return nil }
func (p *fakeProxy) SetAudioStream(int) error         { p.record("audio"); return nil }
func (p *fakeProxy) SetSubtitleStream(int) error      { p.record("subtitle"); return nil }
func (p *fakeProxy) IsBuffering() bool                { return false }
func (p *fakeProxy) VideoSize() (int, int)            { return 0, 0 }

func (p *fakeProxy) SetRate(rate float64) error {
	p.record("rate")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = rate
	return nil
}

// fakeQueue returns fixed providers and counts resolutions.
type fakeQueue struct {
	mu        sync.Mutex
	next      *Provider
	previous  *Provider
	nextCalls int
	changed   []string
	modes     []ModeChange
}

var _ Queue = (*fakeQueue)(nil)

func (q *fakeQueue) Attach(*Manager) {}

func (q *fakeQueue) ItemDidChange(item media.Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.changed = append(q.changed, item.ID)
}

func (q *fakeQueue) ModeDidChange(shuffle bool, repeat RepeatMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.modes = append(q.modes, ModeChange{Shuffle: shuffle, RepeatMode: repeat})
}

func (q *fakeQueue) NextItem() *Provider {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextCalls++
	return q.next
}

func (q *fakeQueue) PreviousItem() *Provider {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.previous
}

func (q *fakeQueue) HasNextItem() bool     { return q.next != nil }
func (q *fakeQueue) HasPreviousItem() bool { return q.previous != nil }

func (q *fakeQueue) Watch() (<-chan Adjacency, func()) {
	ch := make(chan Adjacency, 1)
	return ch, func() {}
}

func (q *fakeQueue) NextCalls() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nextCalls
}

// recordingObserver appends "attach:<name>" and "detach:<name>" to a shared log.
type recordingObserver struct {
	name string
	mu   *sync.Mutex
	log  *[]string
}

func (o *recordingObserver) Attach(*Manager) { o.append("attach:" + o.name) }
func (o *recordingObserver) Detach()         { o.append("detach:" + o.name) }

func (o *recordingObserver) append(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	*o.log = append(*o.log, s)
}

// observingProxy is a proxy that also observes the manager.
type observingProxy struct {
	fakeProxy
	recordingObserver
}

func buildFor(segments ...media.Segment) BuildFunc {
	return func(_ context.Context, item media.Item) (*Item, error) {
		return NewItem(ItemConfig{
			BaseItem:            item,
			URL:                 "http://server/Audio/" + item.ID + "/stream",
			PlaySessionID:       "session-" + item.ID,
			Segments:            segments,
			AudioStreamIndex:    -1,
			SubtitleStreamIndex: -1,
		}), nil
	}
}

func testItem(id string, runtime, start time.Duration) media.Item {
	return media.Item{
		ID:            id,
		Name:          "Item " + id,
		Type:          media.TypeEpisode,
		Runtime:       runtime,
		StartPosition: start,
	}
}
