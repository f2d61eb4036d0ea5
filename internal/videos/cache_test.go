package videos

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sohansahooo/vidshort/internal/models"
)

type stubLister struct {
	videos []models.Video
	err    error
	calls  int
}

func (s *stubLister) ListRecent(context.Context, int) ([]models.Video, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.videos, nil
}

func TestCachingListerListRecent(t *testing.T) {
	base := &stubLister{videos: []models.Video{{ID: "v-1", Title: "Test"}}}
	cache := NewCachingLister(base, time.Minute)

	ctx := context.Background()

	videos, err := cache.ListRecent(ctx, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(videos) != 1 || videos[0].Title != "Test" {
		t.Fatalf("unexpected videos: %+v", videos)
	}
	if base.calls != 1 {
		t.Fatalf("expected base called once got %d", base.calls)
	}

	videos[0].Title = "mutated"

	videos, err = cache.ListRecent(ctx, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected cached result got %d calls", base.calls)
	}
	if videos[0].Title != "Test" {
		t.Fatalf("cached listing was mutated by caller: %+v", videos)
	}

	if _, err := cache.ListRecent(ctx, 5); err != nil {
		t.Fatalf("list: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected a different limit to miss the cache, got %d calls", base.calls)
	}
}

func TestCachingListerErrors(t *testing.T) {
	cache := NewCachingLister(nil, time.Minute)
	if _, err := cache.ListRecent(context.Background(), 10); !errors.Is(err, ErrListerUnavailable) {
		t.Fatalf("expected lister unavailable got %v", err)
	}

	boom := errors.New("boom")
	base := &stubLister{err: boom}
	cache = NewCachingLister(base, time.Minute)
	for range 2 {
		if _, err := cache.ListRecent(context.Background(), 10); !errors.Is(err, boom) {
			t.Fatalf("expected boom got %v", err)
		}
	}
	if base.calls != 2 {
		t.Fatalf("errors must not be cached, got %d calls", base.calls)
	}
}

func TestCachingListerExpiryAndInvalidate(t *testing.T) {
	base := &stubLister{videos: []models.Video{{ID: "v-1"}}}
	cache := NewCachingLister(base, time.Minute)

	now := time.Now()
	cache.now = func() time.Time { return now }

	if _, err := cache.ListRecent(context.Background(), 10); err != nil {
		t.Fatalf("list: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := cache.ListRecent(context.Background(), 10); err != nil {
		t.Fatalf("list: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected cache miss after expiry got %d calls", base.calls)
	}

	cache.Invalidate()
	if _, err := cache.ListRecent(context.Background(), 10); err != nil {
		t.Fatalf("list: %v", err)
	}
	if base.calls != 3 {
		t.Fatalf("expected cache miss after invalidate got %d calls", base.calls)
	}
}

func TestCachingListerDefaultTTL(t *testing.T) {
	cache := NewCachingLister(&stubLister{}, 0)
	if cache.ttl <= 0 {
		t.Fatalf("expected ttl to default positive got %v", cache.ttl)
	}
}

// gatedLister blocks each call until release is closed and counts calls.
type gatedLister struct {
	entered chan struct{}
	release chan struct{}
	videos  atomic.Pointer[[]models.Video]
	calls   atomic.Int32
}

func (g *gatedLister) ListRecent(context.Context, int) ([]models.Video, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
		<-g.release
	}
	return *g.videos.Load(), nil
}

func TestCachingListerInvalidateDuringFetch(t *testing.T) {
	base := &gatedLister{entered: make(chan struct{}), release: make(chan struct{})}
	before := []models.Video{}
	base.videos.Store(&before)
	cache := NewCachingLister(base, time.Hour)

	done := make(chan []models.Video, 1)
	go func() {
		videos, _ := cache.ListRecent(context.Background(), 10)
		done <- videos
	}()

	<-base.entered
	after := []models.Video{{ID: "v-new"}}
	base.videos.Store(&after)
	cache.Invalidate()
	close(base.release)

	if stale := <-done; len(stale) != 0 {
		t.Fatalf("expected the in-flight read to see the old listing got %+v", stale)
	}

	videos, err := cache.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != "v-new" {
		t.Fatalf("stale listing cached across invalidate: %+v (base calls=%d)", videos, base.calls.Load())
	}
	if got := base.calls.Load(); got != 2 {
		t.Fatalf("expected a fresh fetch after invalidate got %d calls", got)
	}
}
