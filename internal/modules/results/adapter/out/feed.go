package out

import (
	"context"
	"fmt"
	"sync"

	"fitlab/internal/modules/results/domain"
)

type snapshotFunc func(ctx context.Context) ([]domain.TestResult, error)

// feed fans change notifications out to ObserveAll subscribers. Each
// subscriber re-reads on wake-up, so a burst of saves collapses into one
// fresh snapshot.
type feed struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan struct{}
	closed bool
}

func newFeed() *feed {
	return &feed{subs: map[int]chan struct{}{}}
}

func (f *feed) notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (f *feed) subscribe() (int, chan struct{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, nil, false
	}
	f.next++
	ch := make(chan struct{}, 1)
	f.subs[f.next] = ch
	return f.next, ch, true
}

func (f *feed) unsubscribe(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(ch)
	}
}

func (f *feed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}

// observe reads the first snapshot synchronously so read errors reach
// the caller, then streams fresh snapshots until ctx ends or the feed
// closes.
func (f *feed) observe(ctx context.Context, load snapshotFunc) (<-chan []domain.TestResult, error) {
	id, wake, ok := f.subscribe()
	if !ok {
		return nil, fmt.Errorf("observe results: %w", domain.ErrStoreClosed)
	}
	first, err := load(ctx)
	if err != nil {
		f.unsubscribe(id)
		return nil, err
	}
	out := make(chan []domain.TestResult, 1)
	out <- first
	go func() {
		defer close(out)
		defer f.unsubscribe(id)
		for {
			select {
			case <-ctx.Done():
				return
			case _, open := <-wake:
				if !open {
					return
				}
			}
			snapshot, err := load(ctx)
			if err != nil {
				return
			}
			select {
			case <-out:
			default:
			}
			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
