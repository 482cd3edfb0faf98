package store

import (
	"sync"
)

// feedBuffer is the per-subscriber channel capacity. A subscriber that falls
// further behind than this loses changes; the drop counter is exposed for
// logging.
const feedBuffer = 64

// changeFeed fans a store's changes out to any number of watch subscribers.
type changeFeed struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]chan Change
	dropped int64
	closed  bool
}

func newChangeFeed() *changeFeed {
	return &changeFeed{subs: make(map[int]chan Change)}
}

// subscribe registers a new subscriber and returns its channel together with
// a cancel function. Cancelling closes the channel.
func (f *changeFeed) subscribe() (<-chan Change, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Change, feedBuffer)
	if f.closed {
		close(ch)
		return ch, func() {}
	}

	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// notify delivers the change to every subscriber without blocking the store's
// write path. A full subscriber buffer drops the change for that subscriber.
func (f *changeFeed) notify(ch Change) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs {
		select {
		case sub <- ch:
		default:
			f.dropped++
		}
	}
}

// droppedCount returns how many changes were dropped because subscribers
// could not keep up.
func (f *changeFeed) droppedCount() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// closeAll terminates every subscription. Subsequent notify calls are no-ops.
func (f *changeFeed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true

	for id, sub := range f.subs {
		delete(f.subs, id)
		close(sub)
	}
}
