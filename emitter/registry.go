package emitter

import (
	"sort"
	"sync"

	"github.com/dshills/pulse/event"
)

// registry owns the per-event listener buckets. It is safe for
// concurrent use; dispatch always works on snapshots so that
// registration and removal during an in-flight emission never corrupt
// an in-progress iteration.
type registry struct {
	mu      sync.RWMutex
	buckets map[event.Name][]*subscription
	seq     uint64

	// maxPerEvent caps listeners per event name; zero means unlimited.
	maxPerEvent int
}

func newRegistry(maxPerEvent int) *registry {
	return &registry{
		buckets:     make(map[event.Name][]*subscription),
		maxPerEvent: maxPerEvent,
	}
}

// add inserts a subscription into its bucket, keeping the bucket
// sorted by descending priority with registration order as the stable
// tie-break.
func (r *registry) add(sub *subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.buckets[sub.name]
	if r.maxPerEvent > 0 && len(bucket) >= r.maxPerEvent {
		return ErrTooManyListeners
	}

	r.seq++
	sub.seq = r.seq

	bucket = append(bucket, sub)
	sort.SliceStable(bucket, func(i, j int) bool {
		if bucket[i].config.Priority != bucket[j].config.Priority {
			return bucket[i].config.Priority > bucket[j].config.Priority
		}
		return bucket[i].seq < bucket[j].seq
	})
	r.buckets[sub.name] = bucket

	return nil
}

// remove detaches a subscription from its bucket.
func (r *registry) remove(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.buckets[sub.name]
	for i, s := range bucket {
		if s == sub {
			r.buckets[sub.name] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(r.buckets[sub.name]) == 0 {
		delete(r.buckets, sub.name)
	}
}

// snapshot returns a copy of the bucket for dispatch, already in
// dispatch order.
func (r *registry) snapshot(name event.Name) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.buckets[name]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]*subscription, len(bucket))
	copy(out, bucket)
	return out
}

// clear disposes every subscription, or only those for the given
// names. Disposal marks the records so in-flight snapshots skip them.
func (r *registry) clear(names ...event.Name) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(names) == 0 {
		for _, bucket := range r.buckets {
			for _, sub := range bucket {
				sub.disposed.Store(true)
			}
		}
		r.buckets = make(map[event.Name][]*subscription)
		return
	}

	for _, name := range names {
		for _, sub := range r.buckets[name] {
			sub.disposed.Store(true)
		}
		delete(r.buckets, name)
	}
}

// counts returns the current listener count per event name.
func (r *registry) counts() map[event.Name]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[event.Name]int, len(r.buckets))
	for name, bucket := range r.buckets {
		out[name] = len(bucket)
	}
	return out
}

// total returns the total number of registered listeners.
func (r *registry) total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, bucket := range r.buckets {
		n += len(bucket)
	}
	return n
}
