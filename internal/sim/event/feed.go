// Package event provides the explicit observer lists the simulation uses in
// place of ad-hoc callback fields: damage-dealt, death, and director
// phase-change notifications all flow through a Feed.
package event

import "sort"

// Subscription identifies one subscriber on a Feed. The zero value is never
// a valid subscription.
type Subscription int

// Feed is an ordered observer list for values of type T.
//
// Dispatch order is ascending subscription handle, so observers registered
// earlier always run earlier within one Publish. This keeps same-tick side
// effects deterministic and testable.
//
// Feed is not safe for concurrent use; the simulation mutates it only from
// the single logical update thread.
type Feed[T any] struct {
	next Subscription
	subs map[Subscription]func(T)
}

// Subscribe registers fn and returns its handle.
//
// Precondition: fn must not be nil.
// Postcondition: fn is invoked on every subsequent Publish until Unsubscribe.
func (f *Feed[T]) Subscribe(fn func(T)) Subscription {
	if f.subs == nil {
		f.subs = make(map[Subscription]func(T))
	}
	f.next++
	f.subs[f.next] = fn
	return f.next
}

// Unsubscribe removes the subscriber with the given handle. Unknown handles
// are ignored, so detaching twice is safe.
func (f *Feed[T]) Unsubscribe(s Subscription) {
	delete(f.subs, s)
}

// Publish delivers v to every subscriber in ascending handle order.
func (f *Feed[T]) Publish(v T) {
	if len(f.subs) == 0 {
		return
	}
	handles := make([]int, 0, len(f.subs))
	for s := range f.subs {
		handles = append(handles, int(s))
	}
	sort.Ints(handles)
	for _, h := range handles {
		if fn, ok := f.subs[Subscription(h)]; ok {
			fn(v)
		}
	}
}

// Len returns the number of active subscribers.
func (f *Feed[T]) Len() int { return len(f.subs) }
