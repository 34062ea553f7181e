package discovery

import (
	"context"
	"sync"

	"github.com/corey/mediascout/internal/ports"
)

// Subscription is a channel-backed consumer of discovery events.
type Subscription struct {
	ch     chan ports.Event
	closed chan struct{}
	once   sync.Once

	mu     sync.RWMutex // held by senders; Close takes it exclusively to close ch
	isDone bool

	unsubscribe func()
}

// Events returns the event channel. It is closed by Close.
func (s *Subscription) Events() <-chan ports.Event {
	return s.ch
}

// Close unsubscribes and closes the event channel. Events already buffered
// stay readable. Safe to call multiple times.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.closed)
		s.unsubscribe()
		s.mu.Lock()
		s.isDone = true
		close(s.ch)
		s.mu.Unlock()
	})
}

// send blocks until ev is accepted, the subscription closes, or ctx ends.
func (s *Subscription) send(ctx context.Context, ev ports.Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.isDone {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	case <-s.closed:
		return false
	case <-ctx.Done():
		return false
	}
}

// subscriber is one registered consumer: a callback or a channel.
type subscriber struct {
	fn  func(ports.Event)
	sub *Subscription
}

// Subscribe registers a channel consumer with the given buffer size.
// Events sent before StopDiscovering returns may still sit in the buffer.
func (d *Discoverer) Subscribe(buffer int) *Subscription {
	if buffer < 0 {
		buffer = 0
	}
	s := &Subscription{
		ch:     make(chan ports.Event, buffer),
		closed: make(chan struct{}),
	}
	id := d.addSubscriber(subscriber{sub: s})
	s.unsubscribe = func() { d.removeSubscriber(id) }
	return s
}

// SubscribeFunc registers a callback consumer and returns its cancel func.
// fn runs on the session worker, one event at a time, and must not call
// StartDiscovering or StopDiscovering.
func (d *Discoverer) SubscribeFunc(fn func(ports.Event)) (cancel func()) {
	id := d.addSubscriber(subscriber{fn: fn})
	var once sync.Once
	return func() {
		once.Do(func() { d.removeSubscriber(id) })
	}
}

func (d *Discoverer) addSubscriber(s subscriber) uint64 {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	d.nextSubID++
	d.subs[d.nextSubID] = s
	d.subOrder = append(d.subOrder, d.nextSubID)
	return d.nextSubID
}

func (d *Discoverer) removeSubscriber(id uint64) {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	delete(d.subs, id)
	for i, v := range d.subOrder {
		if v == id {
			d.subOrder = append(d.subOrder[:i], d.subOrder[i+1:]...)
			break
		}
	}
}

// snapshotSubscribers returns consumers in registration order.
func (d *Discoverer) snapshotSubscribers() []subscriber {
	d.subsMu.RLock()
	defer d.subsMu.RUnlock()
	out := make([]subscriber, 0, len(d.subOrder))
	for _, id := range d.subOrder {
		out = append(out, d.subs[id])
	}
	return out
}

// deliver fans events out to every subscriber. It stops as soon as ctx is
// cancelled, which is how StopDiscovering suppresses in-flight batches.
func (d *Discoverer) deliver(ctx context.Context, events []ports.Event) {
	if len(events) == 0 {
		return
	}
	subs := d.snapshotSubscribers()
	for _, ev := range events {
		for _, s := range subs {
			if ctx.Err() != nil {
				return
			}
			if s.fn != nil {
				s.fn(ev)
				continue
			}
			s.sub.send(ctx, ev)
		}
	}
}
