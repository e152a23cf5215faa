// Package bus implements the process-local, single-threaded-cooperative
// domain event dispatcher described in spec.md §4.8: a publisher pushes a
// domain event onto a buffered queue of fixed capacity (New's queueSize;
// Publish blocks while the queue is full); one dispatcher goroutine drains it
// and invokes every handler registered for that event's type, in arbitrary
// order. There is no ordering guarantee between unrelated events, only a
// happens-before between a publish and the handler invocations it causes.
//
// This is new machinery the teacher does not need (timeoff has no
// multi-subscriber domain events), grounded instead in the capability
// container sketch from other_examples/...Sketchyjo...di-container.go,
// generalised from a DI container into a typed pub/sub mailbox.
package bus

import (
	"reflect"
	"sync"
)

// Event is any domain event value published on the bus. Handlers are
// registered per concrete type.
type Event any

// Handler reacts to one event type. It must not block for long: handlers
// run on the single dispatcher goroutine.
type Handler func(Event)

// Bus is the dispatcher. The zero value is not usable; construct with New.
type Bus struct {
	mu       sync.Mutex
	handlers map[reflect.Type][]Handler
	queue    chan Event
	done     chan struct{}
}

func New(queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Bus{
		handlers: make(map[reflect.Type][]Handler),
		queue:    make(chan Event, queueSize),
		done:     make(chan struct{}),
	}
}

// Subscribe registers fn to run whenever an event of exactly type E is
// published. Use a type parameter for the event so callers don't have to
// hand-write a reflect.TypeOf at every call site.
func Subscribe[E Event](b *Bus, fn func(E)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero E
	t := reflect.TypeOf(zero)
	b.handlers[t] = append(b.handlers[t], func(e Event) {
		if typed, ok := e.(E); ok {
			fn(typed)
		}
	})
}

// Publish enqueues an event for dispatch. It never blocks the caller on
// handler execution; it may block briefly if the queue is full.
func (b *Bus) Publish(e Event) {
	select {
	case b.queue <- e:
	case <-b.done:
	}
}

// Run drains the queue until Stop is called. It is meant to run on its own
// goroutine for the lifetime of the process.
func (b *Bus) Run() {
	for {
		select {
		case e := <-b.queue:
			b.dispatch(e)
		case <-b.done:
			return
		}
	}
}

func (b *Bus) dispatch(e Event) {
	b.mu.Lock()
	handlers := append([]Handler(nil), b.handlers[reflect.TypeOf(e)]...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(e)
	}
}

// Stop ends Run and causes further Publish calls to be dropped silently.
func (b *Bus) Stop() {
	close(b.done)
}
