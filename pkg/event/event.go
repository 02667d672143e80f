// Package event is the in-process notification bus. Mutations fire a change
// event once they are persisted; listeners (metrics, logs, SSE clients)
// react to it.
package event

import (
	"sync"

	EventBus "github.com/asaskevich/EventBus"
)

// Handler receives an event payload.
type Handler func(payload interface{})

// Bus wraps an EventBus with channel-based streaming subscriptions.
type Bus struct {
	bus EventBus.Bus

	mu      sync.Mutex
	nextID  int
	streams map[string]map[int]chan interface{}
}

func New() *Bus {
	return &Bus{
		bus:     EventBus.New(),
		streams: map[string]map[int]chan interface{}{},
	}
}

// Listen registers a handler that runs synchronously inside Fire.
func (b *Bus) Listen(topic string, h Handler) error {
	return b.bus.Subscribe(topic, func(payload interface{}) { h(payload) })
}

// ListenAsync registers a handler that runs on its own goroutine per event.
func (b *Bus) ListenAsync(topic string, h Handler) error {
	return b.bus.SubscribeAsync(topic, func(payload interface{}) { h(payload) }, false)
}

// Fire publishes payload to every listener and stream of topic.
// payload must not be nil.
func (b *Bus) Fire(topic string, payload interface{}) {
	b.bus.Publish(topic, payload)
}

// Wait blocks until async listeners finished handling fired events.
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}

// Stream returns a buffered channel receiving every payload fired on topic
// until cancel is called. A slow reader drops events instead of blocking Fire.
func (b *Bus) Stream(topic string, buffer int) (<-chan interface{}, func()) {
	ch := make(chan interface{}, buffer)

	b.mu.Lock()
	subs, ok := b.streams[topic]
	if !ok {
		subs = map[int]chan interface{}{}
		b.streams[topic] = subs
	}
	id := b.nextID
	b.nextID++
	subs[id] = ch
	b.mu.Unlock()

	// Subscribe outside b.mu: EventBus holds its own lock while fanOut runs.
	if !ok {
		_ = b.bus.Subscribe(topic, func(payload interface{}) { b.fanOut(topic, payload) })
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.streams[topic], id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of open streams on topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.streams[topic])
}

func (b *Bus) fanOut(topic string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.streams[topic] {
		select {
		case ch <- payload:
		default:
		}
	}
}
