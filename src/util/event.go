package util

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// listenerBuffer is the number of events a slow listener may lag behind
// before further events are dropped for it.
const listenerBuffer = 64

// An Eventer is a type that publishes events through an Emitter.
type Eventer interface {
	Events() *Emitter
}

// An Emitter fans out events to any number of listeners.
//
// The zero value is ready to use. Events are delivered in the order they were
// emitted; a listener that stops receiving will miss events rather than block
// the emitter.
type Emitter struct {
	// The release attribute determines how much time the event should be
	// buffered to prevent the emission of duplicate events.
	// A zero value will disable buffering.
	Release time.Duration

	lock      sync.RWMutex
	listeners map[chan interface{}]struct{}
	release   map[interface{}]struct{}
}

// Emit publishes an event to all listeners.
//
// When Release is set, events that compare equal and are emitted within the
// release window are delivered once, at the end of the window.
func (emitter *Emitter) Emit(event interface{}) {
	if emitter.Release == 0 {
		emitter.broadcast(event)
		return
	}

	emitter.lock.Lock()
	if emitter.release == nil {
		emitter.release = map[interface{}]struct{}{}
	}
	if _, ok := emitter.release[event]; ok {
		emitter.lock.Unlock()
		return
	}
	emitter.release[event] = struct{}{}
	emitter.lock.Unlock()

	time.AfterFunc(emitter.Release, func() {
		emitter.lock.Lock()
		delete(emitter.release, event)
		emitter.lock.Unlock()
		emitter.broadcast(event)
	})
}

func (emitter *Emitter) broadcast(event interface{}) {
	emitter.lock.RLock()
	defer emitter.lock.RUnlock()
	for listener := range emitter.listeners {
		select {
		case listener <- event:
		default:
			log.Debugf("Dropped event %T for a slow listener", event)
		}
	}
}

// Listen registers a new listener. The returned channel is closed and the
// listener is removed once the context is done.
func (emitter *Emitter) Listen(ctx context.Context) <-chan interface{} {
	ch := make(chan interface{}, listenerBuffer)

	emitter.lock.Lock()
	if emitter.listeners == nil {
		emitter.listeners = map[chan interface{}]struct{}{}
	}
	emitter.listeners[ch] = struct{}{}
	emitter.lock.Unlock()

	go func() {
		<-ctx.Done()
		emitter.lock.Lock()
		delete(emitter.listeners, ch)
		close(ch)
		emitter.lock.Unlock()
	}()
	return ch
}

// NumListeners returns the number of active listeners.
func (emitter *Emitter) NumListeners() int {
	emitter.lock.RLock()
	defer emitter.lock.RUnlock()
	return len(emitter.listeners)
}
