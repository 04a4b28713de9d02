package session

import (
	"sync"

	"github.com/google/uuid"
)

// Listener receives the snapshot published after each session transition.
type Listener func(Snapshot)

type subscription struct {
	id       string
	listener Listener
}

// subscriberRegistry invokes listeners synchronously in registration order,
// so a guard observing the registry always sees transitions in the order the
// store performed them.
type subscriberRegistry struct {
	mu            sync.RWMutex
	subscriptions []subscription
}

func newSubscriberRegistry() *subscriberRegistry {
	return &subscriberRegistry{}
}

func (r *subscriberRegistry) subscribe(listener Listener) string {
	if r == nil || listener == nil {
		return ""
	}
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions = append(r.subscriptions, subscription{id: id, listener: listener})
	return id
}

func (r *subscriberRegistry) unsubscribe(id string) {
	if r == nil || id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, sub := range r.subscriptions {
		if sub.id == id {
			r.subscriptions = append(r.subscriptions[:i], r.subscriptions[i+1:]...)
			return
		}
	}
}

func (r *subscriberRegistry) notify(snapshot Snapshot) {
	if r == nil {
		return
	}
	r.mu.RLock()
	listeners := make([]Listener, 0, len(r.subscriptions))
	for _, sub := range r.subscriptions {
		listeners = append(listeners, sub.listener)
	}
	r.mu.RUnlock()

	for _, listener := range listeners {
		if listener == nil {
			continue
		}
		listener(snapshot)
	}
}
