// Package appevents tracks per-session event subscriptions so they can be
// torn down when a session unregisters.
package appevents

import "sync"

// Registry maps event names to subscribed session ids.
type Registry struct {
	mu     sync.RWMutex
	events map[string]map[string]struct{} // event -> session ids
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{events: make(map[string]map[string]struct{})}
}

// Subscribe adds a session to an event's listener set.
func (r *Registry) Subscribe(event, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events[event] == nil {
		r.events[event] = make(map[string]struct{})
	}
	r.events[event][sessionID] = struct{}{}
}

// Unsubscribe removes a session from an event's listener set.
func (r *Registry) Unsubscribe(event, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if listeners, ok := r.events[event]; ok {
		delete(listeners, sessionID)
		if len(listeners) == 0 {
			delete(r.events, event)
		}
	}
}

// RemoveSession drops the session from every event it subscribed to.
func (r *Registry) RemoveSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for event, listeners := range r.events {
		delete(listeners, sessionID)
		if len(listeners) == 0 {
			delete(r.events, event)
		}
	}
}

// Listeners returns the session ids subscribed to an event.
func (r *Registry) Listeners(event string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.events[event]))
	for id := range r.events[event] {
		out = append(out, id)
	}
	return out
}
