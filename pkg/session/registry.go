package session

import (
	"sync"

	"github.com/fireboltd/fireboltd/pkg/rpc"
)

// Registry is the process-wide session table. Sessions are indexed by
// session id and by connection id so cleanup can arrive from either side.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*Session
	byCID map[string]string // cid -> session id
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:  make(map[string]*Session),
		byCID: make(map[string]string),
	}
}

// Add registers a session under the given id. Transports register a session
// before dispatching any request that names it.
func (r *Registry) Add(sessionID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[sessionID] = s
	if s.CID() != "" {
		r.byCID[s.CID()] = sessionID
	}
}

// ClearByCID removes the session registered under a connection id.
func (r *Registry) ClearByCID(cid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sessionID, ok := r.byCID[cid]; ok {
		delete(r.byID, sessionID)
		delete(r.byCID, cid)
	}
}

// Remove removes a session by session id.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byID[sessionID]; ok {
		delete(r.byID, sessionID)
		if s.CID() != "" {
			delete(r.byCID, s.CID())
		}
	}
}

// Get returns the session a call context names.
func (r *Registry) Get(ctx rpc.CallContext) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[ctx.SessionID]
	return s, ok
}

// Has reports whether the call context names a live session.
func (r *Registry) Has(ctx rpc.CallContext) bool {
	_, ok := r.Get(ctx)
	return ok
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
