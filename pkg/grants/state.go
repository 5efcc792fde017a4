package grants

import (
	"sync"
	"time"

	"github.com/fireboltd/fireboltd/pkg/capability"
)

// Modify selects a grant mutation.
type Modify string

const (
	ModifyGrant Modify = "grant"
	ModifyDeny  Modify = "deny"
	ModifyClear Modify = "clear"
)

// deviceAppID keys device-scoped grants (those made with no app).
const deviceAppID = ""

type grantKey struct {
	cap  capability.Capability
	role capability.Role
}

// State is the grant store. Lookups take a read lock; mutations take the
// single writer lock and restamp LastModified.
type State struct {
	mu      sync.RWMutex
	entries map[string]map[grantKey]Entry
	now     func() time.Time
}

// NewState creates an empty grant store.
func NewState() *State {
	return &State{
		entries: make(map[string]map[grantKey]Entry),
		now:     time.Now,
	}
}

// SetClock overrides the store's clock. Tests use this to exercise expiry.
func (s *State) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Apply performs a grant mutation for (appID, role, cap). An empty appID
// addresses the device scope. Grant and Deny insert or replace the entry
// with LastModified set to now; Clear removes it. Returns false only for an
// unknown modify verb.
func (s *State) Apply(modify Modify, appID string, role capability.Role, cap capability.Capability, lifespan Lifespan, ttlSecs *uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey{cap: cap, role: role}
	switch modify {
	case ModifyGrant, ModifyDeny:
		status := StatusAllowed
		if modify == ModifyDeny {
			status = StatusDenied
		}
		if s.entries[appID] == nil {
			s.entries[appID] = make(map[grantKey]Entry)
		}
		s.entries[appID][key] = Entry{
			Capability:      cap,
			Role:            role,
			Status:          status,
			Lifespan:        lifespan,
			LastModified:    s.now(),
			LifespanTTLSecs: ttlSecs,
		}
		return true
	case ModifyClear:
		if app, ok := s.entries[appID]; ok {
			delete(app, key)
			if len(app) == 0 {
				delete(s.entries, appID)
			}
		}
		return true
	}
	return false
}

// Lookup returns the live (non-expired) entry for (appID, cap, role).
func (s *State) Lookup(appID string, cap capability.Capability, role capability.Role) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[appID][grantKey{cap: cap, role: role}]
	if !ok || entry.Expired(s.now()) {
		return Entry{}, false
	}
	return entry, true
}

// LookupDevice returns the live device-scoped entry for (cap, role).
func (s *State) LookupDevice(cap capability.Capability, role capability.Role) (Entry, bool) {
	return s.Lookup(deviceAppID, cap, role)
}

// EntriesForApp returns the app's live entries.
func (s *State) EntriesForApp(appID string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liveEntries(appID)
}

// DeviceEntries returns the live device-scoped entries.
func (s *State) DeviceEntries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liveEntries(deviceAppID)
}

// EntriesForCapability returns live entries matching the capability, grouped
// by app id. Device-scoped entries appear under the empty app id.
func (s *State) EntriesForCapability(cap capability.Capability) map[string][]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make(map[string][]Entry)
	for appID, app := range s.entries {
		for key, entry := range app {
			if key.cap != cap || entry.Expired(now) {
				continue
			}
			out[appID] = append(out[appID], entry)
		}
	}
	return out
}

// liveEntries returns non-expired entries for one scope. Callers hold mu.
func (s *State) liveEntries(appID string) []Entry {
	now := s.now()
	var out []Entry
	for _, entry := range s.entries[appID] {
		if !entry.Expired(now) {
			out = append(out, entry)
		}
	}
	return out
}
