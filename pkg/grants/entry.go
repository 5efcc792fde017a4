// Package grants stores user grant decisions per app and capability, with
// lifespans and expiry.
package grants

import (
	"time"

	"github.com/fireboltd/fireboltd/pkg/capability"
)

// Status is the recorded user decision. Entries always carry a status once
// inserted.
type Status string

const (
	StatusAllowed Status = "allowed"
	StatusDenied  Status = "denied"
)

// Lifespan bounds how long a grant decision holds.
type Lifespan string

const (
	LifespanOnce        Lifespan = "once"
	LifespanForever     Lifespan = "forever"
	LifespanAppActive   Lifespan = "appActive"
	LifespanPowerActive Lifespan = "powerActive"
	LifespanSeconds     Lifespan = "seconds"
)

// Entry is one grant decision for (capability, role).
type Entry struct {
	Capability      capability.Capability `json:"capability"`
	Role            capability.Role       `json:"role"`
	Status          Status                `json:"status"`
	Lifespan        Lifespan              `json:"lifespan"`
	LastModified    time.Time             `json:"lastModifiedTime"`
	LifespanTTLSecs *uint32               `json:"lifespanTtlInSecs,omitempty"`
}

// Expired reports whether the entry's TTL has elapsed. Entries without a TTL
// never expire.
func (e Entry) Expired(now time.Time) bool {
	if e.LifespanTTLSecs == nil {
		return false
	}
	return now.After(e.LastModified.Add(time.Duration(*e.LifespanTTLSecs) * time.Second))
}

// ExpiresAt returns the RFC3339 expiry timestamp for entries with a TTL, or
// "" for entries that never expire.
func (e Entry) ExpiresAt() string {
	if e.LifespanTTLSecs == nil {
		return ""
	}
	return e.LastModified.Add(time.Duration(*e.LifespanTTLSecs) * time.Second).UTC().Format(time.RFC3339)
}
