package grants

import (
	"testing"
	"time"

	"github.com/fireboltd/fireboltd/pkg/capability"
)

const (
	app = "com.x.y"
	cap = capability.Capability("device:info")
)

func TestGrantRoundTrip(t *testing.T) {
	s := NewState()

	s.Apply(ModifyGrant, app, capability.RoleUse, cap, LifespanForever, nil)
	entries := s.EntriesForApp(app)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Capability != cap || e.Role != capability.RoleUse || e.Status != StatusAllowed {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestDenyReplacesGrant(t *testing.T) {
	s := NewState()

	s.Apply(ModifyGrant, app, capability.RoleUse, cap, LifespanForever, nil)
	s.Apply(ModifyDeny, app, capability.RoleUse, cap, LifespanForever, nil)

	entries := s.EntriesForApp(app)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Status != StatusDenied {
		t.Errorf("expected denied, got %s", entries[0].Status)
	}
}

func TestClearRemovesEntry(t *testing.T) {
	s := NewState()

	s.Apply(ModifyGrant, app, capability.RoleUse, cap, LifespanForever, nil)
	s.Apply(ModifyClear, app, capability.RoleUse, cap, LifespanForever, nil)

	if entries := s.EntriesForApp(app); len(entries) != 0 {
		t.Errorf("expected no entries after clear, got %d", len(entries))
	}
}

func TestUnknownModifyRejected(t *testing.T) {
	s := NewState()
	if s.Apply(Modify("toggle"), app, capability.RoleUse, cap, LifespanForever, nil) {
		t.Error("unknown modify verb must be rejected")
	}
}

func TestGrantExpiry(t *testing.T) {
	s := NewState()
	now := time.Unix(1_700_000_000, 0)
	s.SetClock(func() time.Time { return now })

	ttl := uint32(60)
	s.Apply(ModifyGrant, app, capability.RoleUse, cap, LifespanSeconds, &ttl)

	// Within TTL the grant is honored.
	now = now.Add(59 * time.Second)
	if _, ok := s.Lookup(app, cap, capability.RoleUse); !ok {
		t.Error("grant should be live within TTL")
	}

	// Exactly at the boundary it is still honored (now - last_modified <= ttl).
	now = now.Add(1 * time.Second)
	if _, ok := s.Lookup(app, cap, capability.RoleUse); !ok {
		t.Error("grant should be live at the TTL boundary")
	}

	// Past the boundary it is gone from lookups and listings.
	now = now.Add(1 * time.Second)
	if _, ok := s.Lookup(app, cap, capability.RoleUse); ok {
		t.Error("expired grant must not be honored")
	}
	if entries := s.EntriesForApp(app); len(entries) != 0 {
		t.Errorf("expired grant leaked into listing: %v", entries)
	}
}

func TestNoTTLNeverExpires(t *testing.T) {
	s := NewState()
	now := time.Unix(1_700_000_000, 0)
	s.SetClock(func() time.Time { return now })

	s.Apply(ModifyGrant, app, capability.RoleUse, cap, LifespanForever, nil)
	now = now.Add(100 * 365 * 24 * time.Hour)

	if _, ok := s.Lookup(app, cap, capability.RoleUse); !ok {
		t.Error("grant without TTL must never expire")
	}
}

func TestDeviceScope(t *testing.T) {
	s := NewState()

	s.Apply(ModifyGrant, "", capability.RoleUse, cap, LifespanForever, nil)

	if _, ok := s.LookupDevice(cap, capability.RoleUse); !ok {
		t.Error("device-scoped grant not found")
	}
	if _, ok := s.Lookup(app, cap, capability.RoleUse); ok {
		t.Error("device grant must not appear under an app scope lookup")
	}
	if entries := s.DeviceEntries(); len(entries) != 1 {
		t.Errorf("expected 1 device entry, got %d", len(entries))
	}
}

func TestEntriesForCapability(t *testing.T) {
	s := NewState()
	other := capability.Capability("account:profile")

	s.Apply(ModifyGrant, "app1", capability.RoleUse, cap, LifespanForever, nil)
	s.Apply(ModifyDeny, "app2", capability.RoleUse, cap, LifespanForever, nil)
	s.Apply(ModifyGrant, "app1", capability.RoleUse, other, LifespanForever, nil)

	byApp := s.EntriesForCapability(cap)
	if len(byApp) != 2 {
		t.Fatalf("expected entries for 2 apps, got %d", len(byApp))
	}
	if len(byApp["app1"]) != 1 || byApp["app1"][0].Capability != cap {
		t.Errorf("unexpected app1 entries: %v", byApp["app1"])
	}
}

func TestMutationRestampsLastModified(t *testing.T) {
	s := NewState()
	now := time.Unix(1_700_000_000, 0)
	s.SetClock(func() time.Time { return now })

	s.Apply(ModifyGrant, app, capability.RoleUse, cap, LifespanForever, nil)
	first, _ := s.Lookup(app, cap, capability.RoleUse)

	now = now.Add(10 * time.Second)
	s.Apply(ModifyDeny, app, capability.RoleUse, cap, LifespanForever, nil)
	second, _ := s.Lookup(app, cap, capability.RoleUse)

	if !second.LastModified.After(first.LastModified) {
		t.Error("mutation must restamp LastModified")
	}
}
