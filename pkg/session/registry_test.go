package session

import (
	"testing"

	"github.com/fireboltd/fireboltd/pkg/rpc"
)

func TestRegistryAddGet(t *testing.T) {
	r := NewRegistry()
	s := New("s1", "c1", "com.x.y", Websocket(), nil)
	r.Add("s1", s)

	got, ok := r.Get(rpc.CallContext{SessionID: "s1"})
	if !ok || got.AppID() != "com.x.y" {
		t.Fatalf("expected session for s1, got %v ok=%v", got, ok)
	}
	if !r.Has(rpc.CallContext{SessionID: "s1"}) {
		t.Error("Has must report registered session")
	}
	if r.Has(rpc.CallContext{SessionID: "missing"}) {
		t.Error("Has must not report unknown session")
	}
}

func TestRegistryClearByCID(t *testing.T) {
	r := NewRegistry()
	r.Add("s1", New("s1", "c1", "com.x.y", Websocket(), nil))

	r.ClearByCID("c1")
	if r.Has(rpc.CallContext{SessionID: "s1"}) {
		t.Error("session must be gone after ClearByCID")
	}
	if r.Count() != 0 {
		t.Errorf("count = %d, want 0", r.Count())
	}

	// Clearing an unknown cid is a no-op.
	r.ClearByCID("nope")
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Add("s1", New("s1", "c1", "com.x.y", Websocket(), nil))

	r.Remove("s1")
	if r.Has(rpc.CallContext{SessionID: "s1"}) {
		t.Error("session must be gone after Remove")
	}
	// The cid index must be cleaned up too.
	r.Add("s2", New("s2", "c1", "com.other", Websocket(), nil))
	r.ClearByCID("c1")
	if r.Has(rpc.CallContext{SessionID: "s2"}) {
		t.Error("cid index must track the re-registered session")
	}
}

func TestSessionCallCounter(t *testing.T) {
	s := New("s1", "c1", "com.x.y", Websocket(), nil)
	if s.NextCallID() != 1 || s.NextCallID() != 2 {
		t.Error("call counter must increment monotonically")
	}
}

func TestSessionSendWithoutWriter(t *testing.T) {
	s := New("s1", "c1", "com.x.y", Bridge("bridge-1"), nil)
	if err := s.SendJSONRPC(rpc.ApiMessage{}); err != ErrNoWriter {
		t.Errorf("expected ErrNoWriter, got %v", err)
	}
	if s.Transport().Kind != TransportBridge || s.Transport().BridgeID != "bridge-1" {
		t.Errorf("unexpected transport: %+v", s.Transport())
	}
}
