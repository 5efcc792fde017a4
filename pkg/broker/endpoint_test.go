package broker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fireboltd/fireboltd/pkg/rpc"
)

func TestRuleMatches(t *testing.T) {
	tests := []struct {
		pattern string
		method  string
		want    bool
	}{
		{"device.Model", "device.Model", true},
		{"device.Model", "device.Name", false},
		{"badger.*", "badger.info", true},
		{"badger.*", "badger.logMoneyEvent", true},
		{"badger.*", "device.Model", false},
		{"*", "anything.AtAll", true},
	}

	for _, tc := range tests {
		rule := Rule{Pattern: tc.pattern, Endpoint: "e"}
		if got := rule.Matches(tc.method); got != tc.want {
			t.Errorf("Rule(%q).Matches(%q) = %v, want %v", tc.pattern, tc.method, got, tc.want)
		}
	}
}

type fakeConn struct {
	mu   sync.Mutex
	sent []BrokeredRequest
	got  chan struct{}
}

func (c *fakeConn) Send(req BrokeredRequest) error {
	c.mu.Lock()
	c.sent = append(c.sent, req)
	c.mu.Unlock()
	select {
	case c.got <- struct{}{}:
	default:
	}
	return nil
}

func (c *fakeConn) Close() error { return nil }

type fakeDialer struct {
	conn     *fakeConn
	failures int
	mu       sync.Mutex
	dials    int
}

func (d *fakeDialer) Dial(ctx context.Context) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.dials <= d.failures {
		return nil, errors.New("connection refused")
	}
	return d.conn, nil
}

func TestHandleBrokerageUnmatchedReturnsFalse(t *testing.T) {
	s := NewEndpointState()
	s.AddRule(Rule{Pattern: "badger.*", Endpoint: "badger"})

	req := rpc.Request{Method: "device.Model"}
	if s.HandleBrokerage(req, nil) {
		t.Error("unmatched method must not be claimed")
	}
}

func TestHandleBrokerageForwardsToEndpoint(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := &fakeConn{got: make(chan struct{}, 1)}
	s := NewEndpointState()
	s.AddRule(Rule{Pattern: "badger.*", Endpoint: "badger"})
	s.RegisterEndpoint(ctx, "badger", &fakeDialer{conn: conn})

	req := rpc.Request{Method: "badger.info"}
	if !s.HandleBrokerage(req, nil) {
		t.Fatal("matched method must be claimed")
	}

	select {
	case <-conn.got:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the endpoint")
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.sent) != 1 || conn.sent[0].Request.Method != "badger.info" {
		t.Errorf("unexpected forwarded requests: %+v", conn.sent)
	}
}

func TestEndpointRedialsWithBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := &fakeConn{got: make(chan struct{}, 1)}
	dialer := &fakeDialer{conn: conn, failures: 2}
	s := NewEndpointState()
	s.AddRule(Rule{Pattern: "badger.*", Endpoint: "badger"})
	s.RegisterEndpoint(ctx, "badger", dialer)

	if !s.HandleBrokerage(rpc.Request{Method: "badger.info"}, nil) {
		t.Fatal("matched method must be claimed")
	}

	select {
	case <-conn.got:
	case <-time.After(10 * time.Second):
		t.Fatal("request never delivered after redials")
	}

	dialer.mu.Lock()
	defer dialer.mu.Unlock()
	if dialer.dials < 3 {
		t.Errorf("expected at least 3 dial attempts, got %d", dialer.dials)
	}
}

func TestRuleWithoutEndpointNotClaimed(t *testing.T) {
	s := NewEndpointState()
	s.AddRule(Rule{Pattern: "badger.*", Endpoint: "missing"})

	// Rule matched but endpoint absent: not claimed, router proceeds.
	if s.HandleBrokerage(rpc.Request{Method: "badger.info"}, nil) {
		t.Error("rule without a registered endpoint must not claim the call")
	}
}
