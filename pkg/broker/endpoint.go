// Package broker decides whether a method is owned by an out-of-process
// broker endpoint and forwards claimed requests to it.
package broker

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/fireboltd/fireboltd/pkg/extn"
	"github.com/fireboltd/fireboltd/pkg/logging"
	"github.com/fireboltd/fireboltd/pkg/rpc"
)

// BrokeredRequest is one claimed call queued for external handling.
type BrokeredRequest struct {
	Request rpc.Request
	ExtnMsg *extn.Message
}

// Conn is an established connection to a broker endpoint.
type Conn interface {
	Send(req BrokeredRequest) error
	Close() error
}

// Dialer establishes a connection to a broker endpoint. The endpoint worker
// redials with backoff when a connection fails.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// Rule binds a method pattern to a named endpoint. A pattern is an exact
// method name or a prefix ending in '*' ("badger.*").
type Rule struct {
	Pattern  string `json:"pattern"`
	Endpoint string `json:"endpoint"`
}

// Matches reports whether the rule claims the method name.
func (r Rule) Matches(method string) bool {
	if prefix, ok := strings.CutSuffix(r.Pattern, "*"); ok {
		return strings.HasPrefix(method, prefix)
	}
	return r.Pattern == method
}

// endpointQueueSize bounds each endpoint's pending queue. HandleBrokerage
// must never block the dispatch task.
const endpointQueueSize = 64

type endpoint struct {
	name   string
	dialer Dialer
	queue  chan BrokeredRequest
}

// EndpointState is the brokerage facade consulted by the gateway before
// local routing.
type EndpointState struct {
	mu        sync.RWMutex
	rules     []Rule
	endpoints map[string]*endpoint
	logger    *slog.Logger
}

// NewEndpointState creates an empty brokerage facade.
func NewEndpointState() *EndpointState {
	return &EndpointState{
		endpoints: make(map[string]*endpoint),
		logger:    logging.NewDiscardLogger(),
	}
}

// SetLogger sets the logger for brokerage events.
func (s *EndpointState) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// AddRule registers a brokerage rule.
func (s *EndpointState) AddRule(rule Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule)
}

// RegisterEndpoint registers an endpoint and starts its forwarding worker.
// The worker dials with exponential backoff and drains the endpoint queue
// until the context is cancelled.
func (s *EndpointState) RegisterEndpoint(ctx context.Context, name string, dialer Dialer) {
	ep := &endpoint{
		name:   name,
		dialer: dialer,
		queue:  make(chan BrokeredRequest, endpointQueueSize),
	}
	s.mu.Lock()
	s.endpoints[name] = ep
	s.mu.Unlock()

	go s.runEndpoint(ctx, ep)
}

// HandleBrokerage claims the request if its method matches a registered
// rule, enqueueing it for the owning endpoint. Returns false to let the
// router proceed locally. Never blocks.
func (s *EndpointState) HandleBrokerage(req rpc.Request, extnMsg *extn.Message) bool {
	s.mu.RLock()
	var matched *endpoint
	for _, rule := range s.rules {
		if rule.Matches(req.Method) {
			matched = s.endpoints[rule.Endpoint]
			break
		}
	}
	s.mu.RUnlock()

	if matched == nil {
		return false
	}

	select {
	case matched.queue <- BrokeredRequest{Request: req, ExtnMsg: extnMsg}:
	default:
		s.logger.Error("broker endpoint queue full, dropping request",
			"endpoint", matched.name, "method", req.Method)
	}
	return true
}

// runEndpoint drives one endpoint: dial with backoff, then forward queued
// requests until the connection fails, then redial.
func (s *EndpointState) runEndpoint(ctx context.Context, ep *endpoint) {
	for {
		conn, err := s.dial(ctx, ep)
		if err != nil {
			// Context cancelled; nothing left to forward.
			return
		}

		if !s.forward(ctx, ep, conn) {
			_ = conn.Close()
			return
		}
		_ = conn.Close()
	}
}

func (s *EndpointState) dial(ctx context.Context, ep *endpoint) (Conn, error) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // retry until the context ends
	policy := backoff.WithContext(bo, ctx)
	var conn Conn
	err := backoff.RetryNotify(func() error {
		var dialErr error
		conn, dialErr = ep.dialer.Dial(ctx)
		return dialErr
	}, policy, func(err error, next time.Duration) {
		s.logger.Warn("broker endpoint dial failed",
			"endpoint", ep.name, "error", err, "retry_in", next)
	})
	return conn, err
}

// forward drains the queue into conn. Returns false when the context ended,
// true when the connection failed and a redial is needed.
func (s *EndpointState) forward(ctx context.Context, ep *endpoint, conn Conn) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case req := <-ep.queue:
			if err := conn.Send(req); err != nil {
				s.logger.Warn("broker endpoint send failed, reconnecting",
					"endpoint", ep.name, "method", req.Request.Method, "error", err)
				return true
			}
		}
	}
}
