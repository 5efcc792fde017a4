package extn

import (
	"encoding/json"
	"fmt"

	"github.com/fireboltd/fireboltd/pkg/capability"
	"github.com/fireboltd/fireboltd/pkg/jsonrpc"
	"github.com/fireboltd/fireboltd/pkg/rpc"
)

// Callback receives the reply to an extension-originated request. Extn
// requests carry their callback inline instead of referencing a session.
type Callback interface {
	Send(msg jsonrpc.Message) error
}

// CallbackFunc adapts a function to the Callback interface.
type CallbackFunc func(msg jsonrpc.Message) error

// Send implements Callback.
func (f CallbackFunc) Send(msg jsonrpc.Message) error { return f(msg) }

// Message is a command crossing the extension boundary. Payload holds a
// serialized rpc.Request when the message carries an RPC.
type Message struct {
	ID       string
	Source   ID
	Payload  json.RawMessage
	Callback Callback
}

// Request extracts the RPC request from the payload, if it carries one.
func (m *Message) Request() (rpc.Request, bool) {
	var req rpc.Request
	if len(m.Payload) == 0 {
		return req, false
	}
	if err := json.Unmarshal(m.Payload, &req); err != nil {
		return rpc.Request{}, false
	}
	if req.Method == "" {
		return rpc.Request{}, false
	}
	return req, true
}

// Sender is the handle an extension uses to talk back to the gateway. It is
// scoped to the capabilities the extension's manifest entry declares under
// uses; sends for other capabilities are refused.
type Sender struct {
	id   ID
	uses map[capability.Capability]struct{}
	out  chan<- Message
}

// NewSender creates a sender for one extension scoped to its declared
// capabilities.
func NewSender(id ID, uses []string, out chan<- Message) *Sender {
	scope := make(map[capability.Capability]struct{}, len(uses))
	for _, u := range uses {
		scope[capability.Capability(u)] = struct{}{}
	}
	return &Sender{id: id, uses: scope, out: out}
}

// ID returns the owning extension's id.
func (s *Sender) ID() ID { return s.id }

// Allowed reports whether the extension declared the capability.
func (s *Sender) Allowed(cap capability.Capability) bool {
	_, ok := s.uses[cap]
	return ok
}

// Send posts a message to the gateway. The message source is stamped with
// the sender's extension id.
func (s *Sender) Send(msg Message) error {
	msg.Source = s.id
	select {
	case s.out <- msg:
		return nil
	default:
		return fmt.Errorf("extn %s: gateway channel full", s.id)
	}
}
