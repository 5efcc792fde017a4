// Package gateway owns the single-consumer command loop that multiplexes
// session lifecycle and request dispatch, fanning each request out to its own
// task.
package gateway

import (
	"github.com/fireboltd/fireboltd/pkg/extn"
	"github.com/fireboltd/fireboltd/pkg/rpc"
	"github.com/fireboltd/fireboltd/pkg/session"
)

// Command is a gateway command. Senders are held by transports; the gateway
// is the only consumer.
type Command interface {
	isCommand()
}

// RegisterSession inserts a session into the registry. Transports submit the
// registration synchronously before dispatching any request that names it.
type RegisterSession struct {
	SessionID string
	Session   *session.Session
}

// UnregisterSession removes the session registered under its connection id
// and drops the app-event subscriptions held by its session id.
type UnregisterSession struct {
	SessionID string
	CID       string
}

// HandleRpc begins a request.
type HandleRpc struct {
	Request rpc.Request
}

// HandleRpcForExtn unpacks an extension message into a request and begins it.
type HandleRpcForExtn struct {
	Msg extn.Message
}

func (RegisterSession) isCommand()   {}
func (UnregisterSession) isCommand() {}
func (HandleRpc) isCommand()         {}
func (HandleRpcForExtn) isCommand()  {}
