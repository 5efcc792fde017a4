// Package session tracks bound app connections: each session pairs a
// transport endpoint with the app context it serves.
package session

import (
	"errors"
	"sync/atomic"

	"github.com/fireboltd/fireboltd/pkg/rpc"
)

// ErrNoWriter is returned when a session send has no usable transport writer.
var ErrNoWriter = errors.New("session: no transport writer")

// TransportKind tags a session's effective transport.
type TransportKind string

const (
	// TransportWebSocket writes frames directly to the connection.
	TransportWebSocket TransportKind = "websocket"
	// TransportBridge routes replies indirectly through a named bridge.
	TransportBridge TransportKind = "bridge"
)

// EffectiveTransport is the tagged transport variant for a session.
// BridgeID is set only for bridge sessions.
type EffectiveTransport struct {
	Kind     TransportKind
	BridgeID string
}

// Websocket builds the direct-write transport tag.
func Websocket() EffectiveTransport {
	return EffectiveTransport{Kind: TransportWebSocket}
}

// Bridge builds the indirect transport tag for a named bridge.
func Bridge(targetID string) EffectiveTransport {
	return EffectiveTransport{Kind: TransportBridge, BridgeID: targetID}
}

// Writer is a direct transport endpoint for a WebSocket session.
type Writer interface {
	Send(msg rpc.ApiMessage) error
}

// Session is one bound connection from an app to the gateway.
type Session struct {
	id          string
	cid         string
	appID       string
	transport   EffectiveTransport
	writer      Writer
	callCounter atomic.Uint64
}

// New creates a session. writer may be nil for bridge sessions.
func New(id, cid, appID string, transport EffectiveTransport, writer Writer) *Session {
	return &Session{id: id, cid: cid, appID: appID, transport: transport, writer: writer}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// CID returns the connection id used for cleanup from the transport side.
func (s *Session) CID() string { return s.cid }

// AppID returns the app bound to the session.
func (s *Session) AppID() string { return s.appID }

// Transport returns the session's transport tag.
func (s *Session) Transport() EffectiveTransport { return s.transport }

// NextCallID increments and returns the session's call counter.
func (s *Session) NextCallID() uint64 {
	return s.callCounter.Add(1)
}

// SendJSONRPC writes a reply through the session's direct writer. Bridge
// sessions have no direct writer; their replies go through the bridge sender.
func (s *Session) SendJSONRPC(msg rpc.ApiMessage) error {
	if s.writer == nil {
		return ErrNoWriter
	}
	return s.writer.Send(msg)
}
