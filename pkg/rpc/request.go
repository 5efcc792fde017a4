// Package rpc defines the gateway-level request record and call context that
// travel with every RPC from transport to handler.
package rpc

import (
	"encoding/json"
	"strings"
)

// Protocol identifies how a request entered the gateway.
type Protocol string

const (
	ProtocolJSONRPC Protocol = "jsonrpc"
	ProtocolExtn    Protocol = "extn"
	ProtocolBridge  Protocol = "bridge"
)

// CallContext carries the identity of a single call: which app made it, on
// which session, and the wire-level call id used to correlate the reply.
type CallContext struct {
	RequestID string   `json:"requestId"`
	CallID    uint64   `json:"callId"`
	AppID     string   `json:"appId"`
	SessionID string   `json:"sessionId"`
	Protocol  Protocol `json:"protocol"`
}

// Request is the gateway's request record. Method is normalized to
// lowercase-module form before dispatch; ParamsJSON is the raw params array
// as received ([ctx, args]).
type Request struct {
	Ctx        CallContext `json:"ctx"`
	Method     string      `json:"method"`
	ParamsJSON string      `json:"paramsJson"`
}

// NormalizeMethod lowercases the module segment of a method name (the portion
// before the final dot). "Device.Model" becomes "device.Model"; names without
// a dot are lowercased whole.
func NormalizeMethod(method string) string {
	idx := strings.LastIndex(method, ".")
	if idx < 0 {
		return strings.ToLower(method)
	}
	return strings.ToLower(method[:idx]) + method[idx:]
}

// Normalized returns a copy of the request with its method in
// lowercase-module form.
func (r Request) Normalized() Request {
	r.Method = NormalizeMethod(r.Method)
	return r
}

// Params decodes ParamsJSON as a JSON array. A decode failure yields nil;
// schema validation treats a malformed params array as absent.
func (r Request) Params() []json.RawMessage {
	var params []json.RawMessage
	if err := json.Unmarshal([]byte(r.ParamsJSON), &params); err != nil {
		return nil
	}
	return params
}

// ApiMessage is a serialized reply ready for a session transport, tagged with
// the protocol and originating request id.
type ApiMessage struct {
	Protocol  Protocol
	JSONRPC   string
	RequestID string
}

// NewApiMessage builds an ApiMessage from a serialized JSON-RPC reply.
func NewApiMessage(protocol Protocol, jsonrpcMsg string, requestID string) ApiMessage {
	return ApiMessage{
		Protocol:  protocol,
		JSONRPC:   jsonrpcMsg,
		RequestID: requestID,
	}
}
