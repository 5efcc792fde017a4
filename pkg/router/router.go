// Package router delivers approved requests to their terminal handler and
// marshals the reply back onto the caller's transport.
package router

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fireboltd/fireboltd/pkg/capability"
	"github.com/fireboltd/fireboltd/pkg/extn"
	"github.com/fireboltd/fireboltd/pkg/jsonrpc"
	"github.com/fireboltd/fireboltd/pkg/platform"
	"github.com/fireboltd/fireboltd/pkg/rpc"
	"github.com/fireboltd/fireboltd/pkg/session"
	"github.com/fireboltd/fireboltd/pkg/telemetry"
)

// Route invokes the handler for a JSON-RPC or bridge request and writes the
// reply through the session's transport. The timer is stopped with the
// terminal code, and an RDK telemetry record is logged, whatever the
// outcome.
func Route(ctx context.Context, ps *platform.State, req rpc.Request, sess *session.Session, timer *telemetry.Timer) {
	start := time.Now()
	msg, code := invoke(ctx, ps, req)

	deliver(ps, req, sess, msg)

	ps.Telemetry.StopTimer(timer, code)
	ps.Telemetry.LogRDKRecord(req.Ctx.AppID, req.Method, code, time.Since(start))
}

// RouteExtn invokes the handler for an extension-originated request and
// replies through the inline callback.
func RouteExtn(ctx context.Context, ps *platform.State, req rpc.Request, extnMsg *extn.Message) {
	start := time.Now()
	msg, code := invoke(ctx, ps, req)

	if err := extnMsg.Callback.Send(msg); err != nil {
		ps.Logger.Error("extn callback send failed", "method", req.Method, "error", err)
	}

	ps.Telemetry.LogRDKRecord(req.Ctx.AppID, req.Method, code, time.Since(start))
}

// SendError serializes a JSON-RPC error for a request and writes it through
// the request's session. Used by the gateway for pre-routing failures
// (validation, policy denies).
func SendError(ps *platform.State, req rpc.Request, jsonErr *jsonrpc.Error) {
	sess, ok := ps.Sessions.Get(req.Ctx)
	if !ok {
		ps.Logger.Warn("session not found for error reply", "method", req.Method)
		return
	}
	deliver(ps, req, sess, jsonrpc.NewErrorMessage(req.Ctx.CallID, jsonErr))
}

// invoke runs the catalog handler and builds the reply message plus the
// terminal telemetry code.
func invoke(ctx context.Context, ps *platform.State, req rpc.Request) (jsonrpc.Message, int) {
	handler, ok := ps.OpenRPC.MethodByName(req.Method)
	if !ok {
		jsonErr := &jsonrpc.Error{Code: jsonrpc.MethodNotFound, Message: "Method not found: " + req.Method}
		return jsonrpc.NewErrorMessage(req.Ctx.CallID, jsonErr), jsonrpc.MethodNotFound
	}

	result, jsonErr := handler.Invoke(ctx, req)
	if jsonErr != nil {
		if jsonErr.Code == 0 {
			jsonErr.Code = capability.CodeGetError
		}
		return jsonrpc.NewErrorMessage(req.Ctx.CallID, jsonErr), jsonErr.Code
	}
	return jsonrpc.NewResultMessage(req.Ctx.CallID, result), 0
}

// deliver writes a reply through the session's effective transport. Write
// failures are logged and discarded: replies are best-effort, and a degraded
// session is removed on its next unregister.
func deliver(ps *platform.State, req rpc.Request, sess *session.Session, msg jsonrpc.Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		ps.Logger.Error("could not serialize reply", "method", req.Method, "error", err)
		return
	}
	apiMsg := rpc.NewApiMessage(req.Ctx.Protocol, string(raw), req.Ctx.RequestID)

	transport := sess.Transport()
	switch transport.Kind {
	case session.TransportWebSocket:
		if err := sess.SendJSONRPC(apiMsg); err != nil {
			ps.Logger.Error("websocket send failed", "method", req.Method, "error", err)
		}
	case session.TransportBridge:
		if err := ps.SendToBridge(transport.BridgeID, apiMsg); err != nil {
			ps.Logger.Error("bridge send failed",
				"method", req.Method, "bridge", transport.BridgeID, "error", err)
		}
	}
}
