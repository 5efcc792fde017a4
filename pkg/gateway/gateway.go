package gateway

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fireboltd/fireboltd/pkg/capability"
	"github.com/fireboltd/fireboltd/pkg/extn"
	"github.com/fireboltd/fireboltd/pkg/gatekeeper"
	"github.com/fireboltd/fireboltd/pkg/jsonrpc"
	"github.com/fireboltd/fireboltd/pkg/openrpc"
	"github.com/fireboltd/fireboltd/pkg/platform"
	"github.com/fireboltd/fireboltd/pkg/router"
	"github.com/fireboltd/fireboltd/pkg/rpc"
	"github.com/fireboltd/fireboltd/pkg/telemetry"
)

// commandBuffer sizes the gateway command channel. Transports block when the
// loop falls this far behind.
const commandBuffer = 256

// Gateway is the dispatch core: one long-lived consumer draining the command
// channel, one short-lived task per in-flight request.
type Gateway struct {
	ps       *platform.State
	commands chan Command
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a gateway over the platform state and publishes the method
// table.
func New(ps *platform.State, methods openrpc.MethodTable) *Gateway {
	for _, name := range methods.Names() {
		ps.Logger.Info("adding RPC method", "method", name)
	}
	ps.OpenRPC.UpdateMethods(methods)
	return &Gateway{
		ps:       ps,
		commands: make(chan Command, commandBuffer),
		logger:   ps.Logger,
		tracer:   telemetry.Tracer(),
	}
}

// Submit posts a command onto the gateway channel.
func (g *Gateway) Submit(cmd Command) {
	g.commands <- cmd
}

// Start runs the consumer loop until the context is cancelled. Blocking work
// never happens inline: every request is handed to its own goroutine, so a
// request that re-enters the gateway (a user-grant dialog replying over RPC)
// cannot stall the loop.
func (g *Gateway) Start(ctx context.Context) {
	g.logger.Info("starting gateway listener")
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("gateway listener stopped")
			return
		case cmd := <-g.commands:
			switch c := cmd.(type) {
			case RegisterSession:
				g.ps.Sessions.Add(c.SessionID, c.Session)
				telemetry.ActiveSessions.Set(float64(g.ps.Sessions.Count()))
			case UnregisterSession:
				g.ps.AppEvents.RemoveSession(c.SessionID)
				g.ps.Sessions.ClearByCID(c.CID)
				telemetry.ActiveSessions.Set(float64(g.ps.Sessions.Count()))
			case HandleRpc:
				g.handle(ctx, c.Request, nil)
			case HandleRpcForExtn:
				msg := c.Msg
				if req, ok := msg.Request(); ok {
					g.handle(ctx, req, &msg)
				} else {
					g.logger.Error("not a valid RPC request", "extn", msg.Source.String())
				}
			}
		}
	}
}

// handle verifies a request's prerequisites and spawns its dispatch task.
func (g *Gateway) handle(ctx context.Context, req rpc.Request, extnMsg *extn.Message) {
	g.logger.Info("received firebolt request",
		"request_id", req.Ctx.RequestID, "method", req.Method, "app", req.Ctx.AppID)

	// A request with nobody to reply to is dropped here, before any
	// telemetry is started.
	switch req.Ctx.Protocol {
	case rpc.ProtocolExtn:
		if extnMsg == nil || extnMsg.Callback == nil {
			g.logger.Error("no callback for extn request", "method", req.Method)
			return
		}
	default:
		if !g.ps.Sessions.Has(req.Ctx) {
			g.logger.Error("no session for request",
				"method", req.Method, "session_id", req.Ctx.SessionID)
			return
		}
	}

	normalized := req.Normalized()
	timer := g.ps.Telemetry.StartTimer(normalized.Method, normalized.Ctx.AppID)

	go g.dispatch(ctx, req, normalized, extnMsg, timer)
}

// dispatch runs one request to its terminal outcome: schema validation,
// policy, brokerage, then routing.
func (g *Gateway) dispatch(ctx context.Context, req, normalized rpc.Request, extnMsg *extn.Message, timer *telemetry.Timer) {
	ctx, span := g.tracer.Start(ctx, "gateway.dispatch", trace.WithAttributes(
		attribute.String("rpc.method", normalized.Method),
		attribute.String("app.id", normalized.Ctx.AppID),
	))
	defer span.End()

	start := time.Now()

	if err := g.ps.OpenRPC.ValidateRequest(normalized); err != nil {
		g.ps.Telemetry.LogRDKRecord(normalized.Ctx.AppID, normalized.Method, capability.CodeInvalidParams, time.Since(start))
		g.ps.Telemetry.StopTimer(timer, capability.CodeInvalidParams)
		router.SendError(g.ps, req, &jsonrpc.Error{
			Code:    capability.CodeInvalidParams,
			Message: err.Error(),
		})
		return
	}

	if deny := gatekeeper.Gate(ctx, g.ps, normalized); deny != nil {
		g.ps.Telemetry.LogRDKRecord(normalized.Ctx.AppID, normalized.Method, deny.Reason.RPCErrorCode(), time.Since(start))
		g.ps.Telemetry.StopTimer(timer, deny.Reason.ObservabilityCode())
		g.logger.Error("gateway denied request",
			"method", req.Method, "app", req.Ctx.AppID, "reason", string(deny.Reason))
		router.SendError(g.ps, req, &jsonrpc.Error{
			Code:    deny.Reason.RPCErrorCode(),
			Message: deny.Reason.RPCErrorMessage(deny.Caps),
		})
		return
	}

	if g.ps.Broker.HandleBrokerage(normalized, extnMsg) {
		// The broker owns the call now; no local routing.
		return
	}

	switch req.Ctx.Protocol {
	case rpc.ProtocolExtn:
		if extnMsg != nil {
			router.RouteExtn(ctx, g.ps, normalized, extnMsg)
		} else {
			g.logger.Error("missing extn message, not forwarding", "method", req.Method)
		}
	default:
		if sess, ok := g.ps.Sessions.Get(normalized.Ctx); ok {
			router.Route(ctx, g.ps, normalized, sess, timer)
		} else {
			// The socket can drop between the prerequisite check and here.
			g.logger.Error("session is missing, request not forwarded", "method", req.Method)
		}
	}
}
