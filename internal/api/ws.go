package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/fireboltd/fireboltd/pkg/gateway"
	"github.com/fireboltd/fireboltd/pkg/jsonrpc"
	"github.com/fireboltd/fireboltd/pkg/rpc"
	"github.com/fireboltd/fireboltd/pkg/session"
)

// wsWriter sends serialized replies over one WebSocket connection.
type wsWriter struct {
	ctx  context.Context
	conn *websocket.Conn
}

// Send implements session.Writer.
func (w *wsWriter) Send(msg rpc.ApiMessage) error {
	return w.conn.Write(w.ctx, websocket.MessageText, []byte(msg.JSONRPC))
}

// handleWS upgrades a connection, registers a session for it, then feeds
// frames to the gateway until the socket closes. Registration is submitted
// before the first frame is read, so the gateway always sees the session
// before any request that names it.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	appID := r.URL.Query().Get("appId")
	if appID == "" {
		http.Error(w, "appId query parameter required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	sessionID := uuid.NewString()
	cid := uuid.NewString()

	sess := session.New(sessionID, cid, appID, session.Websocket(), &wsWriter{ctx: ctx, conn: conn})
	s.gateway.Submit(gateway.RegisterSession{SessionID: sessionID, Session: sess})
	defer s.gateway.Submit(gateway.UnregisterSession{SessionID: sessionID, CID: cid})

	s.logger.Info("session connected", "session_id", sessionID, "app", appID)

	for {
		kind, data, err := conn.Read(ctx)
		if err != nil {
			s.logger.Info("session disconnected", "session_id", sessionID, "error", err)
			return
		}
		if kind != websocket.MessageText {
			continue
		}

		var frame jsonrpc.Request
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Warn("dropping unparseable frame", "session_id", sessionID, "error", err)
			continue
		}

		req := rpc.Request{
			Ctx: rpc.CallContext{
				RequestID: uuid.NewString(),
				CallID:    frame.ID,
				AppID:     appID,
				SessionID: sessionID,
				Protocol:  rpc.ProtocolJSONRPC,
			},
			Method:     frame.Method,
			ParamsJSON: string(frame.Params),
		}
		s.gateway.Submit(gateway.HandleRpc{Request: req})
	}
}
