// Package handlers registers the in-process RPC modules the gateway ships
// with. These merge into the method catalog at boot alongside extension
// contributions.
package handlers

import (
	"context"
	"encoding/json"

	"github.com/fireboltd/fireboltd/pkg/capability"
	"github.com/fireboltd/fireboltd/pkg/grants"
	"github.com/fireboltd/fireboltd/pkg/jsonrpc"
	"github.com/fireboltd/fireboltd/pkg/openrpc"
	"github.com/fireboltd/fireboltd/pkg/platform"
	"github.com/fireboltd/fireboltd/pkg/rpc"
)

// AppInfo identifies the app a grant belongs to.
type AppInfo struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// GrantInfo is the caller-facing view of one grant entry.
type GrantInfo struct {
	App        *AppInfo `json:"app,omitempty"`
	State      string   `json:"state"`
	Capability string   `json:"capability"`
	Role       string   `json:"role"`
	Lifespan   string   `json:"lifespan"`
	Expires    string   `json:"expires,omitempty"`
}

// GrantRequest selects a grant to modify or query.
type GrantRequest struct {
	Capability string `json:"capability"`
	Role       string `json:"role"`
	Options    *struct {
		AppID string `json:"appId,omitempty"`
	} `json:"options,omitempty"`
}

// ByAppRequest selects grants by app.
type ByAppRequest struct {
	AppID string `json:"appId"`
}

// ByCapabilityRequest selects grants by capability.
type ByCapabilityRequest struct {
	Capability string `json:"capability"`
}

// UserGrantsMethods builds the usergrants RPC module over the platform's
// grant store.
func UserGrantsMethods(ps *platform.State) openrpc.MethodTable {
	return openrpc.MethodTable{
		"usergrants.app": {Invoke: func(_ context.Context, req rpc.Request) (any, *jsonrpc.Error) {
			var request ByAppRequest
			if jsonErr := decodeArgs(req, &request); jsonErr != nil {
				return nil, jsonErr
			}
			entries := ps.Grants.EntriesForApp(request.AppID)
			return grantInfos(ps, request.AppID, entries), nil
		}},
		"usergrants.device": {Invoke: func(_ context.Context, _ rpc.Request) (any, *jsonrpc.Error) {
			return grantInfos(ps, "", ps.Grants.DeviceEntries()), nil
		}},
		"usergrants.capability": {Invoke: func(_ context.Context, req rpc.Request) (any, *jsonrpc.Error) {
			var request ByCapabilityRequest
			if jsonErr := decodeArgs(req, &request); jsonErr != nil {
				return nil, jsonErr
			}
			combined := []GrantInfo{}
			for appID, entries := range ps.Grants.EntriesForCapability(capability.Capability(request.Capability)) {
				combined = append(combined, grantInfos(ps, appID, entries)...)
			}
			return combined, nil
		}},
		"usergrants.grant": grantModifyHandler(ps, grants.ModifyGrant),
		"usergrants.deny":  grantModifyHandler(ps, grants.ModifyDeny),
		"usergrants.clear": grantModifyHandler(ps, grants.ModifyClear),
	}
}

func grantModifyHandler(ps *platform.State, modify grants.Modify) openrpc.Handler {
	return openrpc.Handler{Invoke: func(_ context.Context, req rpc.Request) (any, *jsonrpc.Error) {
		var request GrantRequest
		if jsonErr := decodeArgs(req, &request); jsonErr != nil {
			return nil, jsonErr
		}
		appID := ""
		if request.Options != nil {
			appID = request.Options.AppID
		}
		ok := ps.Grants.Apply(modify, appID,
			capability.Role(request.Role), capability.Capability(request.Capability),
			grants.LifespanForever, nil)
		if !ok {
			return nil, &jsonrpc.Error{
				Code:    capability.CodeGetError,
				Message: "Unable to " + string(modify) + " the capability",
			}
		}
		return nil, nil
	}}
}

func grantInfos(ps *platform.State, appID string, entries []grants.Entry) []GrantInfo {
	var app *AppInfo
	if appID != "" {
		app = &AppInfo{ID: appID, Title: appTitle(ps, appID)}
	}
	out := make([]GrantInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, GrantInfo{
			App:        app,
			State:      string(e.Status),
			Capability: e.Capability.String(),
			Role:       string(e.Role),
			Lifespan:   string(e.Lifespan),
			Expires:    e.ExpiresAt(),
		})
	}
	return out
}

func appTitle(ps *platform.State, appID string) string {
	if ps.Apps == nil {
		return ""
	}
	if m, ok := ps.Apps.AppManifest(appID); ok && m != nil {
		return m.Name
	}
	return ""
}

// decodeArgs unmarshals the request's argument element (params[1]) into v.
func decodeArgs(req rpc.Request, v any) *jsonrpc.Error {
	params := req.Params()
	if len(params) < 2 {
		return &jsonrpc.Error{Code: jsonrpc.InvalidParams, Message: "missing request argument"}
	}
	if err := json.Unmarshal(params[1], v); err != nil {
		return &jsonrpc.Error{Code: jsonrpc.InvalidParams, Message: err.Error()}
	}
	return nil
}
