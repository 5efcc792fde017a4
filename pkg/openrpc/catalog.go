// Package openrpc owns the gateway's method catalog and the OpenRPC schema
// state used to validate request parameters.
package openrpc

import (
	"context"
	"log/slog"

	"github.com/fireboltd/fireboltd/pkg/capability"
	"github.com/fireboltd/fireboltd/pkg/jsonrpc"
	"github.com/fireboltd/fireboltd/pkg/rpc"
)

// HandlerFunc is the terminal implementation of one RPC method. It returns
// either a result value (serialized by the router) or a JSON-RPC error.
type HandlerFunc func(ctx context.Context, req rpc.Request) (any, *jsonrpc.Error)

// Handler is one entry in the method catalog.
type Handler struct {
	Invoke    HandlerFunc
	SchemaRef string
	// Caps are the capabilities governing the method; the gatekeeper
	// evaluates each before dispatch. Methods without caps are open.
	Caps []capability.Capability
	// Source is the extension id that contributed the method, empty for
	// in-process methods.
	Source string
}

// MethodTable maps lowercase-module method names to handlers.
type MethodTable map[string]Handler

// Merge folds other into the table. Duplicate names are resolved
// last-writer-wins; each collision is logged so operators can spot extension
// conflicts. Merge never panics.
func (t MethodTable) Merge(other MethodTable, logger *slog.Logger) {
	for name, h := range other {
		if prev, ok := t[name]; ok && logger != nil {
			logger.Warn("duplicate method replaced",
				"method", name, "previous_source", prev.Source, "source", h.Source)
		}
		t[name] = h
	}
}

// Names returns the method names in the table, unordered.
func (t MethodTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	return names
}
