package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/fireboltd/fireboltd/pkg/platform"
	"github.com/fireboltd/fireboltd/pkg/rpc"
)

// internalCaller invokes catalog methods directly, bypassing the session
// layer. The metrics pipeline uses it to source locale and device naming
// from internal methods at boot.
type internalCaller struct {
	ps *platform.State
}

// CallInternal implements metrics.InternalCaller.
func (c *internalCaller) CallInternal(ctx context.Context, method string) (string, error) {
	normalized := rpc.NormalizeMethod(method)
	handler, ok := c.ps.OpenRPC.MethodByName(normalized)
	if !ok {
		return "", fmt.Errorf("internal method %s not found", normalized)
	}

	req := rpc.Request{
		Ctx: rpc.CallContext{
			RequestID: uuid.NewString(),
			AppID:     "fireboltd.internal",
			Protocol:  rpc.ProtocolExtn,
		},
		Method:     normalized,
		ParamsJSON: "[{}]",
	}
	result, jsonErr := handler.Invoke(ctx, req)
	if jsonErr != nil {
		return "", fmt.Errorf("internal method %s: %s", normalized, jsonErr.Message)
	}

	switch v := result.(type) {
	case string:
		return v, nil
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", fmt.Errorf("internal method %s: non-string result", normalized)
		}
		return s, nil
	default:
		return "", fmt.Errorf("internal method %s: non-string result", normalized)
	}
}
