package openrpc

import (
	"encoding/json"
	"fmt"

	"github.com/fireboltd/fireboltd/pkg/rpc"
)

// ValidateRequest checks a request's arguments against the method's params
// schema. The params array is [ctx, args]; element 1 is validated. Methods
// absent from the schema state pass through with a debug log: legacy APIs
// may be registered outside OpenRPC.
func (s *State) ValidateRequest(req rpc.Request) error {
	validator, ok := s.ParamsValidator(s.major, req.Method)
	if !ok {
		s.logger.Debug("method not found in schema, allowing", "method", req.Method)
		return nil
	}

	params := req.Params()
	if len(params) < 2 {
		// No argument element; nothing to validate against the schema.
		return nil
	}

	var args any
	if err := json.Unmarshal(params[1], &args); err != nil {
		return fmt.Errorf("params[1] is not valid JSON: %w", err)
	}
	if err := validator.Validate(args); err != nil {
		return fmt.Errorf("invalid params for %s: %w", req.Method, err)
	}
	return nil
}
