// Package capability defines the capability and policy vocabulary used by the
// gatekeeper: capability names, roles, deny reasons, and the stable RPC error
// code table.
package capability

import (
	"fmt"
	"strings"
)

// Capability is a namespaced permission string, e.g. "device:info".
// A capability governs a family of methods.
type Capability string

// Parse validates a capability string. Capabilities have at least two
// non-empty colon-separated segments.
func Parse(s string) (Capability, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return "", fmt.Errorf("capability %q: expected namespace:name", s)
	}
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("capability %q: empty segment", s)
		}
	}
	return Capability(s), nil
}

func (c Capability) String() string { return string(c) }

// Role is the access role an app requests for a capability.
type Role string

const (
	RoleUse     Role = "use"
	RoleManage  Role = "manage"
	RoleProvide Role = "provide"
)

// DenyReason classifies why the gatekeeper refused a request.
type DenyReason string

const (
	DenyUnpermitted DenyReason = "unpermitted"
	DenyUnsupported DenyReason = "unsupported"
	DenyDisabled    DenyReason = "disabled"
	DenyUnavailable DenyReason = "unavailable"
	DenyGrantDenied DenyReason = "grantDenied"
	DenyUngranted   DenyReason = "ungranted"
)

// Stable capability error codes surfaced to JSON-RPC callers.
const (
	CodeNotAvailable  = -50300
	CodeNotSupported  = -50100
	CodeGetError      = -50200
	CodeNotPermitted  = -40300
	CodeInvalidParams = -32602
)

// RPCErrorCode maps a deny reason to its JSON-RPC error code.
func (d DenyReason) RPCErrorCode() int {
	switch d {
	case DenyUnavailable:
		return CodeNotAvailable
	case DenyUnsupported:
		return CodeNotSupported
	case DenyGrantDenied, DenyUnpermitted:
		return CodeNotPermitted
	default:
		return CodeGetError
	}
}

// ObservabilityCode is the code recorded on telemetry for a denied request.
// It matches the RPC error code for every reason today but is kept separate
// so telemetry can diverge without changing the caller-visible contract.
func (d DenyReason) ObservabilityCode() int {
	return d.RPCErrorCode()
}

// RPCErrorMessage renders the caller-visible message for a deny reason over
// the affected capabilities.
func (d DenyReason) RPCErrorMessage(caps []Capability) string {
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = c.String()
	}
	disp := strings.Join(names, ",")
	switch d {
	case DenyUnavailable:
		return fmt.Sprintf("%s is not available", disp)
	case DenyUnsupported:
		return fmt.Sprintf("%s is not supported", disp)
	case DenyGrantDenied:
		return fmt.Sprintf("The user denied access to %s", disp)
	case DenyUnpermitted:
		return fmt.Sprintf("%s is not permitted", disp)
	default:
		return fmt.Sprintf("Error with %s", disp)
	}
}

// DenyError is returned by the gatekeeper when a request fails policy.
type DenyError struct {
	Reason DenyReason
	Caps   []Capability
}

func (e *DenyError) Error() string {
	return fmt.Sprintf("denied (%s): %s", e.Reason, e.Reason.RPCErrorMessage(e.Caps))
}
