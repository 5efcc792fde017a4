// Package gatekeeper evaluates the four-axis capability policy — supported,
// available, permitted, granted — for every request before dispatch.
package gatekeeper

import (
	"context"

	"github.com/fireboltd/fireboltd/pkg/capability"
	"github.com/fireboltd/fireboltd/pkg/grants"
	"github.com/fireboltd/fireboltd/pkg/platform"
	"github.com/fireboltd/fireboltd/pkg/rpc"
)

// Gate admits or denies a request. Conditions are checked in a fixed order
// across the method's capabilities; the first axis with any failing
// capability determines the deny reason and the reported capability list.
//
//  1. Supported — declared by the device manifest.
//  2. Available — currently marked available (device capabilities toggle).
//  3. Permitted — listed in the calling app's used.required or used.optional.
//  4. Granted — a live Allowed grant exists for grant-gated capabilities.
//
// Methods with no governing capabilities, and methods absent from the
// catalog, pass through: absence is the router's problem, not policy's.
func Gate(ctx context.Context, ps *platform.State, req rpc.Request) *capability.DenyError {
	handler, ok := ps.OpenRPC.MethodByName(req.Method)
	if !ok || len(handler.Caps) == 0 {
		return nil
	}
	caps := handler.Caps

	if failed := unsupported(ps, caps); len(failed) > 0 {
		return &capability.DenyError{Reason: capability.DenyUnsupported, Caps: failed}
	}
	if failed := unavailable(ps, caps); len(failed) > 0 {
		return &capability.DenyError{Reason: capability.DenyUnavailable, Caps: failed}
	}
	if failed := unpermitted(ps, req.Ctx.AppID, caps); len(failed) > 0 {
		return &capability.DenyError{Reason: capability.DenyUnpermitted, Caps: failed}
	}
	if reason, failed := ungranted(ps, req.Ctx.AppID, caps); len(failed) > 0 {
		return &capability.DenyError{Reason: reason, Caps: failed}
	}
	return nil
}

func unsupported(ps *platform.State, caps []capability.Capability) []capability.Capability {
	var failed []capability.Capability
	for _, c := range caps {
		if !ps.Device.CapabilityPolicy(c.String()).Supported {
			failed = append(failed, c)
		}
	}
	return failed
}

func unavailable(ps *platform.State, caps []capability.Capability) []capability.Capability {
	var failed []capability.Capability
	for _, c := range caps {
		if !ps.IsAvailable(c) {
			failed = append(failed, c)
		}
	}
	return failed
}

func unpermitted(ps *platform.State, appID string, caps []capability.Capability) []capability.Capability {
	appManifest, ok := appManifestFor(ps, appID)
	var failed []capability.Capability
	for _, c := range caps {
		if !ok || !appManifest.Permits(c.String()) {
			failed = append(failed, c)
		}
	}
	return failed
}

// ungranted checks grant-gated capabilities. A live Denied entry yields
// GrantDenied; a missing entry yields Ungranted. Denied wins when both occur.
func ungranted(ps *platform.State, appID string, caps []capability.Capability) (capability.DenyReason, []capability.Capability) {
	var denied, missing []capability.Capability
	for _, c := range caps {
		policy := ps.Device.CapabilityPolicy(c.String())
		if !policy.UseGrants {
			continue
		}
		role := capability.RoleUse
		if policy.GrantRole != "" {
			role = capability.Role(policy.GrantRole)
		}
		entry, ok := ps.Grants.Lookup(appID, c, role)
		if !ok {
			// Device-scoped grants back app grants for device capabilities.
			entry, ok = ps.Grants.LookupDevice(c, role)
		}
		switch {
		case !ok:
			missing = append(missing, c)
		case entry.Status != grants.StatusAllowed:
			denied = append(denied, c)
		}
	}
	if len(denied) > 0 {
		return capability.DenyGrantDenied, denied
	}
	if len(missing) > 0 {
		return capability.DenyUngranted, missing
	}
	return "", nil
}

func appManifestFor(ps *platform.State, appID string) (permitter, bool) {
	if ps.Apps == nil {
		return nil, false
	}
	m, ok := ps.Apps.AppManifest(appID)
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

type permitter interface {
	Permits(cap string) bool
}
