package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// CapabilitySet lists the capabilities an app declares for one role axis.
type CapabilitySet struct {
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

// Contains reports whether the set lists the capability, required or optional.
func (s CapabilitySet) Contains(cap string) bool {
	for _, c := range s.Required {
		if c == cap {
			return true
		}
	}
	for _, c := range s.Optional {
		if c == cap {
			return true
		}
	}
	return false
}

// AppCapabilities groups an app's declared capabilities by role.
type AppCapabilities struct {
	Used     CapabilitySet `json:"used"`
	Managed  CapabilitySet `json:"managed"`
	Provided CapabilitySet `json:"provided"`
}

// AppManifest is the per-app declaration consulted by the gatekeeper's
// permitted check.
type AppManifest struct {
	AppKey       string          `json:"appKey"`
	Name         string          `json:"name"`
	StartPage    string          `json:"startPage,omitempty"`
	Runtime      string          `json:"runtime,omitempty"`
	Capabilities AppCapabilities `json:"capabilities"`
}

// Permits reports whether the app's manifest lists the capability in
// used.required or used.optional.
func (m *AppManifest) Permits(cap string) bool {
	return m.Capabilities.Used.Contains(cap)
}

// RequiresCapability reports whether the capability is in used.required.
func (m *AppManifest) RequiresCapability(cap string) bool {
	for _, c := range m.Capabilities.Used.Required {
		if c == cap {
			return true
		}
	}
	return false
}

// AppLibrary resolves app ids to manifests. The gatekeeper holds one.
type AppLibrary interface {
	AppManifest(appID string) (*AppManifest, bool)
}

// StaticAppLibrary is an in-memory AppLibrary keyed by app id.
type StaticAppLibrary struct {
	Apps map[string]*AppManifest
}

// AppManifest implements AppLibrary.
func (l *StaticAppLibrary) AppManifest(appID string) (*AppManifest, bool) {
	m, ok := l.Apps[appID]
	return m, ok
}

// LoadAppLibrary reads a JWCC file mapping app id to app manifest.
func LoadAppLibrary(path string) (*StaticAppLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading app library: %w", err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("normalizing app library %s: %w", path, err)
	}
	var apps map[string]*AppManifest
	if err := json.Unmarshal(std, &apps); err != nil {
		return nil, fmt.Errorf("parsing app library %s: %w", path, err)
	}
	return &StaticAppLibrary{Apps: apps}, nil
}
