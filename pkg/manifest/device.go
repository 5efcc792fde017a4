// Package manifest loads and models the three declarative inputs the gateway
// consumes at boot: the device manifest, per-app manifests, and the extension
// manifest. Manifests are JWCC (JSON with comments and commas) normalized via
// hujson before decoding.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// EtcDeviceManifestPath is where production builds read the device manifest.
const EtcDeviceManifestPath = "/etc/firebolt-device-manifest.json"

// Environment variables consulted when locating and overriding the device
// manifest.
const (
	EnvDeviceManifest = "DEVICE_MANIFEST"
	EnvHome           = "HOME"
	EnvCountry        = "COUNTRY"
	EnvDeviceType     = "DEVICE_TYPE"
)

// ErrNoDeviceManifest is returned when no manifest could be located.
var ErrNoDeviceManifest = errors.New("manifest: no device manifest found")

// CapabilityPolicy describes how one capability is gated on this device.
type CapabilityPolicy struct {
	Supported bool   `json:"supported"`
	Available bool   `json:"available"`
	UseGrants bool   `json:"useGrants"`
	GrantRole string `json:"grantRole,omitempty"`
}

// SettingTag binds a privacy storage property to the governance tags emitted
// while that setting allows collection.
type SettingTag struct {
	Setting string   `json:"setting"`
	Tags    []string `json:"tags"`
}

// DataGovernancePolicy is the tag policy for one data event type.
type DataGovernancePolicy struct {
	DataEventType string       `json:"dataEventType"`
	SettingTags   []SettingTag `json:"settingTags"`
}

// DataGovernanceConfig holds all governance policies declared by the device.
type DataGovernanceConfig struct {
	Policies []DataGovernancePolicy `json:"policies"`
}

// Policy returns the policy for a data event type, or nil.
func (c DataGovernanceConfig) Policy(eventType string) *DataGovernancePolicy {
	for i := range c.Policies {
		if c.Policies[i].DataEventType == eventType {
			return &c.Policies[i]
		}
	}
	return nil
}

// Configuration is the device manifest's configuration block.
type Configuration struct {
	MetricsLoggingPercentage int                         `json:"metricsLoggingPercentage"`
	DataGovernance           DataGovernanceConfig        `json:"dataGovernance"`
	Capabilities             map[string]CapabilityPolicy `json:"capabilities"`
	FormFactor               string                      `json:"formFactor"`
	Country                  string                      `json:"country,omitempty"`
	DefaultValues            map[string]string           `json:"defaultValues,omitempty"`
}

// DeviceManifest is the device-level declaration of supported capabilities,
// governance, and metrics sampling.
type DeviceManifest struct {
	Configuration Configuration `json:"configuration"`
}

// FormFactor returns the declared form factor, honoring the DEVICE_TYPE
// environment override.
func (m *DeviceManifest) FormFactor() string {
	if v := os.Getenv(EnvDeviceType); v != "" {
		return v
	}
	return m.Configuration.FormFactor
}

// Country returns the declared country, honoring the COUNTRY environment
// override.
func (m *DeviceManifest) Country() string {
	if v := os.Getenv(EnvCountry); v != "" {
		return v
	}
	return m.Configuration.Country
}

// CapabilityPolicy looks up the policy for a capability name. Undeclared
// capabilities report an unsupported zero policy.
func (m *DeviceManifest) CapabilityPolicy(name string) CapabilityPolicy {
	if p, ok := m.Configuration.Capabilities[name]; ok {
		return p
	}
	return CapabilityPolicy{}
}

// LoadDeviceManifest reads a device manifest from path.
func LoadDeviceManifest(path string) (*DeviceManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading device manifest: %w", err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("normalizing device manifest %s: %w", path, err)
	}
	var m DeviceManifest
	if err := json.Unmarshal(std, &m); err != nil {
		return nil, fmt.Errorf("parsing device manifest %s: %w", path, err)
	}
	return &m, nil
}

// FindDeviceManifest locates the device manifest. The DEVICE_MANIFEST path
// override wins, then a dev-mode file under $HOME, then the /etc path used by
// production images.
func FindDeviceManifest() (*DeviceManifest, error) {
	if path := os.Getenv(EnvDeviceManifest); path != "" {
		return LoadDeviceManifest(path)
	}
	if home := os.Getenv(EnvHome); home != "" {
		path := filepath.Join(home, ".fireboltd", "firebolt-device-manifest.json")
		if m, err := LoadDeviceManifest(path); err == nil {
			return m, nil
		}
	}
	if m, err := LoadDeviceManifest(EtcDeviceManifestPath); err == nil {
		return m, nil
	}
	return nil, ErrNoDeviceManifest
}
