package openrpc

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// MethodSpec declares one method in an OpenRPC document: its name and the
// JSON Schema its argument object must satisfy.
type MethodSpec struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Document is one OpenRPC contribution: a versioned set of method schemas.
// Contributions from extensions are folded into the State at load time.
type Document struct {
	Version string       `json:"version"`
	Methods []MethodSpec `json:"methods"`
}

// MajorVersion parses the document version and returns its major component
// as a string, the key under which its validators are registered.
func (d *Document) MajorVersion() (string, error) {
	v, err := semver.NewVersion(d.Version)
	if err != nil {
		return "", fmt.Errorf("openrpc version %q: %w", d.Version, err)
	}
	return fmt.Sprintf("%d", v.Major()), nil
}

// ParseDocument decodes an OpenRPC document from JSON.
func ParseDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing openrpc document: %w", err)
	}
	if _, err := d.MajorVersion(); err != nil {
		return nil, err
	}
	return &d, nil
}
