// Package extn models loadable extensions: typed extension ids, the plugin
// ABI (channel and method builders), the scoped sender handed to each
// extension, and the boot-time loader that publishes their contributions.
package extn

import (
	"fmt"
	"strings"
)

// Kind is the extension flavor encoded in an id.
type Kind string

const (
	// KindChannel marks a device-control plugin hosting I/O for a
	// capability family.
	KindChannel Kind = "channel"
	// KindExtn marks a feature plugin contributing RPC methods.
	KindExtn Kind = "extn"
)

const idScheme = "fb"

// ID is a parsed extension identifier of the form
// "fb:<kind>:<class>:<service>", e.g. "fb:channel:device:thunder".
// IDs are immutable after construction.
type ID struct {
	kind    Kind
	class   string
	service string
}

// ParseID parses an extension id string.
func ParseID(s string) (ID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return ID{}, fmt.Errorf("extn id %q: expected fb:<kind>:<class>:<service>", s)
	}
	if parts[0] != idScheme {
		return ID{}, fmt.Errorf("extn id %q: unknown scheme %q", s, parts[0])
	}
	kind := Kind(parts[1])
	switch kind {
	case KindChannel, KindExtn:
	default:
		return ID{}, fmt.Errorf("extn id %q: unknown kind %q", s, parts[1])
	}
	if parts[2] == "" || parts[3] == "" {
		return ID{}, fmt.Errorf("extn id %q: empty class or service", s)
	}
	return ID{kind: kind, class: parts[2], service: parts[3]}, nil
}

// Kind returns the extension flavor.
func (id ID) Kind() Kind { return id.kind }

// Class returns the class segment (e.g. "device").
func (id ID) Class() string { return id.class }

// Service returns the service segment (e.g. "thunder").
func (id ID) Service() string { return id.service }

// IsDeviceChannel reports whether the id names a privileged device-control
// channel. Device channels load before everything else.
func (id ID) IsDeviceChannel() bool {
	return id.kind == KindChannel && id.class == "device"
}

func (id ID) String() string {
	return strings.Join([]string{idScheme, string(id.kind), id.class, id.service}, ":")
}
