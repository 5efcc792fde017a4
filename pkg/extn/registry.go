package extn

import (
	"sync"

	"github.com/fireboltd/fireboltd/pkg/manifest"
)

// Builders are the entry points a linked-in library exports.
type Builders struct {
	Channel ChannelBuilder
	Methods MethodsBuilder
}

// BuilderRegistry maps library names to their compiled-in entry points.
// Extension code links into the daemon binary; the extension manifest
// declares which libraries are active and what they provide.
type BuilderRegistry struct {
	mu     sync.RWMutex
	byName map[string]Builders
}

// NewBuilderRegistry creates an empty registry.
func NewBuilderRegistry() *BuilderRegistry {
	return &BuilderRegistry{byName: make(map[string]Builders)}
}

// Register binds a library name to its builders.
func (r *BuilderRegistry) Register(name string, b Builders) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = b
}

// Lookup resolves the builders registered under a library name.
func (r *BuilderRegistry) Lookup(name string) (Builders, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byName[name]
	return b, ok
}

// BuildLibraries pairs each manifest entry with its registered builders.
// Entries with no registration produce a library exporting nothing; the
// loader then fails bootstrap if such a library declares channels, and skips
// its extensions.
func BuildLibraries(m *manifest.ExtnManifest, reg *BuilderRegistry) []*Library {
	libraries := make([]*Library, 0, len(m.Libraries))
	for _, entry := range m.Libraries {
		var builders Builders
		if reg != nil {
			builders, _ = reg.Lookup(entry.Name)
		}
		libraries = append(libraries, NewLibrary(entry, builders.Channel, builders.Methods))
	}
	return libraries
}
