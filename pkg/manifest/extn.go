package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// SymbolKind partitions a library's declared symbols: channels host device
// I/O and must load; extensions contribute methods and may be skipped.
type SymbolKind string

const (
	SymbolChannel   SymbolKind = "channel"
	SymbolExtension SymbolKind = "extension"
)

// Symbol is one declared entry in a library's symbol table.
type Symbol struct {
	ID   string     `json:"id"`
	Kind SymbolKind `json:"kind"`
	Uses []string   `json:"uses,omitempty"`
}

// LibraryEntry declares one loadable extension library and its symbols.
type LibraryEntry struct {
	Path    string   `json:"path"`
	Name    string   `json:"name"`
	Symbols []Symbol `json:"symbols"`
}

// Channels returns the library's channel symbols in declaration order.
func (e LibraryEntry) Channels() []Symbol {
	return e.symbolsOf(SymbolChannel)
}

// Extensions returns the library's extension symbols in declaration order.
func (e LibraryEntry) Extensions() []Symbol {
	return e.symbolsOf(SymbolExtension)
}

func (e LibraryEntry) symbolsOf(kind SymbolKind) []Symbol {
	var out []Symbol
	for _, s := range e.Symbols {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// ExtnManifest is the ordered list of extension libraries to load at boot.
type ExtnManifest struct {
	Libraries []LibraryEntry `json:"libraries"`
}

// LoadExtnManifest reads an extension manifest from path.
func LoadExtnManifest(path string) (*ExtnManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extension manifest: %w", err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("normalizing extension manifest %s: %w", path, err)
	}
	var m ExtnManifest
	if err := json.Unmarshal(std, &m); err != nil {
		return nil, fmt.Errorf("parsing extension manifest %s: %w", path, err)
	}
	return &m, nil
}
