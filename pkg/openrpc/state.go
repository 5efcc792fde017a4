package openrpc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/fireboltd/fireboltd/pkg/logging"
)

// State holds the dispatch table and the OpenRPC schemas. The table is
// replaced wholesale on update; schemas are append-only within a boot.
type State struct {
	mu         sync.RWMutex
	table      MethodTable
	major      string
	validators map[string]map[string]*jsonschema.Resolved // major -> method -> validator
	logger     *slog.Logger
}

// NewState creates an empty State pinned to the given API version
// ("2.0.0"-style; its major component keys validator lookups).
func NewState(version string) (*State, error) {
	doc := Document{Version: version}
	major, err := doc.MajorVersion()
	if err != nil {
		return nil, err
	}
	return &State{
		table:      make(MethodTable),
		major:      major,
		validators: make(map[string]map[string]*jsonschema.Resolved),
		logger:     logging.NewDiscardLogger(),
	}, nil
}

// SetLogger sets the logger for schema events.
func (s *State) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// MajorVersion returns the major version key used for validator lookups.
func (s *State) MajorVersion() string { return s.major }

// UpdateMethods atomically replaces the dispatch table.
func (s *State) UpdateMethods(table MethodTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
}

// MethodByName looks up a handler by normalized method name.
func (s *State) MethodByName(name string) (Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.table[name]
	return h, ok
}

// MethodCount returns the number of dispatchable methods.
func (s *State) MethodCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table)
}

// AddDocument folds an OpenRPC contribution into the schema state, compiling
// a validator per declared method. Methods without a params schema validate
// vacuously and are not registered.
func (s *State) AddDocument(doc *Document) error {
	major, err := doc.MajorVersion()
	if err != nil {
		return err
	}

	compiled := make(map[string]*jsonschema.Resolved, len(doc.Methods))
	for _, m := range doc.Methods {
		if len(m.Params) == 0 {
			continue
		}
		var schema jsonschema.Schema
		if err := json.Unmarshal(m.Params, &schema); err != nil {
			return fmt.Errorf("method %s: parsing params schema: %w", m.Name, err)
		}
		resolved, err := schema.Resolve(nil)
		if err != nil {
			return fmt.Errorf("method %s: resolving params schema: %w", m.Name, err)
		}
		compiled[m.Name] = resolved
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.validators[major] == nil {
		s.validators[major] = make(map[string]*jsonschema.Resolved)
	}
	for name, v := range compiled {
		if _, ok := s.validators[major][name]; ok {
			s.logger.Warn("duplicate schema entry replaced", "method", name, "major", major)
		}
		s.validators[major][name] = v
	}
	return nil
}

// ParamsValidator returns the compiled params validator for a method under
// the given major version.
func (s *State) ParamsValidator(major, method string) (*jsonschema.Resolved, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.validators[major][method]
	return v, ok
}

// HasSchema reports whether the method is declared in the schema state under
// the current major version.
func (s *State) HasSchema(method string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.validators[s.major][method]
	return ok
}
