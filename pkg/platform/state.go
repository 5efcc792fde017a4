// Package platform bundles the shared state every gateway subsystem reads:
// sessions, the method catalog, extension registries, grants, metrics, and
// the brokerage facade. There is no process-wide singleton; tests build
// independent states.
package platform

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fireboltd/fireboltd/pkg/appevents"
	"github.com/fireboltd/fireboltd/pkg/broker"
	"github.com/fireboltd/fireboltd/pkg/capability"
	"github.com/fireboltd/fireboltd/pkg/extn"
	"github.com/fireboltd/fireboltd/pkg/grants"
	"github.com/fireboltd/fireboltd/pkg/logging"
	"github.com/fireboltd/fireboltd/pkg/manifest"
	"github.com/fireboltd/fireboltd/pkg/metrics"
	"github.com/fireboltd/fireboltd/pkg/openrpc"
	"github.com/fireboltd/fireboltd/pkg/privacy"
	"github.com/fireboltd/fireboltd/pkg/rpc"
	"github.com/fireboltd/fireboltd/pkg/session"
	"github.com/fireboltd/fireboltd/pkg/storage"
	"github.com/fireboltd/fireboltd/pkg/telemetry"
)

// BridgeSender delivers a reply to a named out-of-band bridge.
type BridgeSender interface {
	SendToBridge(targetID string, msg rpc.ApiMessage) error
}

// State is the shared platform state. Subsystems that need only a slice of
// it should hold the narrow field, not the whole value.
type State struct {
	Sessions  *session.Registry
	OpenRPC   *openrpc.State
	Extn      *extn.State
	Grants    *grants.State
	Metrics   *metrics.State
	Broker    *broker.EndpointState
	AppEvents *appevents.Registry
	Telemetry *telemetry.Service

	Device  *manifest.DeviceManifest
	Apps    manifest.AppLibrary
	Storage storage.Store
	Privacy *privacy.Store

	Logger  *slog.Logger
	Version string

	mu           sync.RWMutex
	bridges      map[string]BridgeSender
	availability map[capability.Capability]bool
}

// Config collects the collaborators a State is built from.
type Config struct {
	Device    *manifest.DeviceManifest
	Apps      manifest.AppLibrary
	Storage   storage.Store
	Privacy   *privacy.Store
	Telemetry *telemetry.Service
	Logger    *slog.Logger
	Version   string
	// APIVersion keys schema validators by major version. Defaults to
	// "1.0.0".
	APIVersion string
}

// New builds a platform state with fresh registries.
func New(cfg Config) (*State, error) {
	if cfg.Device == nil {
		return nil, fmt.Errorf("platform: device manifest is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	tel := cfg.Telemetry
	if tel == nil {
		tel = telemetry.NewService(logger)
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "1.0.0"
	}
	openRPC, err := openrpc.NewState(apiVersion)
	if err != nil {
		return nil, err
	}
	openRPC.SetLogger(logger)

	metricsState := metrics.NewState()
	metricsState.SetLogger(logger)

	brokerState := broker.NewEndpointState()
	brokerState.SetLogger(logger)

	return &State{
		Sessions:     session.NewRegistry(),
		OpenRPC:      openRPC,
		Extn:         extn.NewState(),
		Grants:       grants.NewState(),
		Metrics:      metricsState,
		Broker:       brokerState,
		AppEvents:    appevents.NewRegistry(),
		Telemetry:    tel,
		Device:       cfg.Device,
		Apps:         cfg.Apps,
		Storage:      cfg.Storage,
		Privacy:      cfg.Privacy,
		Logger:       logger,
		Version:      cfg.Version,
		bridges:      make(map[string]BridgeSender),
		availability: make(map[capability.Capability]bool),
	}, nil
}

// RegisterBridge registers a named bridge sender.
func (s *State) RegisterBridge(targetID string, sender BridgeSender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bridges[targetID] = sender
}

// SendToBridge forwards a reply to a named bridge.
func (s *State) SendToBridge(targetID string, msg rpc.ApiMessage) error {
	s.mu.RLock()
	sender, ok := s.bridges[targetID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("platform: unknown bridge %q", targetID)
	}
	return sender.SendToBridge(targetID, msg)
}

// SetAvailable overrides the runtime availability of a device-provided
// capability.
func (s *State) SetAvailable(cap capability.Capability, available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.availability[cap] = available
}

// IsAvailable reports the capability's current availability: the runtime
// override when set, otherwise the manifest declaration.
func (s *State) IsAvailable(cap capability.Capability) bool {
	s.mu.RLock()
	if v, ok := s.availability[cap]; ok {
		s.mu.RUnlock()
		return v
	}
	s.mu.RUnlock()
	return s.Device.CapabilityPolicy(cap.String()).Available
}
