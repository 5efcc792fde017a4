// Package metrics maintains the shared read-mostly metrics context: device
// identity, account binding, locale, and data-governance tags. The context is
// populated once at boot and touched again only on account, session, or
// privacy-setting events.
package metrics

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fireboltd/fireboltd/pkg/logging"
)

// Context is the wide record stamped onto outbound telemetry.
type Context struct {
	Enabled            bool     `json:"enabled"`
	MacAddress         string   `json:"macAddress,omitempty"`
	SerialNumber       string   `json:"serialNumber,omitempty"`
	DeviceModel        string   `json:"deviceModel,omitempty"`
	DeviceLanguage     string   `json:"deviceLanguage,omitempty"`
	OSName             string   `json:"osName,omitempty"`
	OSVersion          string   `json:"osVersion,omitempty"`
	DeviceName         string   `json:"deviceName,omitempty"`
	DeviceSessionID    string   `json:"deviceSessionId,omitempty"`
	Firmware           string   `json:"firmware,omitempty"`
	GatewayVersion     string   `json:"gatewayVersion,omitempty"`
	Activated          bool     `json:"activated"`
	Authenticated      bool     `json:"authenticated"`
	Proposition        string   `json:"proposition,omitempty"`
	Retailer           string   `json:"retailer,omitempty"`
	PrimaryProvider    string   `json:"primaryProvider,omitempty"`
	Platform           string   `json:"platform,omitempty"`
	Coam               *bool    `json:"coam,omitempty"`
	Country            string   `json:"country,omitempty"`
	Region             string   `json:"region,omitempty"`
	AccountType        string   `json:"accountType,omitempty"`
	Operator           string   `json:"operator,omitempty"`
	AccountDetailType  string   `json:"accountDetailType,omitempty"`
	DeviceType         string   `json:"deviceType,omitempty"`
	DeviceManufacturer string   `json:"deviceManufacturer,omitempty"`
	AccountID          string   `json:"accountId,omitempty"`
	DeviceID           string   `json:"deviceId,omitempty"`
	DistributionTenant string   `json:"distributionTenantId,omitempty"`
	DataGovernanceTags []string `json:"dataGovernanceTags,omitempty"`
}

// Broadcaster receives a copy of the context after each rewrite so interested
// subsystems (extensions, telemetry sinks) stay current.
type Broadcaster interface {
	ContextUpdated(ctx Context)
}

// apiStatsSizeWarning is where the in-flight stats map starts logging; a map
// this large means requests are leaking without a terminal outcome.
const apiStatsSizeWarning = 10

// State owns the metrics context plus the per-request API stats map and the
// operational telemetry listener set.
type State struct {
	StartTime time.Time

	mu        sync.RWMutex
	context   Context
	listeners map[string]struct{}
	apiStats  map[string]*ApiStats

	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewState creates an empty metrics state.
func NewState() *State {
	return &State{
		StartTime: time.Now(),
		listeners: make(map[string]struct{}),
		apiStats:  make(map[string]*ApiStats),
		logger:    logging.NewDiscardLogger(),
	}
}

// SetLogger sets the logger for metrics events.
func (s *State) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetBroadcaster wires the context-update broadcast target.
func (s *State) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// GetContext returns a snapshot of the context.
func (s *State) GetContext() Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.context
}

// broadcast sends the current context to the broadcaster, if any.
func (s *State) broadcast() {
	s.mu.RLock()
	b := s.broadcaster
	ctx := s.context
	s.mu.RUnlock()
	if b != nil {
		b.ContextUpdated(ctx)
	}
}

// UpdateSessionID rewrites the device session id and rebroadcasts.
func (s *State) UpdateSessionID(sessionID string) {
	s.mu.Lock()
	s.context.DeviceSessionID = sessionID
	s.mu.Unlock()
	s.broadcast()
}

// AccountSession is the account binding applied on account events.
type AccountSession struct {
	AccountID string
	DeviceID  string
	TenantID  string
}

// UpdateAccountSession rewrites the account binding and rebroadcasts. A nil
// session clears the binding.
func (s *State) UpdateAccountSession(session *AccountSession) {
	s.mu.Lock()
	if session != nil {
		s.context.AccountID = session.AccountID
		s.context.DeviceID = session.DeviceID
		s.context.DistributionTenant = session.TenantID
	} else {
		s.context.AccountID = ""
		s.context.DeviceID = ""
		s.context.DistributionTenant = Unset("distribution_tenant_id")
	}
	s.mu.Unlock()
	s.broadcast()
}

// OperationalTelemetryListener adds or removes a listener target.
func (s *State) OperationalTelemetryListener(target string, listen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if listen {
		s.listeners[target] = struct{}{}
	} else {
		delete(s.listeners, target)
	}
}

// Listeners returns the registered listener targets.
func (s *State) Listeners() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.listeners))
	for t := range s.listeners {
		out = append(out, t)
	}
	return out
}

// Unset renders the sentinel value recorded when a field could not be
// sourced.
func Unset(field string) string {
	return fmt.Sprintf("%s.unset", field)
}
