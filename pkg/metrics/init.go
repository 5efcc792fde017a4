package metrics

import (
	"context"
	"math/rand"

	"github.com/fireboltd/fireboltd/pkg/manifest"
	"github.com/fireboltd/fireboltd/pkg/storage"
)

// FirmwareInfo is the firmware identity reported by the device channel.
type FirmwareInfo struct {
	Name    string
	Version string
}

// DeviceClient sources device identity from the device extension.
type DeviceClient interface {
	MacAddress(ctx context.Context) (string, error)
	SerialNumber(ctx context.Context) (string, error)
	Model(ctx context.Context) (string, error)
	FirmwareInfo(ctx context.Context) (FirmwareInfo, error)
}

// InternalCaller invokes an internal gateway method and returns its result
// decoded as a string. The daemon wires this to the router.
type InternalCaller interface {
	CallInternal(ctx context.Context, method string) (string, error)
}

// InitDeps are the collaborators the initialization pipeline reads from.
type InitDeps struct {
	Device   DeviceClient
	Internal InternalCaller
	Storage  storage.Store
	Manifest *manifest.DeviceManifest

	SessionID string
	Version   string

	// RandomPercent draws the metrics sampling number in [1,100]. Left nil,
	// a uniform draw is used; tests pin it.
	RandomPercent func() int
}

// Initialize populates the context once at boot, after extensions are
// loaded: sampling decision, device identity, locale, account profile from
// persistent storage. The context is written under one lock acquisition and
// broadcast exactly once.
func (s *State) Initialize(ctx context.Context, deps InitDeps) {
	draw := deps.RandomPercent
	if draw == nil {
		draw = func() int { return rand.Intn(100) + 1 }
	}
	percentage := deps.Manifest.Configuration.MetricsLoggingPercentage
	randomNumber := draw()
	enabled := randomNumber <= percentage
	s.logger.Debug("metrics sampling",
		"percentage", percentage, "random_number", randomNumber, "enabled", enabled)

	macAddress := s.deviceString(ctx, deps.Device.MacAddress)
	serialNumber := s.deviceString(ctx, deps.Device.SerialNumber)
	deviceModel := s.deviceString(ctx, deps.Device.Model)
	if macAddress == "" {
		macAddress = Unset("mac_address")
	}
	if serialNumber == "" {
		serialNumber = Unset("serial_number")
	}
	if deviceModel == "" {
		deviceModel = Unset("device_model")
	}

	osInfo, err := deps.Device.FirmwareInfo(ctx)
	if err != nil {
		osInfo = FirmwareInfo{Name: Unset("os.name"), Version: Unset("os.ver")}
	}

	language := s.internalString(ctx, deps.Internal, "localization.language", Unset("language"))
	osVersion := s.internalString(ctx, deps.Internal, "ripple.device_os_version", "not.set")
	deviceName := s.internalString(ctx, deps.Internal, "device.name", Unset("device.name"))
	country := s.internalString(ctx, deps.Internal, "localization.countryCode", "")

	proposition := s.storeString(ctx, deps.Storage, storage.KeyProposition)
	if proposition == "" {
		proposition = "Proposition.missing.from.persistent.store"
	}
	retailer := s.storeString(ctx, deps.Storage, storage.KeyRetailer)
	primaryProvider := s.storeString(ctx, deps.Storage, storage.KeyPrimaryProvider)
	coam := s.storeBool(ctx, deps.Storage, storage.KeyCoam)
	accountType := s.storeString(ctx, deps.Storage, storage.KeyAccountType)
	operator := s.storeString(ctx, deps.Storage, storage.KeyOperator)
	accountDetailType := s.storeString(ctx, deps.Storage, storage.KeyAccountDetailType)

	deviceType := s.storeString(ctx, deps.Storage, storage.KeyDeviceType)
	if deviceType == "" {
		deviceType = deps.Manifest.FormFactor()
	}

	deviceManufacturer := s.storeString(ctx, deps.Storage, storage.KeyDeviceManufacturer)
	if deviceManufacturer == "" {
		deviceManufacturer = s.internalString(ctx, deps.Internal, "device.make", Unset("device.make"))
	}

	s.mu.Lock()
	s.context.Enabled = enabled
	if macAddress != "" {
		s.context.MacAddress = macAddress
	}
	if serialNumber != "" {
		s.context.SerialNumber = serialNumber
	}
	if deviceModel != "" {
		s.context.DeviceModel = deviceModel
	}
	s.context.DeviceLanguage = language
	s.context.OSName = osInfo.Name
	s.context.OSVersion = osVersion
	s.context.DeviceName = deviceName
	s.context.DeviceSessionID = deps.SessionID
	s.context.Firmware = osInfo.Name
	s.context.GatewayVersion = deps.Version
	s.context.Activated = true
	s.context.Authenticated = true
	s.context.Proposition = proposition
	s.context.Retailer = retailer
	s.context.PrimaryProvider = primaryProvider
	s.context.Platform = proposition
	s.context.Coam = coam
	s.context.Country = country
	s.context.AccountType = accountType
	s.context.Operator = operator
	s.context.AccountDetailType = accountDetailType
	s.context.DeviceType = deviceType
	s.context.DeviceManufacturer = deviceManufacturer
	s.mu.Unlock()

	s.broadcast()
}

// deviceString reads one device field, logging and returning "" on failure.
func (s *State) deviceString(ctx context.Context, get func(context.Context) (string, error)) string {
	value, err := get(ctx)
	if err != nil {
		s.logger.Error("device info unavailable", "error", err)
		return ""
	}
	return value
}

// internalString calls an internal method with a fallback on failure or an
// empty result.
func (s *State) internalString(ctx context.Context, caller InternalCaller, method, fallback string) string {
	if caller == nil {
		return fallback
	}
	value, err := caller.CallInternal(ctx, method)
	if err != nil || value == "" {
		if err != nil {
			s.logger.Error("internal method failed", "method", method, "error", err)
		}
		return fallback
	}
	return value
}

// storeString reads an accountProfile string, returning "" on absence.
func (s *State) storeString(ctx context.Context, store storage.Store, key string) string {
	if store == nil {
		return ""
	}
	value, err := store.GetString(ctx, storage.NamespaceAccountProfile, key)
	if err != nil {
		s.logger.Debug("persistent store value missing", "key", key, "error", err)
		return ""
	}
	return value
}

// storeBool reads an accountProfile bool, returning nil on absence.
func (s *State) storeBool(ctx context.Context, store storage.Store, key string) *bool {
	if store == nil {
		return nil
	}
	value, err := store.GetBool(ctx, storage.NamespaceAccountProfile, key)
	if err != nil {
		s.logger.Debug("persistent store value missing", "key", key, "error", err)
		return nil
	}
	return &value
}
