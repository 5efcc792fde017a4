package extn

import (
	"context"
	"fmt"
	"sync"
)

// State registers loaded channels. Ownership of channels transfers here from
// the loader at commit; the registries only grow during a boot.
type State struct {
	mu               sync.RWMutex
	deviceChannels   []PreloadedChannel
	deferredChannels []PreloadedChannel
	deviceReady      bool
}

// NewState creates an empty extension state.
func NewState() *State {
	return &State{}
}

// Commit appends a load result's channels to the registries.
func (s *State) Commit(result *LoadResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceChannels = append(s.deviceChannels, result.DeviceChannels...)
	s.deferredChannels = append(s.deferredChannels, result.DeferredChannels...)
}

// StartDeviceChannels starts every device channel in order. All device
// channels must be running before any deferred channel starts.
func (s *State) StartDeviceChannels(ctx context.Context) error {
	s.mu.Lock()
	channels := make([]PreloadedChannel, len(s.deviceChannels))
	copy(channels, s.deviceChannels)
	s.mu.Unlock()

	for _, c := range channels {
		if err := c.Channel.Start(ctx); err != nil {
			return fmt.Errorf("starting device channel %s: %w", c.ExtnID, err)
		}
	}

	s.mu.Lock()
	s.deviceReady = true
	s.mu.Unlock()
	return nil
}

// StartDeferredChannels starts the non-device channels. It refuses to run
// until device bring-up completed.
func (s *State) StartDeferredChannels(ctx context.Context) error {
	s.mu.RLock()
	ready := s.deviceReady
	channels := make([]PreloadedChannel, len(s.deferredChannels))
	copy(channels, s.deferredChannels)
	s.mu.RUnlock()

	if !ready {
		return fmt.Errorf("deferred channels before device bring-up: %w", ErrBootstrap)
	}
	for _, c := range channels {
		if err := c.Channel.Start(ctx); err != nil {
			return fmt.Errorf("starting deferred channel %s: %w", c.ExtnID, err)
		}
	}
	return nil
}

// DeviceReady reports whether device bring-up completed.
func (s *State) DeviceReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceReady
}

// DeviceChannelCount returns the number of registered device channels.
func (s *State) DeviceChannelCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deviceChannels)
}

// DeferredChannelCount returns the number of registered deferred channels.
func (s *State) DeferredChannelCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deferredChannels)
}

// CloseAll closes every registered channel, deferred first.
func (s *State) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.deferredChannels) - 1; i >= 0; i-- {
		_ = s.deferredChannels[i].Channel.Close()
	}
	for i := len(s.deviceChannels) - 1; i >= 0; i-- {
		_ = s.deviceChannels[i].Channel.Close()
	}
}
