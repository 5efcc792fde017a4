// Package bootstrap wires the gateway together at boot: manifests, storage,
// extension loading, device bring-up, metrics initialization, and the serving
// loop.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fireboltd/fireboltd/internal/api"
	"github.com/fireboltd/fireboltd/pkg/broker"
	"github.com/fireboltd/fireboltd/pkg/config"
	"github.com/fireboltd/fireboltd/pkg/extn"
	"github.com/fireboltd/fireboltd/pkg/gateway"
	"github.com/fireboltd/fireboltd/pkg/handlers"
	"github.com/fireboltd/fireboltd/pkg/logging"
	"github.com/fireboltd/fireboltd/pkg/manifest"
	"github.com/fireboltd/fireboltd/pkg/metrics"
	"github.com/fireboltd/fireboltd/pkg/platform"
	"github.com/fireboltd/fireboltd/pkg/privacy"
	"github.com/fireboltd/fireboltd/pkg/storage"
	"github.com/fireboltd/fireboltd/pkg/telemetry"
)

// extnMessageBuffer sizes the channel extensions post gateway-bound messages
// on.
const extnMessageBuffer = 256

// Options collects everything Run needs beyond the config file: the loaded
// extension libraries, the device client used to seed the metrics context,
// and dialers for any configured broker endpoints.
type Options struct {
	Config        *config.Config
	Libraries     []*extn.Library
	Device        metrics.DeviceClient
	BrokerDialers map[string]broker.Dialer
	Logger        *slog.Logger
	Version       string
}

// Run boots the gateway and serves until the context is cancelled. Channel
// load failures abort; extension contribution failures are logged and
// dropped.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	device, err := manifest.FindDeviceManifest()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	var apps manifest.AppLibrary
	if cfg.AppLibrary != "" {
		lib, err := manifest.LoadAppLibrary(cfg.AppLibrary)
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		apps = lib
	}

	store, err := storage.OpenSQLite(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer store.Close()

	privacyStore, err := privacy.OpenStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	ps, err := platform.New(platform.Config{
		Device:     device,
		Apps:       apps,
		Storage:    store,
		Privacy:    privacyStore,
		Telemetry:  telemetry.NewService(logger),
		Logger:     logger,
		Version:    opts.Version,
		APIVersion: cfg.APIVersion,
	})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	// Load extensions. Channel failures are boot-time bugs and abort here.
	extnRx := make(chan extn.Message, extnMessageBuffer)
	result, err := extn.Load(opts.Libraries, extnRx, logger)
	if err != nil {
		return err
	}
	ps.Extn.Commit(result)

	// Device channels come up before any extension method is dispatchable.
	if err := ps.Extn.StartDeviceChannels(ctx); err != nil {
		return fmt.Errorf("%w: %v", extn.ErrBootstrap, err)
	}

	methods := result.Methods
	methods.Merge(handlers.UserGrantsMethods(ps), logger)
	gw := gateway.New(ps, methods)

	for _, doc := range result.OpenRPCs {
		if err := ps.OpenRPC.AddDocument(doc); err != nil {
			logger.Warn("dropping openrpc contribution", "error", err)
		}
	}

	for _, rule := range cfg.BrokerRules {
		ps.Broker.AddRule(rule)
	}
	for name, dialer := range opts.BrokerDialers {
		ps.Broker.RegisterEndpoint(ctx, name, dialer)
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return ps.Extn.StartDeferredChannels(ctx)
	})

	group.Go(func() error {
		ps.Metrics.Initialize(ctx, metrics.InitDeps{
			Device:    opts.Device,
			Internal:  &internalCaller{ps: ps},
			Storage:   store,
			Manifest:  device,
			SessionID: uuid.NewString(),
			Version:   opts.Version,
		})
		ps.Metrics.UpdateDataGovernanceTags(device.Configuration.DataGovernance, privacyStore.Settings())
		return nil
	})

	// Recompute governance tags whenever an external writer touches the
	// privacy settings file.
	watcher := privacy.NewWatcher(privacyStore, func(settings privacy.Settings) {
		ps.Metrics.UpdateDataGovernanceTags(device.Configuration.DataGovernance, settings)
	})
	watcher.SetLogger(logger)
	group.Go(func() error {
		if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("privacy watcher exited", "error", err)
		}
		return nil
	})

	// Pump extension-originated messages onto the gateway command channel.
	group.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg := <-extnRx:
				gw.Submit(gateway.HandleRpcForExtn{Msg: msg})
			}
		}
	})

	group.Go(func() error {
		gw.Start(ctx)
		return nil
	})

	server := api.NewServer(ps, gw, ps.Extn.DeviceReady)
	server.SetLogger(logger)
	if cfg.Auth != nil {
		server.SetAuthToken(cfg.Auth.Token)
	}

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	group.Go(func() error {
		logger.Info("gateway listening", "addr", cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		ps.Extn.CloseAll()
		return nil
	})

	return group.Wait()
}
