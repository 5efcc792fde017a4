package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fireboltd/fireboltd/pkg/bootstrap"
	"github.com/fireboltd/fireboltd/pkg/config"
	"github.com/fireboltd/fireboltd/pkg/extn"
	"github.com/fireboltd/fireboltd/pkg/logging"
	"github.com/fireboltd/fireboltd/pkg/manifest"
	"github.com/fireboltd/fireboltd/pkg/output"
	"github.com/fireboltd/fireboltd/pkg/state"
)

var (
	runConfigPath string
	runLogFile    bool
)

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to fireboltd.yaml")
	runCmd.Flags().BoolVar(&runLogFile, "log-file", false, "log to ~/.fireboltd/logs with rotation")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the gateway daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running gateway daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := output.New()
		st, err := state.Load()
		if err != nil {
			if os.IsNotExist(err) {
				printer.Info("no daemon running")
				return nil
			}
			return err
		}
		if err := state.KillDaemon(st); err != nil {
			return err
		}
		if err := state.Delete(); err != nil {
			return err
		}
		printer.Info("daemon stopped", "pid", st.PID)
		return nil
	},
}

func runDaemon() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Redact: true,
	}
	if runLogFile || cfg.Log.File != "" {
		path := cfg.Log.File
		if path == "" {
			if err := state.EnsureLogDir(); err != nil {
				return err
			}
			path = state.LogPath()
		}
		logCfg.Output = logging.NewRotatingWriter(path)
	}
	logger := logging.New(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := bootstrap.SetupTracing(ctx, cfg.Trace, version)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	libraries, err := loadLibraries(cfg, logger)
	if err != nil {
		return err
	}

	if _, err := state.CheckAndClean(); err != nil {
		return err
	}
	daemonState := &state.DaemonState{
		ConfigFile: runConfigPath,
		PID:        os.Getpid(),
		Addr:       cfg.Listen,
		StartedAt:  time.Now(),
	}
	if err := state.Save(daemonState); err != nil {
		return err
	}
	defer func() { _ = state.Delete() }()

	return bootstrap.Run(ctx, bootstrap.Options{
		Config:    cfg,
		Libraries: libraries,
		Device:    deviceClient(),
		Logger:    logger,
		Version:   version,
	})
}

func loadConfig() (*config.Config, error) {
	if runConfigPath != "" {
		return config.Load(runConfigPath)
	}
	if _, err := os.Stat("fireboltd.yaml"); err == nil {
		runConfigPath = "fireboltd.yaml"
		return config.Load(runConfigPath)
	}
	return config.Default(), nil
}

// loadLibraries resolves the extension manifest against the compiled-in
// builder registry. No manifest means no extensions, which is a valid dev
// configuration.
func loadLibraries(cfg *config.Config, logger *slog.Logger) ([]*extn.Library, error) {
	if cfg.ExtnManifest == "" {
		logger.Warn("no extension manifest configured, loading no extensions")
		return nil, nil
	}
	m, err := manifest.LoadExtnManifest(cfg.ExtnManifest)
	if err != nil {
		return nil, fmt.Errorf("loading extension manifest: %w", err)
	}
	return extn.BuildLibraries(m, builderRegistry()), nil
}
