package bootstrap

import (
	"fmt"

	"github.com/henryhillproductions-afk/mixrefresh-backend/common/config"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/logger"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/storage"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/telemetry"
)

// Setup initializes all service components
// This is the main entry point for the service binary and for tests that
// want a fully wired stack
func Setup(serviceName string, opts ...Option) (*Components, error) {
	// Apply options
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", components.Config.Service.Environment,
	)

	// 3. Initialize storage
	components.Store, err = storage.New(components.Config.Storage.UploadDir, components.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Clear out staging files a previous crash may have left behind,
	// and sweep again on shutdown
	if _, err := components.Store.SweepStaging(); err != nil {
		components.Logger.Warn("staging sweep failed", "error", err)
	}
	components.addCleanup(func() error {
		_, err := components.Store.SweepStaging()
		return err
	})

	// 4. Initialize telemetry (if not skipped)
	if !options.skipTelemetry && components.Config.Telemetry.EnablePprof {
		components.Logger.Info("initializing telemetry")
		components.Telemetry = telemetry.New(
			components.Config.Telemetry.PprofPort,
			components.Logger,
		)
		components.Telemetry.Start()
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"upload_dir", components.Store.Path(),
		"telemetry", components.Telemetry != nil,
	)

	return components, nil
}

// MustSetup is like Setup but panics on error
// Useful for services that can't recover from initialization failure
func MustSetup(serviceName string, opts ...Option) *Components {
	components, err := Setup(serviceName, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to setup service %s: %v", serviceName, err))
	}
	return components
}
