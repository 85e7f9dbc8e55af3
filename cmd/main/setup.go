package main

import (
	"biometric-insights/src/config"
	datasource "biometric-insights/src/data_source"
	"biometric-insights/src/data_source/csv"
	"biometric-insights/src/helpers"
	"biometric-insights/src/interfaces"
	"biometric-insights/src/logger"
	"biometric-insights/src/pipeline"
	"biometric-insights/src/storage"
)

// -----------------------------------------------------------------------------

// setupConfig loads the YAML config named by --config
func setupConfig() (*config.Config, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError("failed to load config", err)
	}
	return cfg, nil
}

// -----------------------------------------------------------------------------

// setupStore opens the report history store. It returns nil when persistence
// is disabled.
func setupStore(cfg *config.Config, appLogger *logger.Logger) (interfaces.IReportStore, error) {
	store, err := storage.Open(cfg.MConfig, appLogger)
	if err != nil {
		appLogger.Error("Failed to init report store: %v", err)
		return nil, err
	}
	return store, nil
}

// -----------------------------------------------------------------------------

// setupLoader wires the CSV reader into the multi-source loader
func setupLoader(cfg *config.Config) (*datasource.MultiSourceLoader, error) {
	reader := csv.NewCSVReader(logger.NewLogger(cfg, "CSVReader"))
	return datasource.NewMultiSourceLoader(cfg.Archive.Patterns, reader, logger.NewLogger(cfg, "SourceLoader"))
}

// -----------------------------------------------------------------------------

// setupPipeline builds the pipeline and resolves the profile directory. The
// returned cleanup closes the store.
func setupPipeline(cfg *config.Config, appLogger *logger.Logger) (*pipeline.Pipeline, string, func(), error) {
	profileDir, err := pipeline.ResolveProfileDir(cfg.Archive, profileName)
	if err != nil {
		return nil, "", nil, err
	}

	loader, err := setupLoader(cfg)
	if err != nil {
		return nil, "", nil, helpers.NewConfigurationError("invalid source patterns", err)
	}

	store, err := setupStore(cfg, appLogger)
	if err != nil {
		return nil, "", nil, err
	}

	cleanup := func() {
		if store == nil {
			return
		}
		if err := store.Close(); err != nil {
			appLogger.Warning("Failed to close report store: %v", err)
		}
	}

	p := pipeline.NewPipeline(cfg.MConfig, loader, store, logger.NewLogger(cfg, "Pipeline"))
	return p, profileDir, cleanup, nil
}
