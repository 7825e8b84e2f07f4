package cli

import (
	"fmt"

	"github.com/Uvecodes/daypool/internal/config"
	"github.com/Uvecodes/daypool/internal/engine"
	"github.com/Uvecodes/daypool/internal/pool"
	"github.com/Uvecodes/daypool/internal/store"
)

// loadConfig resolves effective configuration: environment (plus .env)
// first, then flag overrides. A --pools flag satisfies the otherwise
// required DAYPOOL_POOLS variable.
func loadConfig(opts *RootOptions) (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		if opts.PoolsDir == "" {
			return nil, WrapExitError(ExitCommandError, "configuration", err)
		}
		cfg = &config.AppConfig{
			DatabasePath: config.DefaultDatabasePath,
			LogLevel:     config.DefaultLogLevel,
			RetrySpec:    config.DefaultRetrySpec,
		}
	}
	if opts.DBPath != "" {
		cfg.DatabasePath = opts.DBPath
	}
	if opts.PoolsDir != "" {
		cfg.PoolsDir = opts.PoolsDir
	}
	configureLogging(opts.Verbose, cfg.LogLevel)
	return cfg, nil
}

// openStore opens the profile database.
func openStore(cfg *config.AppConfig) (*store.Store, error) {
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("open database %s", cfg.DatabasePath), err)
	}
	return st, nil
}

// openService wires a full engine service from the effective config.
// The returned closer releases the underlying database.
func openService(opts *RootOptions) (*engine.Service, func(), error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := openCatalog(cfg)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	svc := engine.NewService(st, catalog)
	return svc, func() { st.Close() }, nil
}

// openCatalog loads and compiles the content catalog.
func openCatalog(cfg *config.AppConfig) (*pool.Catalog, error) {
	catalog, errs := pool.LoadDir(cfg.PoolsDir)
	if len(errs) > 0 {
		return nil, WrapExitError(ExitCommandError,
			fmt.Sprintf("load catalog %s: %v", cfg.PoolsDir, errs[0]), errs[0])
	}
	return catalog, nil
}
