package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment override, e.g.
// FLOWBACK_INPUT_ROOT.
const EnvPrefix = "flowback"

// envOverrides are the settings operators commonly change per host without
// editing the config file. Empty/zero values leave the file's value alone.
type envOverrides struct {
	InputRoot   string `envconfig:"INPUT_ROOT"`
	OutputDir   string `envconfig:"OUTPUT_DIR"`
	FixDir      string `envconfig:"FIX_DIR"`
	StorageKind string `envconfig:"STORAGE_KIND"`
	StorageDSN  string `envconfig:"STORAGE_DSN"`
	LockPath    string `envconfig:"LOCK_PATH"`
	FileWorkers int    `envconfig:"FILE_WORKERS"`
}

// ApplyEnv overlays FLOWBACK_* environment variables onto c.
func ApplyEnv(c Config) (Config, error) {
	var ov envOverrides
	if err := envconfig.Process(EnvPrefix, &ov); err != nil {
		return c, fmt.Errorf("env overrides: %w", err)
	}
	if ov.InputRoot != "" {
		c.Input.Root = ov.InputRoot
	}
	if ov.OutputDir != "" {
		c.Output.Dir = ov.OutputDir
	}
	if ov.FixDir != "" {
		c.Merge.FixDir = ov.FixDir
	}
	if ov.StorageKind != "" {
		c.Storage.Kind = ov.StorageKind
	}
	if ov.StorageDSN != "" {
		c.Storage.DSN = ov.StorageDSN
	}
	if ov.LockPath != "" {
		c.Storage.LockPath = ov.LockPath
	}
	if ov.FileWorkers > 0 {
		c.Runtime.FileWorkers = ov.FileWorkers
	}
	return c, nil
}
