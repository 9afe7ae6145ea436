package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tailscale/hujson"
)

// ConfigFileName is the default config file, looked up in the working
// directory when --config is not given.
const ConfigFileName = ".lumen.json"

// Config holds the CLI's settings. The file format is HuJSON, so configs
// may carry comments and trailing commas.
type Config struct {
	Addr            string `json:"addr"`
	DBPath          string `json:"db_path"`
	FixtureDir      string `json:"fixture_dir,omitempty"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds,omitempty"`
}

var (
	errConfigFileRead = errors.New("cannot read config file")
	errConfigInvalid  = errors.New("invalid config file")
	errNoDataSource   = errors.New("either db_path or fixture_dir must be set")
)

// DefaultConfig returns the defaults applied before any file or
// environment value.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		DBPath:          "warehouse.db",
		CacheTTLSeconds: int(time.Hour / time.Second),
	}
}

// LoadConfig resolves configuration with precedence (highest wins):
// defaults, config file, environment. Flag overrides are applied by the
// caller after parsing.
func LoadConfig(configPath string) (Config, error) {
	cfg := DefaultConfig()

	path := configPath
	explicit := path != ""
	if path == "" {
		path = ConfigFileName
	}

	fileCfg, loaded, err := loadConfigFile(path, explicit)
	if err != nil {
		return Config{}, err
	}
	if loaded {
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg = applyEnv(cfg)

	if cfg.DBPath == "" && cfg.FixtureDir == "" {
		return Config{}, errNoDataSource
	}
	return cfg, nil
}

// loadConfigFile reads and parses a HuJSON config file. A missing file is
// only an error when the path was given explicitly.
func loadConfigFile(path string, explicit bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("%w: %s: %v", errConfigFileRead, path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w: %s: %v", errConfigInvalid, path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("%w: %s: %v", errConfigInvalid, path, err)
	}
	return cfg, true, nil
}

func mergeConfig(base, override Config) Config {
	if override.Addr != "" {
		base.Addr = override.Addr
	}
	if override.DBPath != "" {
		base.DBPath = override.DBPath
	}
	if override.FixtureDir != "" {
		base.FixtureDir = override.FixtureDir
	}
	if override.CacheTTLSeconds > 0 {
		base.CacheTTLSeconds = override.CacheTTLSeconds
	}
	return base
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv("LUMEN_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("LUMEN_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LUMEN_FIXTURE_DIR"); v != "" {
		cfg.FixtureDir = v
	}
	if v := os.Getenv("LUMEN_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTLSeconds = n
		}
	}
	return cfg
}

// CacheTTL returns the configured TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
