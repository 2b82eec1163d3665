// Package config loads infrastructure configuration from the
// environment and seed Group definitions from a YAML file, the same
// split the teacher uses between env-var infra config and a separate
// declarative data file.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aliyansayz/marketwatch/internal/model"
)

// Config holds all infrastructure configuration loaded from environment
// variables.
type Config struct {
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	FileStoreDir  string
	MetricsAddr   string

	GroupsSeedPath string

	ProviderTimeout time.Duration
	WorkerCapMax    int
}

// Load reads configuration from environment variables with sensible
// defaults. Unlike the teacher's vendor-credential config, nothing here
// is mandatory — every setting has a default, and the engine can start
// with an empty group set and no reachable Redis (synthetic provider).
// cmd/server always opens the SQLite alert history at SQLitePath.
func Load() *Config {
	return &Config{
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/alerts.db"),
		FileStoreDir:  getEnv("FILESTORE_DIR", "data/store"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),

		GroupsSeedPath: getEnv("GROUPS_SEED_PATH", ""),

		ProviderTimeout: getDuration("PROVIDER_TIMEOUT", 30*time.Second),
		WorkerCapMax:    getInt("WORKER_CAP_MAX", 8),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid duration for %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}

// seedGroup and seedSymbol mirror model.Group/model.SymbolConfig in a
// YAML-friendly shape with validator struct tags, decoupling the wire
// format from the domain struct layout the way a DTO would at an API
// boundary.
type seedGroup struct {
	ID          string        `yaml:"id" validate:"required"`
	Name        string        `yaml:"name" validate:"required"`
	Description string        `yaml:"description"`
	Enabled     bool          `yaml:"enabled"`
	Symbols     []seedSymbol  `yaml:"symbols" validate:"dive"`
}

type seedSymbol struct {
	Symbol     string `yaml:"symbol" validate:"required"`
	AssetClass string `yaml:"asset_class" validate:"required,oneof=forex stocks crypto indices futures"`
	Interval   string `yaml:"interval" validate:"required"`
	Period     string `yaml:"period" validate:"required"`
	Enabled    bool   `yaml:"enabled"`
}

type seedFile struct {
	Groups []seedGroup `yaml:"groups" validate:"dive"`
}

// LoadSeedGroups reads and validates Group definitions from a YAML file.
// An empty path is a no-op (returns no groups, no error) — seeding is
// optional, groups can also be created at runtime through the
// groupmodel.Manager API.
func LoadSeedGroups(path string) ([]*model.Group, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %q: %w", path, err)
	}

	var parsed seedFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse seed file %q: %w", path, err)
	}

	v := validator.New()
	if err := v.Struct(&parsed); err != nil {
		return nil, fmt.Errorf("validate seed file %q: %w", path, err)
	}

	groups := make([]*model.Group, 0, len(parsed.Groups))
	for _, sg := range parsed.Groups {
		g := model.NewGroup(sg.ID, sg.Name)
		g.Description = sg.Description
		g.Enabled = sg.Enabled
		for _, s := range sg.Symbols {
			g.AddMember(model.SymbolConfig{
				Symbol:     s.Symbol,
				AssetClass: model.AssetClass(s.AssetClass),
				Interval:   model.Interval(s.Interval),
				Period:     model.Period(s.Period),
				Enabled:    s.Enabled,
			})
		}
		groups = append(groups, g)
	}
	return groups, nil
}
