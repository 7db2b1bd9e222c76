package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	domainConfig "github.com/webmasterarbez/elaoms/pkg/domain/model/config"
	"github.com/webmasterarbez/elaoms/pkg/domain/types"
)

// AppConfig represents the application configuration file
type AppConfig struct {
	Salience SalienceConfig `toml:"salience"`
}

// SalienceConfig overrides the data-collection field to tier mapping
type SalienceConfig struct {
	// ReplaceDefaults drops the built-in mapping instead of extending it
	ReplaceDefaults bool     `toml:"replace_defaults"`
	High            []string `toml:"high"`
	Medium          []string `toml:"medium"`
	Low             []string `toml:"low"`
}

func (s *SalienceConfig) tiers() map[types.SalienceTier][]string {
	return map[types.SalienceTier][]string{
		types.SalienceHigh:   s.High,
		types.SalienceMedium: s.Medium,
		types.SalienceLow:    s.Low,
	}
}

// Validate checks if the SalienceConfig is valid
func (s *SalienceConfig) Validate() error {
	seen := make(map[string]types.SalienceTier)
	for _, tier := range types.AllSalienceTiers() {
		for _, raw := range s.tiers()[tier] {
			key := domainConfig.NormalizeFieldKey(raw)
			if err := types.FieldKey(key).Validate(); err != nil {
				return goerr.Wrap(ErrInvalidFieldKey, "invalid salience field",
					goerr.V(FieldKey, raw), goerr.V(TierKey, tier), goerr.V("cause", err.Error()))
			}
			if prev, ok := seen[key]; ok {
				return goerr.Wrap(ErrDuplicateField, "duplicate salience field",
					goerr.V(FieldKey, key), goerr.V(TierKey, tier), goerr.V("previous_tier", prev))
			}
			seen[key] = tier
		}
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := a.Salience.Validate(); err != nil {
		return goerr.Wrap(err, "invalid salience configuration")
	}
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToDomainSalienceTable converts the salience section to the domain table
func (a *AppConfig) ToDomainSalienceTable() *domainConfig.SalienceTable {
	fields := make(map[string]types.SalienceTier)
	for tier, keys := range a.Salience.tiers() {
		for _, key := range keys {
			fields[key] = tier
		}
	}
	return domainConfig.NewSalienceTable(fields, !a.Salience.ReplaceDefaults)
}

// Salience holds the path of the optional salience configuration file
type Salience struct {
	path string
}

// Flags returns CLI flags for the salience configuration
func (x *Salience) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "salience-config",
			Category:    "Memory",
			Usage:       "TOML file overriding the field to salience tier mapping",
			Sources:     cli.EnvVars("ELAOMS_SALIENCE_CONFIG"),
			Destination: &x.path,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Salience) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads the salience table. The built-in table is returned when no
// file is configured.
func (x *Salience) Configure() (*domainConfig.SalienceTable, error) {
	if x.path == "" {
		return domainConfig.DefaultSalienceTable(), nil
	}

	cfg, err := LoadAppConfiguration(x.path)
	if err != nil {
		return nil, err
	}
	return cfg.ToDomainSalienceTable(), nil
}

// SortedFields returns the keys of table grouped by tier, each group sorted
func SortedFields(table *domainConfig.SalienceTable) map[types.SalienceTier][]string {
	out := make(map[types.SalienceTier][]string)
	for key, tier := range table.Fields() {
		out[tier] = append(out[tier], key)
	}
	for tier := range out {
		slices.Sort(out[tier])
	}
	return out
}
