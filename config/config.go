// Package config loads the service configuration from a YAML or JSON file
// with K_ prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/fleetcare/core/factory"
	"github.com/kilianp07/fleetcare/core/fleet"
	"github.com/kilianp07/fleetcare/core/metrics"
	"github.com/kilianp07/fleetcare/core/prediction"
	"github.com/kilianp07/fleetcare/infra/monitoring"
	"github.com/kilianp07/fleetcare/infra/store"
)

var defaultSink = factory.ModuleConfig{Type: "prometheus"}

type Config struct {
	HTTP    HTTPConfig              `json:"http"`
	Store   store.Config            `json:"store"`
	Engine  prediction.Config       `json:"engine"`
	Reports fleet.ReportConfig      `json:"reports"`
	Metrics metrics.Config          `json:"metrics"`
	Alerts  AlertsConfig            `json:"alerts"`
	Logging LoggingConfig           `json:"logging"`
	Sentry  monitoring.SentryConfig `json:"sentry"`
}

// Load reads path, applies environment overrides and validates every
// section. An empty path loads defaults and the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.HTTP.SetDefaults()
	c.Store.SetDefaults()
	c.Engine.SetDefaults()
	c.Reports.SetDefaults()
	c.Alerts.SetDefaults()
	c.Logging.SetDefaults()
	if len(c.Metrics.Sinks) == 0 {
		c.Metrics.Sinks = append(c.Metrics.Sinks, defaultSink)
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Alerts.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}
