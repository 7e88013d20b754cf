package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Datasets    DatasetsConfig    `yaml:"datasets" mapstructure:"datasets"`
	Polygons    PolygonsConfig    `yaml:"polygons" mapstructure:"polygons"`
	Territories TerritoriesConfig `yaml:"territories" mapstructure:"territories"`
	Ledger      LedgerConfig      `yaml:"ledger" mapstructure:"ledger"`
	Locate      LocateConfig      `yaml:"locate" mapstructure:"locate"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// DatasetsConfig points at the shapefile dataset registry.
type DatasetsConfig struct {
	Registry        string `yaml:"registry" mapstructure:"registry"`
	LoadConcurrency int    `yaml:"load_concurrency" mapstructure:"load_concurrency"`
}

// PolygonsConfig configures hand-drawn GPSVisualizer polygons.
type PolygonsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// TerritoriesConfig configures the territory feature collection.
type TerritoriesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LedgerConfig configures the keyword ledger database.
type LedgerConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LocateConfig configures batch tagging.
type LocateConfig struct {
	Concurrency int  `yaml:"concurrency" mapstructure:"concurrency"`
	Territories bool `yaml:"territories" mapstructure:"territories"`
}

// ServerConfig configures the lookup API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLACETAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("datasets.registry", "datasets.yaml")
	v.SetDefault("datasets.load_concurrency", 4)
	v.SetDefault("polygons.dir", "polyfiles")
	v.SetDefault("territories.path", "data/indigenousTerritories.json")
	v.SetDefault("ledger.path", "placetag.db")
	v.SetDefault("locate.concurrency", 1)
	v.SetDefault("locate.territories", true)
	v.SetDefault("server.port", 8080)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "lookup", "locate" and "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Datasets.LoadConcurrency < 1 || c.Datasets.LoadConcurrency > 64 {
		errs = append(errs, fmt.Sprintf("datasets.load_concurrency must be between 1 and 64, got %d", c.Datasets.LoadConcurrency))
	}

	switch mode {
	case "lookup":
	case "locate":
		if c.Ledger.Path == "" {
			errs = append(errs, "ledger.path is required")
		}
		if c.Locate.Concurrency < 1 || c.Locate.Concurrency > 64 {
			errs = append(errs, fmt.Sprintf("locate.concurrency must be between 1 and 64, got %d", c.Locate.Concurrency))
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server.port must be > 0 and <= 65535, got %d", c.Server.Port))
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
