package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the settings of the hosting services. BDApps credentials are
// not here; they are read by pkg/bdapps/config from the BDAPPS_* variables.
type Config struct {
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"` // json or text
	NATSUrl   string `mapstructure:"NATS_URL"`

	CallbackServicePort  int   `mapstructure:"CALLBACK_SERVICE_PORT"`
	MetricsPort          int   `mapstructure:"METRICS_PORT"`
	CallbackMaxBodyBytes int64 `mapstructure:"CALLBACK_MAX_BODY_BYTES"`
}

// Load reads configs/config.defaults.yaml when present and overlays APP_*
// environment variables (APP_LOG_LEVEL, APP_NATS_URL, ...).
func Load(serviceName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config.defaults")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix("APP")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("CALLBACK_SERVICE_PORT", 8090)
	v.SetDefault("METRICS_PORT", 9090)
	v.SetDefault("CALLBACK_MAX_BODY_BYTES", 1<<20)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		slog.Debug("config.defaults.yaml not found; using defaults and environment", "service", serviceName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
