package cli

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultServer  = "http://localhost:5000"
	defaultTimeout = 90 * time.Second
)

// Config is the qactl configuration resolved from flags, QACTL_* env and .qactl.yaml.
type Config struct {
	Server  string        `mapstructure:"server"`
	Timeout time.Duration `mapstructure:"timeout"`
	Output  OutputConfig  `mapstructure:"output"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// LoadConfig reads configuration from v. cfgFile overrides the search path when set.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".qactl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/qactl")
	}

	v.SetEnvPrefix("QACTL")
	v.AutomaticEnv()

	v.SetDefault("server", defaultServer)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("output.colors", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	u, err := url.Parse(cfg.Server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("validating config: server %q is not an absolute URL", cfg.Server)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &cfg, nil
}
