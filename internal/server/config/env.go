package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays variables that are set in the environment. Unset
// variables leave the current value untouched.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}

// FromEnv returns the defaults overlaid with the environment. Tools that
// own their command line (the admin CLI) use it instead of LoadConfig.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
