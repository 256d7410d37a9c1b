package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"gopkg.in/yaml.v2"
)

// WebAPIConfiguration describes the web API configuration. This structure is
// automatically parsed by loadConfiguration and values are read from the
// following sources, in order of precedence: CLI flags, environment variables
// prefixed with CFG_, and an optional YAML file.
type WebAPIConfiguration struct {
	Config struct {
		Path string `conf:"default:/conf/config.yml"`
	}
	Web struct {
		APIHost         string        `conf:"default:0.0.0.0:3000"`
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:5s"`
		ShutdownTimeout time.Duration `conf:"default:5s"`
	}
	Debug bool
	DB    struct {
		Filename string `conf:"default:./tunebase.db"`
	}
	Auth struct {
		TokenSecret   string        `conf:"default:change-me-before-deploying-0123456789abcdef,noprint"`
		TokenLifetime time.Duration `conf:"default:72h"`
	}
}

// loadConfiguration creates a WebAPIConfiguration starting from flags, env
// variables and an optional configuration file.
func loadConfiguration() (WebAPIConfiguration, error) {
	var cfg WebAPIConfiguration

	if err := conf.Parse(os.Args[1:], "CFG", &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage("CFG", &cfg)
			if err != nil {
				return cfg, fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return cfg, conf.ErrHelpWanted
		case conf.ErrVersionWanted:
			version, err := conf.VersionString("CFG", &cfg)
			if err != nil {
				return cfg, fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return cfg, conf.ErrHelpWanted
		}
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// override values from the YAML file, when one exists at the given path
	fp, err := os.Open(cfg.Config.Path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("can't read the config file, while it exists: %w", err)
	} else if err == nil {
		yamlFile, err := os.ReadFile(cfg.Config.Path)
		if err != nil {
			return cfg, fmt.Errorf("can't read config file: %w", err)
		}
		if err = yaml.Unmarshal(yamlFile, &cfg); err != nil {
			return cfg, fmt.Errorf("can't unmarshal config file: %w", err)
		}
		_ = fp.Close()
	}

	return cfg, nil
}
