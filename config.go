// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Run configuration.
// Precedence: flags > env (GOPCAL_*, DATADIR for datadir) > config file > defaults.
type Config struct {
	DataDir   string   `mapstructure:"datadir"`
	SnrMin    float64  `mapstructure:"snr_min"`
	Ref       string   `mapstructure:"ref_station"`
	NChan     int      `mapstructure:"nchan"`
	SpacingHz float64  `mapstructure:"channel_spacing_hz"`
	Chans     string   `mapstructure:"channels"`
	Pols      []string `mapstructure:"pols"`
	FixFile   string   `mapstructure:"fix_file"`
	PlotFiles []string `mapstructure:"plot_files"`
}

// Load configuration from an optional YAML file, the environment and defaults.
// Without cfgFile, gopcal.yaml (or .yml, .json, .toml) in . and ~/.gopcal is tried.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GOPCAL")
	v.AutomaticEnv()
	if err := v.BindEnv("datadir", "GOPCAL_DATADIR", "DATADIR"); err != nil {
		return nil, err
	}

	// Defaults
	v.SetDefault("datadir", "")
	v.SetDefault("snr_min", SnrMin)
	v.SetDefault("ref_station", RefStation)
	v.SetDefault("nchan", 0)
	v.SetDefault("channel_spacing_hz", DNu)
	v.SetDefault("channels", ChanIDs)
	v.SetDefault("pols", ParPols)
	v.SetDefault("fix_file", "")
	v.SetDefault("plot_files", PlotFiles)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("gopcal")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".gopcal"))
		}
		// The file is optional, but one that exists must be readable
		var nf viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if f := v.ConfigFileUsed(); f != "" {
		PrintD(1, "config file: %s", f)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *Config) Validate() error {
	if len(p.Ref) != 1 {
		return fmt.Errorf("ref_station must be a one-letter station code (got %q)", p.Ref)
	}
	if p.SpacingHz <= 0 {
		return fmt.Errorf("channel_spacing_hz must be positive (got %g)", p.SpacingHz)
	}
	if p.NChan < 0 || p.NChan > len(p.Chans) {
		return fmt.Errorf("nchan must be within 0..%d (got %d)", len(p.Chans), p.NChan)
	}
	if len(p.PlotFiles) != 3 {
		return fmt.Errorf("plot_files needs 3 names (got %d)", len(p.PlotFiles))
	}
	if len(p.Pols) == 0 {
		return fmt.Errorf("pols must not be empty")
	}
	return nil
}

func (p *Config) LoadOpt() *LoadOpt {
	opt := NewLoadOpt()
	opt.SnrMin = p.SnrMin
	opt.Ref = p.Ref
	opt.Pols = p.Pols
	opt.NChan = p.NChan
	return opt
}

func (p *Config) Opt() *Opt {
	opt := NewOpt()
	opt.SpacingHz = p.SpacingHz
	return opt
}

func (p *Config) CCOpt() *CCOpt {
	opt := NewCCOpt()
	opt.Ref = p.Ref
	opt.Chans = p.Chans
	return opt
}
