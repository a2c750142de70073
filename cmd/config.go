package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/agentic-research/margoviz/internal/ingest"
	"github.com/agentic-research/margoviz/internal/render"
)

// EnvPrefix prefixes environment overrides, e.g. MARGOVIZ_RENDER_MAX_MEMBERS.
const EnvPrefix = "MARGOVIZ"

// Config is the merged view of defaults, config file, environment and flags.
type Config struct {
	Input  InputConfig  `mapstructure:"input"`
	Render RenderConfig `mapstructure:"render"`
	Log    LogConfig    `mapstructure:"log"`
}

// InputConfig selects how the input document is decoded.
type InputConfig struct {
	Format string `mapstructure:"format"`
}

// RenderConfig mirrors render.Options.
type RenderConfig struct {
	MaxMembers   int    `mapstructure:"max_members"`
	HeadMembers  int    `mapstructure:"head_members"`
	ClusterLabel string `mapstructure:"cluster_label"`
}

// LogConfig controls diagnostics on stderr.
type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// Options converts the render section to renderer options.
func (c RenderConfig) Options() render.Options {
	return render.Options{
		MaxMembers:   c.MaxMembers,
		HeadMembers:  c.HeadMembers,
		ClusterLabel: c.ClusterLabel,
	}
}

func setDefaults(v *viper.Viper) {
	defaults := render.DefaultOptions()
	v.SetDefault("input.format", string(ingest.FormatAuto))
	v.SetDefault("render.max_members", defaults.MaxMembers)
	v.SetDefault("render.head_members", defaults.HeadMembers)
	v.SetDefault("render.cluster_label", defaults.ClusterLabel)
	v.SetDefault("log.verbose", false)
}

// loadConfig layers the optional config file and MARGOVIZ_* environment over
// the defaults. Flags are bound to v by the caller.
func loadConfig(v *viper.Viper, path string) (Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: config %s: %w", ingest.ErrIO, path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decoding config: %w", ErrUsage, err)
	}
	if _, err := ingest.ParseFormat(cfg.Input.Format); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if err := cfg.Render.Options().Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return cfg, nil
}
