// Package config resolves CLI settings from flags, LINKGRAPH_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kittclouds/linkgraph/pkg/extract"
)

const (
	KeyDir           = "dir"
	KeyDB            = "db"
	KeyContextWindow = "context-window"
	KeyVerbose       = "verbose"

	DefaultDir = "."
	EnvPrefix  = "LINKGRAPH"
)

// context-window -> LINKGRAPH_CONTEXT_WINDOW
var envReplacer = strings.NewReplacer("-", "_")

// Config is the resolved CLI configuration.
type Config struct {
	// Dir is the root of the document tree to index.
	Dir string
	// DB is the SQLite snapshot database. Empty keeps the index in memory.
	DB            string
	ContextWindow int
	Verbose       int
}

// New returns a viper instance carrying the defaults and env binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDir, DefaultDir)
	v.SetDefault(KeyDB, "")
	v.SetDefault(KeyContextWindow, extract.DefaultContextWindow)
	v.SetDefault(KeyVerbose, 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()
	return v
}

// BindFlags lets explicitly set flags override every other source.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range []string{KeyDir, KeyDB, KeyContextWindow, KeyVerbose} {
		if f := flags.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", key, err)
			}
		}
	}
	return nil
}

// ReadFile merges settings from path. An empty path looks for
// .linkgraph.{yaml,json,toml} in the working directory and ignores a
// missing file.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".linkgraph")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load resolves the final configuration.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Dir:           v.GetString(KeyDir),
		DB:            v.GetString(KeyDB),
		ContextWindow: v.GetInt(KeyContextWindow),
		Verbose:       v.GetInt(KeyVerbose),
	}
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}
	if cfg.ContextWindow <= 0 {
		return Config{}, fmt.Errorf("context-window must be positive, got %d", cfg.ContextWindow)
	}
	return cfg, nil
}
