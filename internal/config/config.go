// Package config merges flags, environment, a config file and defaults.
//
// Precedence, highest first: command-line flags, PATHFINDER_* environment
// variables (a .env file in the working directory is loaded first),
// pathfinder.yaml, then built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pathfinderai/pathfinder/internal/llm"
)

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "PATHFINDER"

// Keys understood in flags, environment and config file.
const (
	KeyDB         = "db"
	KeyCatalog    = "catalog"
	KeyConfig     = "config"
	KeyLogLevel   = "log-level"
	KeyLogFile    = "log-file"
	KeyLLMProv    = "llm.provider"
	KeyLLMModel   = "llm.model"
	KeyLLMKey     = "llm.api-key"
	KeyLLMBaseURL = "llm.base-url"
	KeyLLMTimeout = "llm.timeout"
)

// Config is the resolved application configuration.
type Config struct {
	DB       string
	Catalog  string
	LogLevel string
	LogFile  string
	LLM      llm.Config

	// File is the config file that was read, if any.
	File string
}

// Load resolves configuration for cmd. lookup reads the process
// environment for vendor API key discovery and is usually os.Getenv.
func Load(cmd *cobra.Command, lookup func(string) string) (*Config, error) {
	_ = godotenv.Load() // optional

	v, err := viperForCmd(cmd)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DB:       v.GetString(KeyDB),
		Catalog:  v.GetString(KeyCatalog),
		LogLevel: v.GetString(KeyLogLevel),
		LogFile:  v.GetString(KeyLogFile),
		File:     v.ConfigFileUsed(),
		LLM: llm.Config{
			Provider: strings.ToLower(v.GetString(KeyLLMProv)),
			Model:    v.GetString(KeyLLMModel),
			APIKey:   v.GetString(KeyLLMKey),
			BaseURL:  v.GetString(KeyLLMBaseURL),
			Timeout:  v.GetDuration(KeyLLMTimeout),
		},
	}
	cfg.LLM = llm.Discover(cfg.LLM, lookup)
	if err := cfg.LLM.Validate(); err != nil {
		return nil, fmt.Errorf("llm config: %w", err)
	}
	return cfg, nil
}

// viperForCmd binds a command's flags and environment to a fresh viper
// instance and reads the config file.
func viperForCmd(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLLMTimeout, llm.DefaultTimeout)

	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		return v, nil
	}

	v.SetConfigName("pathfinder")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "pathfinder"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}
