package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string     `mapstructure:"log_level"`
	URI      URIConfig  `mapstructure:"uri"`
	Sync     SyncConfig `mapstructure:"sync"`
}

// URIConfig holds file identity settings.
type URIConfig struct {
	// YAML file with editor URI -> agent URI aliases. Optional.
	AliasesFile string `mapstructure:"aliases_file"`
}

// SyncConfig holds document synchronization settings.
type SyncConfig struct {
	// Send the whole document on every change instead of incremental edits.
	FullDocument bool `mapstructure:"full_document"`

	// Attach the editor's full document state to every notification.
	SendTestingParams bool `mapstructure:"send_testing_params"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("uri.aliases_file", "")
	v.SetDefault("sync.full_document", false)
	v.SetDefault("sync.send_testing_params", false)

	// AGENT_BRIDGE_SYNC_FULL_DOCUMENT overrides sync.full_document.
	v.SetEnvPrefix("AGENT_BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
