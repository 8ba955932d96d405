package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/joern1811/chatstats/internal/adapter/source"
	"github.com/joern1811/chatstats/internal/domain"
	"github.com/joern1811/chatstats/internal/log"
)

// EnvPrefix prefixes environment overrides, e.g. CHATSTATS_PARTICIPANTS_SENDER.
const EnvPrefix = "CHATSTATS"

var ErrMissingParticipant = errors.New("participant display name must not be empty")

type ParticipantsConfig struct {
	Sender    string `mapstructure:"sender"`
	Recipient string `mapstructure:"recipient"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"` // SQLite file; empty disables persistence
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type Config struct {
	Participants ParticipantsConfig `mapstructure:"participants"`
	Log          log.Config         `mapstructure:"log"`
	Store        StoreConfig        `mapstructure:"store"`
	S3           source.S3Config    `mapstructure:"s3"`
	Server       ServerConfig       `mapstructure:"server"`
}

// Dir returns the config directory under XDG_CONFIG_HOME, falling back to
// ~/.config.
func Dir(app string) (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Clean(filepath.Join(configHome, app)), nil
}

// Setup points v at config.json in dir and enables environment overrides.
func Setup(v *viper.Viper, dir string) {
	v.AddConfigPath(dir)
	v.SetConfigType("json")
	v.SetConfigName("config")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	v.AutomaticEnv()

	v.SetDefault("participants.sender", "")
	v.SetDefault("participants.recipient", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("store.path", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("server.addr", ":8080")
}

// Load reads the config file if present and unmarshals v into a Config.
// A missing file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings every analysis run needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Participants.Sender) == "" {
		return fmt.Errorf("sender: %w", ErrMissingParticipant)
	}
	if strings.TrimSpace(c.Participants.Recipient) == "" {
		return fmt.Errorf("recipient: %w", ErrMissingParticipant)
	}
	return nil
}

func (c *Config) ParticipantNames() domain.Participants {
	return domain.Participants{
		Sender:    c.Participants.Sender,
		Recipient: c.Participants.Recipient,
	}
}
