package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
}

// ServerConfig holds the network-facing settings.
type ServerConfig struct {
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// WebSocketConfig configures the websocket gateway.
type WebSocketConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig holds the default session rules applied to new rooms.
type GameConfig struct {
	HandSize             int           `mapstructure:"hand_size"`
	StartingTreasure     int           `mapstructure:"starting_treasure"`
	StartingVictory      int           `mapstructure:"starting_victory"`
	MaxTurns             int           `mapstructure:"max_turns"`
	TimeLimit            time.Duration `mapstructure:"time_limit"`
	EmptyPilesThreshold  int           `mapstructure:"empty_piles_threshold"`
	BaseMultiplier       float64       `mapstructure:"base_multiplier"`
	CustomCardMultiplier float64       `mapstructure:"custom_card_multiplier"`
	SweepInterval        time.Duration `mapstructure:"sweep_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.websocket.address", ":8090")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("game.hand_size", 5)
	v.SetDefault("game.starting_treasure", 7)
	v.SetDefault("game.starting_victory", 3)
	v.SetDefault("game.max_turns", 50)
	v.SetDefault("game.time_limit", 30*time.Minute)
	v.SetDefault("game.empty_piles_threshold", 3)
	v.SetDefault("game.base_multiplier", 1.0)
	v.SetDefault("game.custom_card_multiplier", 1.2)
	v.SetDefault("game.sweep_interval", 5*time.Second)
}

// Load reads the configuration file at path over the built-in defaults.
// A missing file is not an error; defaults apply. Environment variables
// prefixed with DECKFORGE_ override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DECKFORGE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
