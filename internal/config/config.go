package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"outfox/internal/domain"
)

// EnvPrefix is prepended to every environment variable key
const EnvPrefix = "OUTFOX"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         int
	Host         string
	Env          string // "development" or "production"
	StaleTimeout time.Duration
}

// GameConfig holds game-related configuration
type GameConfig struct {
	Mode           string // "threshold" or "rotation"
	WinningScore   int
	DoubleDown     string // "shared" or "per-player"
	RankingTime    time.Duration
	RevealInterval time.Duration
	CardsPath      string
	RoomCodeLength int
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// RegisterFlags adds every configuration key to the flag set with its default
func RegisterFlags(flags *pflag.FlagSet) {
	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	flags.String("host", "0.0.0.0", "address to bind to (env: OUTFOX_HOST)")
	flags.IntP("port", "p", 8080, "port to listen on (env: OUTFOX_PORT)")
	flags.String("env", "development", "development or production (env: OUTFOX_ENV)")
	flags.Duration("stale-timeout", 2*time.Hour, "idle tables are closed after this long (env: OUTFOX_STALE_TIMEOUT)")

	flags.String("game-mode", "threshold", "threshold (first to --winning-score) or rotation (everyone is Snake once) (env: OUTFOX_GAME_MODE)")
	flags.Int("winning-score", domain.DefaultWinningScore, "score that ends a threshold game (env: OUTFOX_WINNING_SCORE)")
	flags.String("double-down", "shared", "shared (one pick is enough) or per-player (everyone must pick) (env: OUTFOX_DOUBLE_DOWN)")
	flags.Duration("ranking-time", 120*time.Second, "ranking clock, 0 disables (env: OUTFOX_RANKING_TIME)")
	flags.Duration("reveal-interval", 2*time.Second, "auto reveal cadence (env: OUTFOX_REVEAL_INTERVAL)")
	flags.String("cards", "", "path to a JSON card file, embedded catalog if empty (env: OUTFOX_CARDS)")
	flags.Int("room-code-length", 6, "length of table codes (env: OUTFOX_ROOM_CODE_LENGTH)")

	flags.String("log-level", "info", "debug, info, warn or error (env: OUTFOX_LOG_LEVEL)")
	flags.String("log-format", "text", "text or json (env: OUTFOX_LOG_FORMAT)")
}

// Load resolves configuration with flags taking precedence over the environment,
// the environment over envFile, and envFile over flag defaults. A missing envFile is ignored.
func Load(flags *pflag.FlagSet, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("port"),
			Host:         v.GetString("host"),
			Env:          v.GetString("env"),
			StaleTimeout: v.GetDuration("stale-timeout"),
		},
		Game: GameConfig{
			Mode:           strings.ToLower(v.GetString("game-mode")),
			WinningScore:   v.GetInt("winning-score"),
			DoubleDown:     strings.ToLower(v.GetString("double-down")),
			RankingTime:    v.GetDuration("ranking-time"),
			RevealInterval: v.GetDuration("reveal-interval"),
			CardsPath:      v.GetString("cards"),
			RoomCodeLength: v.GetInt("room-code-length"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("log-level"),
			Format: v.GetString("log-format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Server.Port)
	}
	if c.Server.StaleTimeout <= 0 {
		return fmt.Errorf("stale timeout must be positive: %s", c.Server.StaleTimeout)
	}
	if c.Game.RankingTime < 0 {
		return fmt.Errorf("ranking time cannot be negative: %s", c.Game.RankingTime)
	}
	if c.Game.RevealInterval < 0 {
		return fmt.Errorf("reveal interval cannot be negative: %s", c.Game.RevealInterval)
	}
	if c.Game.RoomCodeLength < 4 || c.Game.RoomCodeLength > 12 {
		return fmt.Errorf("room code length must be between 4 and 12: %d", c.Game.RoomCodeLength)
	}
	if _, err := c.Game.Options(); err != nil {
		return err
	}
	return nil
}

// Options converts the game section into default options for new tables
func (g GameConfig) Options() (domain.Options, error) {
	opts := domain.Options{WinningScore: g.WinningScore}

	switch g.Mode {
	case "threshold":
		opts.Mode = domain.ModeScoreThreshold
	case "rotation":
		opts.Mode = domain.ModeFixedRotation
	default:
		return opts, fmt.Errorf("%w: unknown game mode %q (threshold or rotation)", domain.ErrInvalidOptions, g.Mode)
	}

	switch g.DoubleDown {
	case "shared":
		opts.DoubleDown = domain.DoubleDownShared
	case "per-player":
		opts.DoubleDown = domain.DoubleDownPerPlayer
	default:
		return opts, fmt.Errorf("%w: unknown double down policy %q (shared or per-player)", domain.ErrInvalidOptions, g.DoubleDown)
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
