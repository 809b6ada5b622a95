package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"moddingway/logging"
	"moddingway/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MODDINGWAY_BOT_TOKEN or MODDINGWAY_DATABASE_HOST.
const EnvPrefix = "MODDINGWAY"

var defaults = map[string]interface{}{
	"bot_token":                     "",
	"guild_id":                      "",
	"app_env":                       "production",
	"community_name":                "the server",
	"logging_channel_id":            "",
	"notify_channel_id":             "",
	"announcement_draft_channel_id": "",
	"event_bot_id":                  "",
	"event_forum_id":                "",
	"event_warn_channel_id":         "",
	"deletion_pause":                time.Second,
	"roulette_cooldown":             24 * time.Hour,

	"roles.verified":     "",
	"roles.exiled":       "",
	"roles.non_verified": "",
	"roles.mod":          "",
	"roles.sticky":       []string{},

	"database.driver":   "postgres",
	"database.dsn":      "",
	"database.host":     "localhost",
	"database.port":     5432,
	"database.name":     "moddingway",
	"database.user":     "postgres",
	"database.password": "",

	"api.addr":         ":8080",
	"api.key":          "",
	"api.cors_origins": []string{"*"},
	"api.rate_limit":   10.0,
	"api.rate_burst":   20,

	"schedule.decay":          24 * time.Hour,
	"schedule.reconcile":      time.Minute,
	"schedule.thread_reaper":  24 * time.Hour,
	"schedule.message_reaper": time.Hour,
}

// Load reads .env if present, then the optional settings file at path (config.yaml in . or ./config
// when path is empty), and applies MODDINGWAY_* environment overrides on top.
func Load(path string) (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Info(".env file not found, relying on environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
			logging.Info("No config file found, using defaults and environment")
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.ThreadInactivity == nil {
		cfg.ThreadInactivity = make(map[string]int)
	}
	if cfg.MessageInactivity == nil {
		cfg.MessageInactivity = make(map[string]int)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	if v.ConfigFileUsed() != "" {
		logging.Info("Configuration loaded", "file", v.ConfigFileUsed())
	}
	return &cfg, nil
}

// Validate reports the first setting the bot cannot start without.
func Validate(cfg *model.Config) error {
	if cfg.BotToken == "" {
		return fmt.Errorf("%s_BOT_TOKEN is not set", EnvPrefix)
	}
	if cfg.GuildID == "" {
		return fmt.Errorf("%s_GUILD_ID is not set", EnvPrefix)
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	intervals := map[string]time.Duration{
		"schedule.decay":          cfg.Schedule.Decay,
		"schedule.reconcile":      cfg.Schedule.Reconcile,
		"schedule.thread_reaper":  cfg.Schedule.ThreadReaper,
		"schedule.message_reaper": cfg.Schedule.MessageReaper,
	}
	for key, d := range intervals {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", key, d)
		}
	}

	for id, days := range cfg.ThreadInactivity {
		if days <= 0 {
			return fmt.Errorf("thread_inactivity[%s] must be positive, got %d", id, days)
		}
	}
	for id, minutes := range cfg.MessageInactivity {
		if minutes <= 0 {
			return fmt.Errorf("message_inactivity[%s] must be positive, got %d", id, minutes)
		}
	}
	return nil
}

// MustLoad is Load for entry points: any error is fatal.
func MustLoad(path string) *model.Config {
	cfg, err := Load(path)
	if err != nil {
		logging.Fatal("Failed to load configuration", "error", err)
	}
	return cfg
}
