package model

import "time"

// DatabaseConfig holds connection settings for the record store.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RoleConfig holds the role ids the bot swaps between.
type RoleConfig struct {
	Verified    string   `mapstructure:"verified"`
	Exiled      string   `mapstructure:"exiled"`
	NonVerified string   `mapstructure:"non_verified"`
	Mod         string   `mapstructure:"mod"`
	Sticky      []string `mapstructure:"sticky"`
}

// APIConfig holds the REST server settings.
type APIConfig struct {
	Addr        string   `mapstructure:"addr"`
	Key         string   `mapstructure:"key"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	RateLimit   float64  `mapstructure:"rate_limit"`
	RateBurst   int      `mapstructure:"rate_burst"`
}

// ScheduleConfig holds the interval of every background job.
type ScheduleConfig struct {
	Decay         time.Duration `mapstructure:"decay"`
	Reconcile     time.Duration `mapstructure:"reconcile"`
	ThreadReaper  time.Duration `mapstructure:"thread_reaper"`
	MessageReaper time.Duration `mapstructure:"message_reaper"`
}

// Config is built once at startup and handed to every component.
type Config struct {
	BotToken string `mapstructure:"bot_token"`
	GuildID  string `mapstructure:"guild_id"`
	AppEnv   string `mapstructure:"app_env"`

	// CommunityName is the server name used in direct messages.
	CommunityName string `mapstructure:"community_name"`

	LoggingChannelID   string `mapstructure:"logging_channel_id"`
	NotifyChannelID    string `mapstructure:"notify_channel_id"`
	EventBotID         string `mapstructure:"event_bot_id"`
	EventForumID       string `mapstructure:"event_forum_id"`
	EventWarnChannelID string `mapstructure:"event_warn_channel_id"`

	// AnnouncementDraftChannelID receives a preview of every drafted announcement.
	AnnouncementDraftChannelID string `mapstructure:"announcement_draft_channel_id"`

	// ThreadInactivity maps forum ids to a thread age limit in days.
	ThreadInactivity map[string]int `mapstructure:"thread_inactivity"`
	// MessageInactivity maps channel ids to a message age limit in minutes.
	MessageInactivity map[string]int `mapstructure:"message_inactivity"`
	DeletionPause     time.Duration  `mapstructure:"deletion_pause"`

	RouletteCooldown time.Duration `mapstructure:"roulette_cooldown"`

	Roles    RoleConfig     `mapstructure:"roles"`
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// IsSticky reports whether roleID is stripped on exile and restored on unexile.
func (c *Config) IsSticky(roleID string) bool {
	for _, id := range c.Roles.Sticky {
		if id == roleID {
			return true
		}
	}
	return false
}
