package bot

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"moddingway/announcements"
	"moddingway/appeals"
	"moddingway/ban"
	"moddingway/channels"
	"moddingway/commands"
	"moddingway/discord"
	"moddingway/exile"
	"moddingway/logging"
	"moddingway/metrics"
	"moddingway/model"
	"moddingway/notes"
	"moddingway/scanner"
	"moddingway/strikes"
	"moddingway/utils/database"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	Session            *discordgo.Session
	Client             *discord.Client
	Store              *database.Store
	Metrics            *metrics.MetricsRegistry
	Ledger             *strikes.Ledger
	Exiles             *exile.Manager
	Bans               *ban.Service
	Notes              *notes.Service
	Appeals            *appeals.Service
	Channels           *channels.Service
	Announcements      *announcements.Service
	Reaper             *scanner.Reaper
	Scheduler          *Scheduler
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	config             atomic.Value // *model.Config
	startedAt          time.Time
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

// Uptime is the time since New returned.
func (b *Bot) Uptime() time.Duration {
	return time.Since(b.startedAt)
}

// New wires the moderation services onto a fresh discordgo session and registers the periodic jobs.
func New(cfg *model.Config, store *database.Store, m *metrics.MetricsRegistry) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentGuildModeration |
		discordgo.IntentsGuildMessages

	client := discord.NewClient(dg, cfg.GuildID)
	exiles := exile.NewManager(cfg, store, client, m)
	bans := ban.NewService(cfg, store, client, m)

	b := &Bot{
		Session:       dg,
		Client:        client,
		Store:         store,
		Metrics:       m,
		Exiles:        exiles,
		Bans:          bans,
		Notes:         notes.NewService(cfg, store, client, m),
		Appeals:       appeals.NewService(store, client, bans),
		Channels:      channels.NewService(client),
		Announcements: announcements.NewService(cfg, store, client),
		Ledger:        strikes.NewLedger(cfg, store, exiles, bans, client, m),
		Reaper:        scanner.NewReaper(cfg, client, client, m),
		Scheduler:     NewScheduler(m),
		startedAt:     time.Now(),
	}
	b.config.Store(cfg)

	for _, job := range Jobs(JobDeps{
		Config:    b.GetConfig,
		Decay:     b.Ledger,
		Reconcile: b.Exiles,
		Reaper:    b.Reaper,
		ModLog:    client,
	}) {
		if err := b.Scheduler.Register(job); err != nil {
			return nil, fmt.Errorf("register job: %w", err)
		}
	}
	return b, nil
}

// Run opens the gateway, registers commands, starts the scheduler and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer b.Close()

	if err := b.RefreshCommands(); err != nil {
		return err
	}

	b.Scheduler.Start()
	logging.Info("Bot is now running", "guild_id", b.GetConfig().GuildID)
	postLog(ctx, b.Client, b.GetConfig().LoggingChannelID, "System", "Bot has started successfully.")

	<-ctx.Done()
	return nil
}

// RefreshCommands overwrites the guild's slash commands with the current definitions.
func (b *Bot) RefreshCommands() error {
	cfg := b.GetConfig()
	cmds := commands.GenerateCommands()
	logging.Info("Registering commands", "count", len(cmds), "guild_id", cfg.GuildID)

	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, cfg.GuildID, cmds)
	if err != nil {
		return fmt.Errorf("cannot update commands for guild %s: %w", cfg.GuildID, err)
	}
	b.RegisteredCommands = registered
	return nil
}

func (b *Bot) Close() {
	logging.Info("Gracefully shutting down.")
	b.Scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		logging.Warn("Failed to close discord session", "error", err)
	}
}
