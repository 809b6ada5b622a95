package handlers

import (
	"context"
	"time"

	"moddingway/bot"
	"moddingway/discord"
	"moddingway/logging"
	"moddingway/model"
	"moddingway/utils"

	"github.com/bwmarrin/discordgo"
)

const commandTimeout = 30 * time.Second

type commandFunc func(ctx context.Context, in *commandInput) Reply

func Register(b *bot.Bot) {
	m := NewModeration(b.GetConfig, b.Ledger, b.Exiles, b.Bans, b.Notes)
	t := NewTools(b.GetConfig, b.Channels, b.Announcements, b.Scheduler)
	b.CommandHandlers = commandHandlers(b, m, t)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot, m *Moderation, t *Tools) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	mod := func(run commandFunc) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !utils.IsMod(discord.ToMember(i.Member), b.GetConfig().Roles) {
				utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
				return
			}
			respond(b, s, i, true, run)
		}
	}
	admin := func(run commandFunc) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
				utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
				return
			}
			respond(b, s, i, true, run)
		}
	}
	needsMember := func(run func(ctx context.Context, in *commandInput, target *model.Member) Reply) commandFunc {
		return func(ctx context.Context, in *commandInput) Reply {
			target := in.member("user")
			if target == nil {
				return Reply{Content: "User is not a member of this server, no action will be taken"}
			}
			return run(ctx, in, target)
		}
	}

	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"exile": mod(needsMember(func(ctx context.Context, in *commandInput, target *model.Member) Reply {
			return m.Exile(ctx, in.actor.UserID, target, in.str("duration"), in.str("reason"))
		})),
		"unexile": mod(needsMember(func(ctx context.Context, in *commandInput, target *model.Member) Reply {
			return m.Unexile(ctx, in.actor.UserID, target)
		})),
		"view_exiles": mod(func(ctx context.Context, in *commandInput) Reply {
			return m.ViewExiles(ctx, in.userID("user"))
		}),
		"view_active_exiles": mod(func(ctx context.Context, in *commandInput) Reply {
			return m.ViewActiveExiles(ctx)
		}),
		"roulette": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			respond(b, s, i, false, func(ctx context.Context, in *commandInput) Reply {
				return m.Roulette(ctx, in.actor)
			})
		},
		"add_strike": mod(needsMember(func(ctx context.Context, in *commandInput, target *model.Member) Reply {
			return m.AddStrike(ctx, in.actor.UserID, target, in.integer("severity"), in.str("reason"))
		})),
		"view_strikes": mod(func(ctx context.Context, in *commandInput) Reply {
			return m.ViewStrikes(ctx, in.userID("user"))
		}),
		"delete_strike": mod(func(ctx context.Context, in *commandInput) Reply {
			return m.DeleteStrike(ctx, in.actor.UserID, in.integer("strike_id"))
		}),
		"ban": mod(needsMember(func(ctx context.Context, in *commandInput, target *model.Member) Reply {
			return m.Ban(ctx, in.actor.UserID, target, in.str("reason"), in.boolean("delete_messages"))
		})),
		"add_note": mod(func(ctx context.Context, in *commandInput) Reply {
			return m.AddNote(ctx, in.actor.UserID, in.userID("user"), in.str("note"), false)
		}),
		"add_warning": mod(func(ctx context.Context, in *commandInput) Reply {
			return m.AddNote(ctx, in.actor.UserID, in.userID("user"), in.str("reason"), true)
		}),
		"view_notes": mod(func(ctx context.Context, in *commandInput) Reply {
			return m.ViewNotes(ctx, in.userID("user"), in.boolean("warnings_only"))
		}),
		"update_note": mod(func(ctx context.Context, in *commandInput) Reply {
			return m.UpdateNote(ctx, in.actor.UserID, in.integer("note_id"), in.str("note"))
		}),
		"delete_note": mod(func(ctx context.Context, in *commandInput) Reply {
			return m.DeleteNote(ctx, in.actor.UserID, in.integer("note_id"))
		}),
		"set_slowmode": mod(func(ctx context.Context, in *commandInput) Reply {
			return t.SetSlowmode(ctx, in.actor.UserID, in.channelID("channel"), in.integer("interval"))
		}),
		"send_message": mod(func(ctx context.Context, in *commandInput) Reply {
			return t.SendMessage(ctx, in.actor.UserID, in.channelID("channel"), in.str("message"))
		}),
		"run_automod": mod(func(ctx context.Context, in *commandInput) Reply {
			return t.RunAutomod(ctx, in.actor.UserID)
		}),
		"draft_announcement": admin(func(ctx context.Context, in *commandInput) Reply {
			return t.DraftAnnouncement(ctx, in.actor.UserID, in.str("announcement_text"))
		}),
		"publish_announcement": admin(func(ctx context.Context, in *commandInput) Reply {
			return t.PublishAnnouncement(ctx, in.actor.UserID, in.channelID("channel"), in.integer("announcement_id"))
		}),
		"system-info": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !utils.IsMod(discord.ToMember(i.Member), b.GetConfig().Roles) {
				utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
				return
			}
			SystemInfoHandler(s, i, b)
		},
	}
}

// respond defers the interaction, runs the command and posts its reply and log entry.
func respond(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool, run commandFunc) {
	if i.Member == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}
	if err := utils.DeferResponse(s, i, ephemeral); err != nil {
		logging.Error("Failed to defer interaction", "command", i.ApplicationCommandData().Name, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	in := newCommandInput(i)
	reply := run(ctx, in)
	logging.Info("Command handled",
		"command", i.ApplicationCommandData().Name,
		"actor_id", in.actor.UserID,
		"logged", reply.Log != nil,
	)

	utils.SendFollowUp(s, i.Interaction, reply.Content)
	reply.Log.Post(ctx, b.Client, b.GetConfig().LoggingChannelID)
}

func addHandlers(b *bot.Bot) {
	events := NewMemberEvents(b.GetConfig, b.Client, b.Bans, b.Store, b.Client)

	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logging.Info("Logged in", "username", s.State.User.Username, "user_id", s.State.User.ID)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
		if e.GuildID != b.GetConfig().GuildID || e.User == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		created, _ := discordgo.SnowflakeTimestamp(e.User.ID)
		events.OnJoin(ctx, e.User.ID, created)
	})
	b.Session.AddHandler(func(s *discordgo.Session, e *discordgo.GuildMemberUpdate) {
		if e.GuildID != b.GetConfig().GuildID || e.Member == nil || e.User == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		events.OnRolesChanged(ctx, discord.ToMember(e.Member))
	})
	b.Session.AddHandler(func(s *discordgo.Session, e *discordgo.GuildBanAdd) {
		if e.GuildID != b.GetConfig().GuildID || e.User == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		events.OnBanChange(ctx, e.User.ID, true)
	})
	b.Session.AddHandler(func(s *discordgo.Session, e *discordgo.GuildBanRemove) {
		if e.GuildID != b.GetConfig().GuildID || e.User == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		events.OnBanChange(ctx, e.User.ID, false)
	})
}
