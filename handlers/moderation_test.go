package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"moddingway/ban"
	"moddingway/discord/discordtest"
	"moddingway/exile"
	"moddingway/metrics"
	"moddingway/model"
	"moddingway/notes"
	"moddingway/strikes"
	"moddingway/utils/database"
	"moddingway/utils/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	verified = "verified"
	exiled   = "exiled"
	modRole  = "mod"
	actor    = "900"
)

type fixture struct {
	mod      *Moderation
	store    *database.Store
	platform *discordtest.Platform
	rolls    []int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &model.Config{
		GuildID:          "guild",
		CommunityName:    "Test Community",
		RouletteCooldown: time.Hour,
		Roles: model.RoleConfig{
			Verified: verified,
			Exiled:   exiled,
			Mod:      modRole,
		},
	}
	f := &fixture{
		store:    dbtest.NewStore(t),
		platform: discordtest.New(),
	}
	m := metrics.NewMetricsRegistry()
	exiles := exile.NewManager(cfg, f.store, f.platform, m)
	bans := ban.NewService(cfg, f.store, f.platform, m)
	ledger := strikes.NewLedger(cfg, f.store, exiles, bans, f.platform, m)
	f.mod = NewModeration(func() *model.Config { return cfg }, ledger, exiles, bans, notes.NewService(cfg, f.store, f.platform, m))
	f.mod.intn = func(n int) int {
		if len(f.rolls) == 0 {
			return 0
		}
		r := f.rolls[0]
		f.rolls = f.rolls[1:]
		return r % n
	}
	return f
}

func TestExileCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid duration", func(t *testing.T) {
		f := newFixture(t)
		target := f.platform.AddMember("1", verified)

		reply := f.mod.Exile(ctx, actor, target, "100day", "spam")
		assert.Contains(t, reply.Content, "Invalid exile duration given")
		assert.Nil(t, reply.Log)
		assert.True(t, f.platform.HasRole("1", verified))
	})

	t.Run("refuses mods", func(t *testing.T) {
		f := newFixture(t)
		target := f.platform.AddMember("1", verified, modRole)

		reply := f.mod.Exile(ctx, actor, target, "1day", "spam")
		assert.Equal(t, "Unable to exile <@1>: You cannot exile a mod.", reply.Content)
		assert.Nil(t, reply.Log)
		assert.False(t, f.platform.HasRole("1", exiled))
	})

	t.Run("exiles verified member", func(t *testing.T) {
		f := newFixture(t)
		target := f.platform.AddMember("1", verified)

		reply := f.mod.Exile(ctx, actor, target, "2day", "spam")
		assert.Equal(t, "Successfully exiled <@1>", reply.Content)
		assert.False(t, reply.Public)
		require.NotNil(t, reply.Log)
		assert.Equal(t, "/exile", reply.Log.Action)
		assert.Equal(t, "2 days", reply.Log.Value("Duration"))
		assert.Contains(t, reply.Log.Value("Result"), "<@1> was exiled until")
		assert.Contains(t, reply.Log.Footer, "Exile ID: ")
		assert.True(t, f.platform.HasRole("1", exiled))
	})

	t.Run("extends running exile", func(t *testing.T) {
		f := newFixture(t)
		target := f.platform.AddMember("1", verified)
		first := f.mod.Exile(ctx, actor, target, "1day", "spam")
		require.Equal(t, "Successfully exiled <@1>", first.Content)

		reply := f.mod.Exile(ctx, actor, f.platform.Member("1"), "1day", "more spam")
		assert.Equal(t, "User exile extended", reply.Content)
		require.NotNil(t, reply.Log)
		assert.Contains(t, reply.Log.Value("Result"), "Existing exile extended")
		assert.Equal(t, first.Log.Footer, reply.Log.Footer)
	})

	t.Run("unverified member", func(t *testing.T) {
		f := newFixture(t)
		target := f.platform.AddMember("1")

		reply := f.mod.Exile(ctx, actor, target, "1hour", "spam")
		assert.Equal(t, exile.ErrNotVerified.Error(), reply.Content)
		require.NotNil(t, reply.Log)
		assert.Equal(t, exile.ErrNotVerified.Error(), reply.Log.Value("Error"))
	})
}

func TestUnexileAndViewExiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	target := f.platform.AddMember("1", verified)

	assert.Equal(t, "No active exiles found", f.mod.ViewActiveExiles(ctx).Content)
	assert.Equal(t, "User not found in database", f.mod.ViewExiles(ctx, "1").Content)

	f.mod.Exile(ctx, actor, target, "1day", "spam")
	active := f.mod.ViewActiveExiles(ctx).Content
	assert.Contains(t, active, "USER: <@1>")
	assert.Contains(t, active, "REASON: spam")

	reply := f.mod.Unexile(ctx, actor, f.platform.Member("1"))
	assert.Equal(t, "Successfully unexiled <@1>", reply.Content)
	assert.True(t, f.platform.HasRole("1", verified))

	history := f.mod.ViewExiles(ctx, "1").Content
	assert.Contains(t, history, "Exiles found for <@1>:")
	assert.Contains(t, history, "TYPE: UNEXILED")

	reply = f.mod.Unexile(ctx, actor, f.platform.Member("1"))
	assert.Equal(t, exile.ErrNotExiled.Error(), reply.Content)
}

func TestRoulette(t *testing.T) {
	ctx := context.Background()

	t.Run("survives then cools down", func(t *testing.T) {
		f := newFixture(t)
		player := f.platform.AddMember("1", verified)
		f.rolls = []int{3}

		reply := f.mod.Roulette(ctx, player)
		assert.Equal(t, "<@1> has tested their luck and lives another day...", reply.Content)
		assert.True(t, reply.Public)
		assert.Nil(t, reply.Log)

		reply = f.mod.Roulette(ctx, player)
		assert.Contains(t, reply.Content, "You can play roulette again")
		assert.False(t, reply.Public)
	})

	t.Run("fails and is exiled", func(t *testing.T) {
		f := newFixture(t)
		player := f.platform.AddMember("1", verified)
		f.rolls = []int{0, 2}

		reply := f.mod.Roulette(ctx, player)
		assert.Equal(t, "<@1> has tested their luck and has utterly failed! <@1> has been sent into exile for 12 hour(s).", reply.Content)
		assert.True(t, reply.Public)
		require.NotNil(t, reply.Log)
		assert.Equal(t, "12 hours", reply.Log.Value("Duration"))
		assert.True(t, f.platform.HasRole("1", exiled))

		// Roulette exiles stay out of the active list.
		assert.Equal(t, "No active exiles found", f.mod.ViewActiveExiles(ctx).Content)
	})

	t.Run("mods are spared", func(t *testing.T) {
		f := newFixture(t)
		player := f.platform.AddMember("1", verified, modRole)
		f.rolls = []int{0, 0}

		reply := f.mod.Roulette(ctx, player)
		assert.Contains(t, reply.Content, "has been sent into exile for 1 hour(s).")
		assert.Nil(t, reply.Log)
		assert.False(t, f.platform.HasRole("1", exiled))
	})

	t.Run("failed exile releases cooldown", func(t *testing.T) {
		f := newFixture(t)
		player := f.platform.AddMember("1")
		f.rolls = []int{0, 0, 1}

		reply := f.mod.Roulette(ctx, player)
		assert.Equal(t, genericError, reply.Content)

		reply = f.mod.Roulette(ctx, player)
		assert.Contains(t, reply.Content, "lives another day")
	})
}

func TestStrikeCommands(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	target := f.platform.AddMember("1", verified)

	reply := f.mod.AddStrike(ctx, actor, f.platform.AddMember("2", verified, modRole), 1, "spam")
	assert.Equal(t, "Unable to add strike to <@2>: You cannot add strike to a mod.", reply.Content)

	reply = f.mod.AddStrike(ctx, actor, target, int64(model.SeverityMinor), "spam")
	assert.Equal(t, "Strike added. Punishment: Nothing", reply.Content)
	require.NotNil(t, reply.Log)
	assert.Equal(t, "<@1> was given a strike, bringing them to 1 points from 0 points", reply.Log.Value("Result"))

	reply = f.mod.AddStrike(ctx, actor, target, int64(model.SeverityModerate), "rude")
	assert.Equal(t, "Strike added. Punishment: 1 day exile", reply.Content)
	assert.True(t, f.platform.HasRole("1", exiled))

	view := f.mod.ViewStrikes(ctx, "1").Content
	assert.Contains(t, view, "Strikes found for <@1>: [Temporary points: 4 | Permanent points: 0]")
	assert.Contains(t, view, "SEVERITY: Moderate | Moderator: <@900> | REASON: rude")
	assert.Contains(t, view, "Total Points: 4")

	assert.Equal(t, "User not found in database", f.mod.ViewStrikes(ctx, "3").Content)
	assert.Equal(t, "Strike not found", f.mod.DeleteStrike(ctx, actor, 99).Content)

	reply = f.mod.DeleteStrike(ctx, actor, 1)
	assert.Equal(t, "Successfully deleted strike 1. <@1> now has 3 temporary and 0 permanent points.", reply.Content)
	assert.Equal(t, "spam", reply.Log.Value("Reason"))

	reply = f.mod.AddStrike(ctx, actor, target, 5, "bad")
	assert.Equal(t, strikes.ErrInvalidSeverity.Error(), reply.Content)
}

func TestBanCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses mods", func(t *testing.T) {
		f := newFixture(t)
		reply := f.mod.Ban(ctx, actor, f.platform.AddMember("1", modRole), "spam", false)
		assert.Equal(t, "Unable to ban <@1>: You cannot ban a mod.", reply.Content)
		assert.Empty(t, f.platform.Bans)
	})

	t.Run("bans and records", func(t *testing.T) {
		f := newFixture(t)
		reply := f.mod.Ban(ctx, actor, f.platform.AddMember("1", verified), "spam", true)
		assert.Equal(t, "Successfully banned <@1>.", reply.Content)
		require.Len(t, f.platform.Bans, 1)
		assert.True(t, f.platform.Bans[0].DeleteHistory)

		user, err := f.store.GetUser(ctx, "1")
		require.NoError(t, err)
		assert.True(t, user.IsBanned)
	})

	t.Run("platform failure", func(t *testing.T) {
		f := newFixture(t)
		f.platform.BanErr = errors.New("boom")
		reply := f.mod.Ban(ctx, actor, f.platform.AddMember("1", verified), "spam", false)
		assert.Equal(t, "Failed to ban <@1>. Please try again or use Discord's built-in tools.", reply.Content)
		assert.Equal(t, reply.Content, reply.Log.Value("Error"))
	})
}

func TestNoteCommands(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.platform.AddMember("1", verified)

	assert.Equal(t, "Note cannot be empty", f.mod.AddNote(ctx, actor, "1", "  ", false).Content)

	reply := f.mod.AddNote(ctx, actor, "1", "keeps arguing", false)
	assert.Equal(t, "Successfully added note to <@1>", reply.Content)
	assert.Zero(t, f.platform.DMCount())

	reply = f.mod.AddNote(ctx, actor, "1", "stop arguing", true)
	assert.Equal(t, "Successfully added warning to <@1>", reply.Content)
	assert.Equal(t, 1, f.platform.DMCount())

	all := f.mod.ViewNotes(ctx, "1", false).Content
	assert.Contains(t, all, "Notes found for <@1>:")
	assert.Contains(t, all, "Note: keeps arguing")
	assert.Contains(t, all, "| WARNING |")

	warnings := f.mod.ViewNotes(ctx, "1", true).Content
	assert.NotContains(t, warnings, "keeps arguing")
	assert.Contains(t, warnings, "stop arguing")

	reply = f.mod.UpdateNote(ctx, actor, 1, "argues a lot")
	assert.Equal(t, "Note successfully updated", reply.Content)
	assert.Equal(t, "keeps arguing", reply.Log.Value("Old note"))

	assert.Equal(t, "Successfully deleted note: 1", f.mod.DeleteNote(ctx, actor, 1).Content)
	assert.Equal(t, notes.ErrNoteNotFound.Error(), f.mod.DeleteNote(ctx, actor, 1).Content)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, exile.ErrNotVerified.Error(), userMessage(exile.ErrNotVerified))
	assert.Equal(t, "The bot is missing permissions to complete this action.",
		userMessage(&model.PlatformError{Op: "assign role", Kind: model.KindForbidden}))
	assert.Equal(t, genericError, userMessage(errors.New("database is locked")))
}
