package handlers

import (
	"context"
	"testing"
	"time"

	"moddingway/ban"
	"moddingway/discord/discordtest"
	"moddingway/metrics"
	"moddingway/model"
	"moddingway/utils/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberEvents(t *testing.T) {
	ctx := context.Background()
	cfg := &model.Config{
		GuildID:          "guild",
		LoggingChannelID: "log",
		Roles:            model.RoleConfig{NonVerified: "nonverified", Mod: "mod"},
	}
	store := dbtest.NewStore(t)
	platform := discordtest.New()
	bans := ban.NewService(cfg, store, platform, metrics.NewMetricsRegistry())
	events := NewMemberEvents(func() *model.Config { return cfg }, platform, bans, store, platform)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	events.now = func() time.Time { return now }

	t.Run("join", func(t *testing.T) {
		platform.AddMember("1")
		events.OnJoin(ctx, "1", now.Add(-400*24*time.Hour))

		assert.True(t, platform.HasRole("1", "nonverified"))
		require.Len(t, platform.Logs, 1)
		assert.Equal(t, "log", platform.Logs[0].ChannelID)
		assert.Equal(t, "Member Joined", platform.Logs[0].Title)
		assert.Contains(t, platform.Logs[0].Description, "**Account Age:** 1 year(s), 35 day(s)")
		assert.Contains(t, platform.Logs[0].Description, "<@1> joined the server")
	})

	t.Run("ban and unban", func(t *testing.T) {
		events.OnBanChange(ctx, "2", true)
		user, err := store.GetUser(ctx, "2")
		require.NoError(t, err)
		assert.True(t, user.IsBanned)

		events.OnBanChange(ctx, "2", false)
		user, err = store.GetUser(ctx, "2")
		require.NoError(t, err)
		assert.False(t, user.IsBanned)

		require.Len(t, platform.Logs, 3)
		assert.Equal(t, "Member Banned", platform.Logs[1].Title)
		assert.Equal(t, "Member Unbanned", platform.Logs[2].Title)
	})
}

func TestOnRolesChanged(t *testing.T) {
	ctx := context.Background()
	cfg := &model.Config{GuildID: "guild", Roles: model.RoleConfig{Mod: "mod"}}
	store := dbtest.NewStore(t)
	platform := discordtest.New()
	events := NewMemberEvents(func() *model.Config { return cfg }, platform, nil, store, platform)

	events.OnRolesChanged(ctx, &model.Member{UserID: "1"})
	_, err := store.GetUser(ctx, "1")
	assert.Error(t, err, "ordinary members are not recorded")

	events.OnRolesChanged(ctx, &model.Member{UserID: "1", RoleIDs: []string{"mod"}})
	user, err := store.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleMod, user.Role)

	events.OnRolesChanged(ctx, &model.Member{UserID: "1"})
	user, err = store.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleOrdinary, user.Role)
}

func TestAccountAge(t *testing.T) {
	assert.Equal(t, "5 hour(s)", accountAge(5*time.Hour))
	assert.Equal(t, "3 day(s)", accountAge(3*24*time.Hour))
	assert.Equal(t, "2 year(s), 0 day(s)", accountAge(730*24*time.Hour))
}
