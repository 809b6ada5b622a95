package appeals

import (
	"context"
	"errors"
	"testing"

	"moddingway/ban"
	"moddingway/discord/discordtest"
	"moddingway/metrics"
	"moddingway/model"
	"moddingway/utils"
	"moddingway/utils/database"
	"moddingway/utils/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *database.Store, *discordtest.Platform) {
	t.Helper()
	store := dbtest.NewStore(t)
	platform := discordtest.New()
	cfg := &model.Config{GuildID: "guild"}
	bans := ban.NewService(cfg, store, platform, metrics.NewMetricsRegistry())
	return NewService(store, platform, bans), store, platform
}

func bannedUser(t *testing.T, store *database.Store, discordID string) *model.User {
	t.Helper()
	ctx := context.Background()
	u, err := store.AddUser(ctx, discordID, "guild")
	require.NoError(t, err)
	require.NoError(t, store.SetUserBanned(ctx, u.ID, true))
	u.IsBanned = true
	return u
}

func TestSubmitChecksUserAndReason(t *testing.T) {
	ctx := context.Background()
	s, store, _ := newService(t)
	_, err := store.AddUser(ctx, "free", "guild")
	require.NoError(t, err)
	bannedUser(t, store, "banned")

	_, err = s.Submit(ctx, "ghost", "please")
	assert.ErrorIs(t, err, ErrNoRecord)
	_, err = s.Submit(ctx, "free", "please")
	assert.ErrorIs(t, err, ErrNotBanned)
	_, err = s.Submit(ctx, "banned", "")
	assert.ErrorIs(t, err, utils.ErrEmptyReason)

	form, err := s.Submit(ctx, "banned", "please")
	require.NoError(t, err)
	assert.NotZero(t, form.ID)
	assert.Nil(t, form.Approval)

	got, err := s.Get(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, "please", got.Reason)

	_, err = s.Get(ctx, form.ID+1)
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestReviewApprovalLiftsBan(t *testing.T) {
	ctx := context.Background()
	s, store, platform := newService(t)
	bannedUser(t, store, "banned")
	form, err := s.Submit(ctx, "banned", "please")
	require.NoError(t, err)

	res, err := s.Review(ctx, form.ID, true, "mod")
	require.NoError(t, err)
	assert.NoError(t, res.UnbanErr)
	assert.True(t, *res.Form.Approval)
	assert.Equal(t, "mod", *res.Form.ApprovedBy)
	assert.Equal(t, []string{"banned"}, platform.Unbans)

	u, err := store.GetUser(ctx, "banned")
	require.NoError(t, err)
	assert.False(t, u.IsBanned)
}

func TestReviewRejectionKeepsBan(t *testing.T) {
	ctx := context.Background()
	s, store, platform := newService(t)
	bannedUser(t, store, "banned")
	form, err := s.Submit(ctx, "banned", "please")
	require.NoError(t, err)

	res, err := s.Review(ctx, form.ID, false, "mod")
	require.NoError(t, err)
	assert.False(t, *res.Form.Approval)
	assert.Empty(t, platform.Unbans)

	u, err := store.GetUser(ctx, "banned")
	require.NoError(t, err)
	assert.True(t, u.IsBanned)

	_, err = s.Review(ctx, form.ID+1, true, "mod")
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestReviewKeepsDecisionWhenUnbanFails(t *testing.T) {
	ctx := context.Background()
	s, store, platform := newService(t)
	bannedUser(t, store, "banned")
	form, err := s.Submit(ctx, "banned", "please")
	require.NoError(t, err)

	platform.UnbanErr = &model.PlatformError{Op: "unban", Kind: model.KindForbidden, Err: errors.New("missing access")}
	res, err := s.Review(ctx, form.ID, true, "mod")
	require.NoError(t, err)
	assert.Error(t, res.UnbanErr)

	stored, err := s.Get(ctx, form.ID)
	require.NoError(t, err)
	assert.True(t, *stored.Approval)
	u, err := store.GetUser(ctx, "banned")
	require.NoError(t, err)
	assert.True(t, u.IsBanned)
}

func TestReviewTreatsLiftedBanAsDone(t *testing.T) {
	ctx := context.Background()
	s, store, platform := newService(t)
	bannedUser(t, store, "banned")
	form, err := s.Submit(ctx, "banned", "please")
	require.NoError(t, err)

	platform.UnbanErr = &model.PlatformError{Op: "unban", Kind: model.KindNotFound}
	res, err := s.Review(ctx, form.ID, true, "mod")
	require.NoError(t, err)
	assert.NoError(t, res.UnbanErr)

	u, err := store.GetUser(ctx, "banned")
	require.NoError(t, err)
	assert.False(t, u.IsBanned)
}
