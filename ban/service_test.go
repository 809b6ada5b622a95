package ban

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"moddingway/discord/discordtest"
	"moddingway/metrics"
	"moddingway/model"
	"moddingway/utils/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *discordtest.Platform) {
	t.Helper()
	platform := discordtest.New()
	cfg := &model.Config{GuildID: "guild", CommunityName: "Test Community"}
	s := NewService(cfg, dbtest.NewStore(t), platform, metrics.NewMetricsRegistry())
	s.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return s, platform
}

func TestBanRejectsLongReason(t *testing.T) {
	s, platform := newService(t)
	member := platform.AddMember("1")

	_, err := s.Ban(context.Background(), member, strings.Repeat("x", MaxReasonLength), false)
	assert.ErrorIs(t, err, ErrReasonTooLong)
	assert.Empty(t, platform.Bans)
	assert.Zero(t, platform.DMCount())
}

func TestBanSendsDMBeforeBanning(t *testing.T) {
	ctx := context.Background()
	s, platform := newService(t)
	member := platform.AddMember("1")

	res, err := s.Ban(ctx, member, "raiding", true)
	require.NoError(t, err)
	assert.NoError(t, res.DMErr)

	require.Len(t, platform.DMs, 1)
	assert.Contains(t, platform.DMs[0].Text, "**Test Community**")
	assert.Contains(t, platform.DMs[0].Text, "> raiding")
	appeal := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC).Unix()
	assert.Contains(t, platform.DMs[0].Text, "<t:"+strconv.FormatInt(appeal, 10)+":F>")

	require.Len(t, platform.Bans, 1)
	assert.Equal(t, discordtest.Ban{UserID: "1", Reason: "raiding", DeleteHistory: true}, platform.Bans[0])
}

func TestBanMarksUserBanned(t *testing.T) {
	ctx := context.Background()
	s, platform := newService(t)
	member := platform.AddMember("1")

	_, err := s.Ban(ctx, member, "raiding", false)
	require.NoError(t, err)

	user, err := s.store.GetOrCreateUser(ctx, "1", "guild")
	require.NoError(t, err)
	assert.True(t, user.IsBanned)

	require.NoError(t, s.RecordBan(ctx, "1", false))
	user, err = s.store.GetOrCreateUser(ctx, "1", "guild")
	require.NoError(t, err)
	assert.False(t, user.IsBanned)
}

func TestBanSucceedsWhenDMFails(t *testing.T) {
	s, platform := newService(t)
	platform.DMErr = &model.PlatformError{Op: "send dm", Kind: model.KindForbidden}
	member := platform.AddMember("1")

	res, err := s.Ban(context.Background(), member, "raiding", false)
	require.NoError(t, err)
	assert.Error(t, res.DMErr)
	assert.Len(t, platform.Bans, 1)
}

func TestBanFailure(t *testing.T) {
	s, platform := newService(t)
	platform.BanErr = errors.New("missing permissions")
	member := platform.AddMember("1")

	_, err := s.Ban(context.Background(), member, "raiding", false)
	assert.ErrorIs(t, err, ErrBanFailed)
	assert.ErrorIs(t, err, platform.BanErr)
}
