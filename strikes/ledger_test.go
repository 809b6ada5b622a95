package strikes

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
	"moddingway/utils/database"
	"moddingway/utils/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	verified = "verified"
	exiled   = "exiled"
)

type fixture struct {
	ledger   *Ledger
	store    *database.Store
	platform *discordtest.Platform
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &model.Config{
		GuildID:       "guild",
		CommunityName: "Test Community",
		Roles:         model.RoleConfig{Verified: verified, Exiled: exiled},
	}
	m := metrics.NewMetricsRegistry()
	f := &fixture{
		store:    dbtest.NewStore(t),
		platform: discordtest.New(),
		now:      time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	exiles := exile.NewManager(cfg, f.store, f.platform, m)
	bans := ban.NewService(cfg, f.store, f.platform, m)
	f.ledger = NewLedger(cfg, f.store, exiles, bans, f.platform, m)
	f.ledger.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) setPoints(t *testing.T, discordID string, temporary, permanent int) {
	t.Helper()
	ctx := context.Background()
	u, err := f.store.GetOrCreateUser(ctx, discordID, "guild")
	require.NoError(t, err)
	u.TemporaryPoints = temporary
	u.PermanentPoints = permanent
	require.NoError(t, f.store.UpdateUserPoints(ctx, u))
}

func TestAddMinorStrikeToNewUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	member := f.platform.AddMember("1", verified)

	res, err := f.ledger.AddStrike(ctx, member, model.SeverityMinor, "spam", "mod")
	require.NoError(t, err)
	assert.NotZero(t, res.StrikeID)
	assert.Equal(t, 0, res.PreviousPoints)
	assert.Equal(t, 1, res.NewPoints)
	assert.Equal(t, "Nothing", res.Punishment.String())
	assert.NoError(t, res.PunishmentErr)
	assert.NoError(t, res.DMErr)

	user, strikes, err := f.ledger.UserStrikes(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, user.TemporaryPoints)
	assert.Equal(t, 0, user.PermanentPoints)
	require.NotNil(t, user.LastInfractionAt)
	assert.True(t, user.LastInfractionAt.Equal(f.now))
	require.Len(t, strikes, 1)
	assert.Equal(t, "mod", strikes[0].CreatedBy)

	require.Len(t, f.platform.DMs, 1)
	assert.Contains(t, f.platform.DMs[0].Text, "**Reason:** spam")
	assert.True(t, f.platform.HasRole("1", verified))
}

func TestSeriousStrikeAddsPermanentPoints(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	member := f.platform.AddMember("1", verified)

	res, err := f.ledger.AddStrike(ctx, member, model.SeveritySerious, "slurs", "mod")
	require.NoError(t, err)
	assert.Equal(t, 7, res.NewPoints)
	assert.Equal(t, "11 day exile", res.Punishment.String())

	user, _, err := f.ledger.UserStrikes(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 0, user.TemporaryPoints)
	assert.Equal(t, 7, user.PermanentPoints)
}

func TestStrikeCrossingThresholdExiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	member := f.platform.AddMember("1", verified)

	res, err := f.ledger.AddStrike(ctx, member, model.SeverityModerate, "toxicity", "mod")
	require.NoError(t, err)
	assert.Equal(t, "1 day exile", res.Punishment.String())
	assert.NoError(t, res.PunishmentErr)

	assert.True(t, f.platform.HasRole("1", exiled))
	assert.False(t, f.platform.HasRole("1", verified))

	user, err := f.store.GetUser(ctx, "1")
	require.NoError(t, err)
	active, err := f.store.GetUserActiveExile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, active.EndAt)
	assert.True(t, active.EndAt.Sub(active.StartAt) == 24*time.Hour)
}

func TestStrikeReachingBanThresholdBans(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	member := f.platform.AddMember("1", verified)
	f.setPoints(t, "1", 8, 0)

	res, err := f.ledger.AddStrike(ctx, member, model.SeveritySerious, "raid", "mod")
	require.NoError(t, err)
	assert.Equal(t, 8, res.PreviousPoints)
	assert.Equal(t, 15, res.NewPoints)
	assert.Equal(t, "Permanent ban", res.Punishment.String())
	assert.NoError(t, res.PunishmentErr)

	require.Len(t, f.platform.Bans, 1)
	assert.False(t, f.platform.Bans[0].DeleteHistory)

	user, err := f.store.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.True(t, user.IsBanned)
	exiles, err := f.store.ListUserExiles(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, exiles)
}

func TestStrikeOnExiledUserExtendsExile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	member := f.platform.AddMember("1", verified)

	_, err := f.ledger.AddStrike(ctx, member, model.SeverityModerate, "first", "mod")
	require.NoError(t, err)

	res, err := f.ledger.AddStrike(ctx, f.platform.Member("1"), model.SeverityMinor, "second", "mod")
	require.NoError(t, err)
	assert.Equal(t, "1 day exile", res.Punishment.String())
	assert.NoError(t, res.PunishmentErr)

	user, err := f.store.GetUser(ctx, "1")
	require.NoError(t, err)
	exiles, err := f.store.ListUserExiles(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, exiles, 1)
	assert.Equal(t, 48*time.Hour, exiles[0].EndAt.Sub(exiles[0].StartAt))
}

func TestStrikeKeepsRecordWhenPunishmentFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	member := f.platform.AddMember("1")

	res, err := f.ledger.AddStrike(ctx, member, model.SeverityModerate, "toxicity", "mod")
	require.NoError(t, err)
	assert.ErrorIs(t, res.PunishmentErr, exile.ErrNotVerified)

	_, strikes, err := f.ledger.UserStrikes(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, strikes, 1)
}

func TestStrikeSucceedsWhenDMFails(t *testing.T) {
	f := newFixture(t)
	f.platform.DMErr = errors.New("dms closed")
	member := f.platform.AddMember("1", verified)

	res, err := f.ledger.AddStrike(context.Background(), member, model.SeverityMinor, "spam", "mod")
	require.NoError(t, err)
	assert.Error(t, res.DMErr)
	assert.Equal(t, 1, res.NewPoints)
}

func TestAddStrikeRejectsInvalidSeverity(t *testing.T) {
	f := newFixture(t)
	member := f.platform.AddMember("1", verified)

	_, err := f.ledger.AddStrike(context.Background(), member, model.StrikeSeverity(9), "spam", "mod")
	assert.ErrorIs(t, err, ErrInvalidSeverity)
	_, _, err = f.ledger.UserStrikes(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNoRecord)
}

type failingPointsStore struct {
	*database.Store
}

func (failingPointsStore) UpdateUserPoints(context.Context, *model.User) error {
	return errors.New("connection reset")
}

// Strike insert and point update are separate commits; a failure between them
// leaves the strike without its points.
func TestStrikeRecordedWithoutPointsWhenUpdateFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.ledger.store = failingPointsStore{Store: f.store}
	member := f.platform.AddMember("1", verified)

	_, err := f.ledger.AddStrike(ctx, member, model.SeverityModerate, "toxicity", "mod")
	require.Error(t, err)

	user, strikes, err := f.ledger.UserStrikes(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, strikes, 1)
	assert.Zero(t, user.TotalPoints())
	assert.True(t, f.platform.HasRole("1", verified))
}

func TestDeleteStrikeRefundsPointsClampedAtZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	member := f.platform.AddMember("1", verified)

	res, err := f.ledger.AddStrike(ctx, member, model.SeverityModerate, "toxicity", "mod")
	require.NoError(t, err)
	f.setPoints(t, "1", 1, 0)

	strike, user, err := f.ledger.DeleteStrike(ctx, res.StrikeID)
	require.NoError(t, err)
	assert.Equal(t, model.SeverityModerate, strike.Severity)
	assert.Equal(t, 0, user.TemporaryPoints)

	// The exile applied for the strike stays.
	assert.True(t, f.platform.HasRole("1", exiled))

	_, _, err = f.ledger.DeleteStrike(ctx, res.StrikeID)
	assert.ErrorIs(t, err, ErrStrikeNotFound)
}

func TestDecayTemporaryPoints(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.store.GetOrCreateUser(ctx, "1", "guild")
	require.NoError(t, err)
	last := f.now.Add(-91 * 24 * time.Hour)
	u.TemporaryPoints = 1
	u.LastInfractionAt = &last
	require.NoError(t, f.store.UpdateUserPoints(ctx, u))

	n, err := f.ledger.DecayTemporaryPoints(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := f.store.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.TemporaryPoints)
	require.NotNil(t, got.LastInfractionAt)
	assert.True(t, got.LastInfractionAt.Equal(last.Add(DecayWindow)))

	n, err = f.ledger.DecayTemporaryPoints(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
