package database

import (
	"context"
	"testing"
	"time"

	"moddingway/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlx.Connect(DriverSQLite, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestGetOrCreateUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetUser(ctx, "100")
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := s.GetOrCreateUser(ctx, "100", "guild")
	require.NoError(t, err)
	assert.Equal(t, "100", created.DiscordUserID)
	assert.Equal(t, model.RoleOrdinary, created.Role)
	assert.Zero(t, created.TemporaryPoints)
	assert.Zero(t, created.PermanentPoints)
	assert.False(t, created.IsBanned)

	again, err := s.GetOrCreateUser(ctx, "100", "guild")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	byID, err := s.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", byID.DiscordUserID)
	assert.Nil(t, byID.LastInfractionAt)
}

func TestDecrementOldStrikePointsAdvancesByWindow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 90 * 24 * time.Hour

	stale, err := s.AddUser(ctx, "1", "guild")
	require.NoError(t, err)
	staleAt := now.Add(-91 * 24 * time.Hour)
	stale.TemporaryPoints = 1
	stale.LastInfractionAt = &staleAt
	require.NoError(t, s.UpdateUserPoints(ctx, stale))

	fresh, err := s.AddUser(ctx, "2", "guild")
	require.NoError(t, err)
	freshAt := now.Add(-10 * 24 * time.Hour)
	fresh.TemporaryPoints = 3
	fresh.LastInfractionAt = &freshAt
	require.NoError(t, s.UpdateUserPoints(ctx, fresh))

	permanentOnly, err := s.AddUser(ctx, "3", "guild")
	require.NoError(t, err)
	permanentOnly.PermanentPoints = 7
	permanentOnly.LastInfractionAt = &staleAt
	require.NoError(t, s.UpdateUserPoints(ctx, permanentOnly))

	n, err := s.DecrementOldStrikePoints(ctx, now.Add(-window), window)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.GetUserByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TemporaryPoints)
	require.NotNil(t, got.LastInfractionAt)
	assert.True(t, got.LastInfractionAt.Equal(staleAt.Add(window)), "got %s", got.LastInfractionAt)

	got, err = s.GetUserByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TemporaryPoints)

	got, err = s.GetUserByID(ctx, permanentOnly.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.PermanentPoints)
}

func TestDecrementUserStrikePointsClampsAtZero(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.AddUser(ctx, "1", "guild")
	require.NoError(t, err)
	u.TemporaryPoints = 2
	u.PermanentPoints = 7
	require.NoError(t, s.UpdateUserPoints(ctx, u))

	require.NoError(t, s.DecrementUserStrikePoints(ctx, u.ID, 3, 0))
	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TemporaryPoints)
	assert.Equal(t, 7, got.PermanentPoints)

	assert.ErrorIs(t, s.DecrementUserStrikePoints(ctx, 999, 1, 0), ErrNotFound)
}

func TestStrikeLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	u, err := s.AddUser(ctx, "1", "guild")
	require.NoError(t, err)

	first, err := s.AddStrike(ctx, &model.Strike{
		UserID: u.ID, Severity: model.SeverityMinor, Reason: "spam",
		CreatedAt: now.Add(-time.Hour), CreatedBy: "mod", LastEditedAt: now.Add(-time.Hour), LastEditedBy: "mod",
	})
	require.NoError(t, err)
	second, err := s.AddStrike(ctx, &model.Strike{
		UserID: u.ID, Severity: model.SeveritySerious, Reason: "slurs",
		CreatedAt: now, CreatedBy: "mod", LastEditedAt: now, LastEditedBy: "mod",
	})
	require.NoError(t, err)

	strikes, err := s.ListStrikes(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, strikes, 2)
	assert.Equal(t, second, strikes[0].ID)
	assert.Equal(t, model.SeveritySerious, strikes[0].Severity)
	assert.Equal(t, first, strikes[1].ID)

	deleted, err := s.DeleteStrike(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, u.ID, deleted.UserID)
	assert.Equal(t, model.SeverityMinor, deleted.Severity)

	_, err = s.DeleteStrike(ctx, first)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetStrike(ctx, first)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExileQueries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	u, err := s.AddUser(ctx, "1", "guild")
	require.NoError(t, err)
	other, err := s.AddUser(ctx, "2", "guild")
	require.NoError(t, err)

	_, err = s.GetUserActiveExile(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	expired := now.Add(-time.Minute)
	expiredID, err := s.AddExile(ctx, &model.Exile{
		UserID: u.ID, Reason: "spam", Status: model.ExileTimed, StartAt: now.Add(-time.Hour), EndAt: &expired,
	})
	require.NoError(t, err)

	future := now.Add(time.Hour)
	_, err = s.AddExile(ctx, &model.Exile{
		UserID: other.ID, Reason: "roulette", Status: model.ExileTimed, StartAt: now, EndAt: &future,
	})
	require.NoError(t, err)

	active, err := s.GetUserActiveExile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, expiredID, active.ID)
	require.NotNil(t, active.EndAt)
	assert.True(t, active.EndAt.Equal(expired))

	pending, err := s.GetPendingUnexiles(ctx, now)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, expiredID, pending[0].ID)
	assert.Equal(t, "1", pending[0].DiscordUserID)

	listed, err := s.ListActiveExiles(ctx, "roulette")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "1", listed[0].DiscordUserID)

	extended := now.Add(24 * time.Hour)
	require.NoError(t, s.UpdateExileEnd(ctx, expiredID, extended))
	pending, err = s.GetPendingUnexiles(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, s.UpdateExileStatus(ctx, expiredID, model.ExileUnexiled))
	_, err = s.GetUserActiveExile(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	history, err := s.ListUserExiles(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.ExileUnexiled, history[0].Status)

	assert.ErrorIs(t, s.UpdateExileStatus(ctx, 999, model.ExileUnknown), ErrNotFound)
}

func TestStickyRoles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.AddUser(ctx, "1", "guild")
	require.NoError(t, err)

	require.NoError(t, s.AddStickyRoles(ctx, u.ID, []string{"a", "b"}))
	roles, err := s.GetStickyRoles(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, roles)

	require.NoError(t, s.RemoveStickyRole(ctx, u.ID, "a"))
	roles, err = s.GetStickyRoles(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, roles)

	require.NoError(t, s.RemoveStickyRoles(ctx, u.ID))
	roles, err = s.GetStickyRoles(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestNotes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	u, err := s.AddUser(ctx, "1", "guild")
	require.NoError(t, err)

	noteID, err := s.AddNote(ctx, &model.Note{
		UserID: u.ID, Content: "watch this one", CreatedAt: now, CreatedBy: "mod", LastEditedAt: now, LastEditedBy: "mod",
	})
	require.NoError(t, err)
	_, err = s.AddNote(ctx, &model.Note{
		UserID: u.ID, Content: "no spam", IsWarning: true, CreatedAt: now, CreatedBy: "mod", LastEditedAt: now, LastEditedBy: "mod",
	})
	require.NoError(t, err)

	all, err := s.ListNotes(ctx, u.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	warnings, err := s.ListNotes(ctx, u.ID, true)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "no spam", warnings[0].Content)

	require.NoError(t, s.UpdateNote(ctx, noteID, "edited", "other-mod", now.Add(time.Minute)))
	note, err := s.GetNote(ctx, noteID)
	require.NoError(t, err)
	assert.Equal(t, "edited", note.Content)
	assert.Equal(t, "other-mod", note.LastEditedBy)

	deleted, err := s.DeleteNote(ctx, noteID)
	require.NoError(t, err)
	assert.Equal(t, "edited", deleted.Content)
	_, err = s.DeleteNote(ctx, noteID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsersByCategory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, id := range []string{"1", "2", "3", "4"} {
		_, err := s.AddUser(ctx, id, "guild")
		require.NoError(t, err)
	}
	mod, err := s.GetUser(ctx, "2")
	require.NoError(t, err)
	require.NoError(t, s.SetUserRole(ctx, mod.ID, model.RoleMod))
	banned, err := s.GetUser(ctx, "3")
	require.NoError(t, err)
	require.NoError(t, s.SetUserBanned(ctx, banned.ID, true))

	page, err := s.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "3", page[0].DiscordUserID)

	total, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	mods, err := s.ListUsersByRole(ctx, model.RoleMod, 10, 0)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "2", mods[0].DiscordUserID)
	modCount, err := s.CountUsersByRole(ctx, model.RoleMod)
	require.NoError(t, err)
	assert.Equal(t, 1, modCount)

	bannedUsers, err := s.ListBannedUsers(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, bannedUsers, 1)
	assert.True(t, bannedUsers[0].IsBanned)
	bannedCount, err := s.CountBannedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, bannedCount)
}

func TestBanForms(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u, err := s.AddUser(ctx, "100", "guild")
	require.NoError(t, err)

	_, err = s.GetBanForm(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	submitted := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first, err := s.AddBanForm(ctx, &model.BanForm{UserID: u.ID, Reason: "first", SubmittedAt: submitted})
	require.NoError(t, err)
	_, err = s.AddBanForm(ctx, &model.BanForm{UserID: u.ID, Reason: "second", SubmittedAt: submitted})
	require.NoError(t, err)

	form, err := s.GetBanForm(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "first", form.Reason)
	assert.True(t, submitted.Equal(form.SubmittedAt))
	assert.Nil(t, form.Approval)
	assert.Nil(t, form.ApprovedBy)

	require.NoError(t, s.ReviewBanForm(ctx, first, false, "mod"))
	form, err = s.GetBanForm(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, form.Approval)
	assert.False(t, *form.Approval)
	assert.Equal(t, "mod", *form.ApprovedBy)
	assert.ErrorIs(t, s.ReviewBanForm(ctx, 99, true, "mod"), ErrNotFound)

	page, err := s.ListBanForms(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Reason)

	n, err := s.CountBanForms(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAnnouncements(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	_, err := s.GetAnnouncement(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := s.AddAnnouncement(ctx, &model.Announcement{
		Content: "hello", CreatedAt: now, CreatedBy: "admin", LastEditedAt: now, LastEditedBy: "admin",
	})
	require.NoError(t, err)

	a, err := s.GetAnnouncement(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hello", a.Content)
	assert.False(t, a.Sent)
	assert.Empty(t, a.MessageID)

	require.NoError(t, s.MarkAnnouncementSent(ctx, id, "chan", "msg", "other", now))
	a, err = s.GetAnnouncement(ctx, id)
	require.NoError(t, err)
	assert.True(t, a.Sent)
	assert.Equal(t, "chan", a.ChannelID)
	assert.Equal(t, "msg", a.MessageID)
	assert.Equal(t, "other", a.LastEditedBy)

	assert.ErrorIs(t, s.MarkAnnouncementSent(ctx, id, "chan", "msg2", "other", now), ErrNotFound)
}
