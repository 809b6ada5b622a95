package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moddingway/logging"
	"moddingway/metrics"
	"moddingway/model"
	"moddingway/utils/database"
)

var (
	ErrEmptyNote    = errors.New("Note cannot be empty")
	ErrNoteNotFound = errors.New("Note not found in database, no action will be taken")
	ErrNoRecord     = errors.New("User not found in database")
)

// Store is the persistence notes need.
type Store interface {
	GetUser(ctx context.Context, discordUserID string) (*model.User, error)
	GetOrCreateUser(ctx context.Context, discordUserID, guildID string) (*model.User, error)
	AddNote(ctx context.Context, note *model.Note) (int64, error)
	ListNotes(ctx context.Context, userID int64, warningsOnly bool) ([]model.Note, error)
	GetNote(ctx context.Context, id int64) (*model.Note, error)
	UpdateNote(ctx context.Context, id int64, content, editorID string, at time.Time) error
	DeleteNote(ctx context.Context, id int64) (*model.Note, error)
}

// Result describes a recorded note. DMErr is only set for warnings the user could not be told about.
type Result struct {
	NoteID int64
	DMErr  error
}

// Service keeps moderator notes and warnings.
type Service struct {
	cfg      *model.Config
	store    Store
	notifier model.Notifier
	metrics  *metrics.MetricsRegistry
	now      func() time.Time
}

func NewService(cfg *model.Config, store Store, notifier model.Notifier, m *metrics.MetricsRegistry) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// Add records a note on a user. A warning is also sent to the user as a direct message.
func (s *Service) Add(ctx context.Context, discordUserID, content, actorID string, warning bool) (*Result, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyNote
	}

	user, err := s.store.GetOrCreateUser(ctx, discordUserID, s.cfg.GuildID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id, err := s.store.AddNote(ctx, &model.Note{
		UserID:       user.ID,
		Content:      content,
		IsWarning:    warning,
		CreatedAt:    now,
		CreatedBy:    actorID,
		LastEditedAt: now,
		LastEditedBy: actorID,
	})
	if err != nil {
		return nil, err
	}
	logging.Info("Note added", "user_id", discordUserID, "note_id", id, "warning", warning, "actor_id", actorID)

	res := &Result{NoteID: id}
	if warning {
		text := fmt.Sprintf("You have received a warning in %s.\n**Reason:** %s", s.cfg.CommunityName, content)
		if err := s.notifier.SendDirectMessage(ctx, discordUserID, text); err != nil {
			s.metrics.DirectMessageFailures.Inc()
			logging.Warn("Failed to send warning DM", "user_id", discordUserID, "error", err)
			res.DMErr = err
		}
	}
	return res, nil
}

// List returns a user's notes, newest first.
func (s *Service) List(ctx context.Context, discordUserID string, warningsOnly bool) ([]model.Note, error) {
	user, err := s.store.GetUser(ctx, discordUserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return s.store.ListNotes(ctx, user.ID, warningsOnly)
}

// Update replaces a note's content and returns the note as it was before the edit.
func (s *Service) Update(ctx context.Context, id int64, content, actorID string) (*model.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyNote
	}

	old, err := s.store.GetNote(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateNote(ctx, id, content, actorID, s.now().UTC()); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	logging.Info("Note updated", "note_id", id, "actor_id", actorID)
	return old, nil
}

// Delete removes a note and returns it.
func (s *Service) Delete(ctx context.Context, id int64) (*model.Note, error) {
	note, err := s.store.DeleteNote(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	logging.Info("Note deleted", "note_id", id)
	return note, nil
}
