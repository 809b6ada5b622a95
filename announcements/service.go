// Package announcements drafts community announcements and publishes them once.
package announcements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"moddingway/logging"
	"moddingway/model"
	"moddingway/utils/database"
)

// MaxLength is the longest embed description the platform accepts.
const MaxLength = 4000

var (
	ErrEmpty            = errors.New("Announcement cannot be empty")
	ErrTooLong          = fmt.Errorf("Announcement must be %d characters or less", MaxLength)
	ErrNotFound         = errors.New("Announcement not found.")
	ErrNoDraftChannel   = errors.New("No announcement draft channel is configured")
	ErrAlreadyPublished = errors.New("Announcement already published")
)

// Store is the persistence announcements need.
type Store interface {
	AddAnnouncement(ctx context.Context, a *model.Announcement) (int64, error)
	GetAnnouncement(ctx context.Context, id int64) (*model.Announcement, error)
	MarkAnnouncementSent(ctx context.Context, id int64, channelID, messageID, actorID string, at time.Time) error
}

// DraftResult describes a saved draft. PreviewErr is set when the preview could not be posted.
type DraftResult struct {
	ID         int64
	PreviewErr error
}

type Service struct {
	cfg      *model.Config
	store    Store
	channels model.ChannelManager
	now      func() time.Time

	publishMu sync.Mutex
}

func NewService(cfg *model.Config, store Store, channels model.ChannelManager) *Service {
	return &Service{cfg: cfg, store: store, channels: channels, now: time.Now}
}

// Draft saves an unsent announcement and posts a preview to the draft channel.
func (s *Service) Draft(ctx context.Context, actorID, content string) (*DraftResult, error) {
	content = strings.TrimSpace(content)
	switch {
	case content == "":
		return nil, ErrEmpty
	case utf8.RuneCountInString(content) > MaxLength:
		return nil, ErrTooLong
	case s.cfg.AnnouncementDraftChannelID == "":
		return nil, ErrNoDraftChannel
	}

	now := s.now().UTC()
	id, err := s.store.AddAnnouncement(ctx, &model.Announcement{
		Content:      content,
		CreatedAt:    now,
		CreatedBy:    actorID,
		LastEditedAt: now,
		LastEditedBy: actorID,
	})
	if err != nil {
		return nil, err
	}
	logging.Info("Announcement drafted", "announcement_id", id, "actor_id", actorID)

	res := &DraftResult{ID: id}
	_, res.PreviewErr = s.channels.PostEmbed(ctx, s.cfg.AnnouncementDraftChannelID, model.Embed{
		Title:       "Announcement Draft",
		Description: content,
		Fields: []model.EmbedField{
			{Name: "Edited By", Value: "<@" + actorID + ">", Inline: true},
			{Name: "Status", Value: "Unsent", Inline: true},
		},
		Footer: fmt.Sprintf("Announcement ID %d", id),
	})
	if res.PreviewErr != nil {
		logging.Warn("Failed to post announcement draft", "announcement_id", id, "error", res.PreviewErr)
	}
	return res, nil
}

// Publish posts the announcement to channelID. An announcement that was already
// published is returned together with ErrAlreadyPublished.
func (s *Service) Publish(ctx context.Context, actorID string, id int64, channelID string) (*model.Announcement, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	a, err := s.store.GetAnnouncement(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.Sent {
		return a, ErrAlreadyPublished
	}

	messageID, err := s.channels.PostEmbed(ctx, channelID, model.Embed{Description: a.Content})
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.store.MarkAnnouncementSent(ctx, id, channelID, messageID, actorID, now); err != nil {
		return nil, err
	}
	a.Sent, a.ChannelID, a.MessageID = true, channelID, messageID
	a.LastEditedAt, a.LastEditedBy = now, actorID
	logging.Info("Announcement published", "announcement_id", id, "channel_id", channelID, "message_id", messageID)
	return a, nil
}

// MessageLink is the jump link to a published announcement.
func MessageLink(guildID string, a *model.Announcement) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, a.ChannelID, a.MessageID)
}
