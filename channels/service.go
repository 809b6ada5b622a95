// Package channels runs moderator actions on guild text channels.
package channels

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"moddingway/logging"
	"moddingway/model"
)

const (
	// MaxSlowmode is six hours, the longest interval the platform allows.
	MaxSlowmode      = 21600
	MaxMessageLength = 250
)

var (
	ErrInvalidInterval = fmt.Errorf("Interval must be between 0 and %d seconds", MaxSlowmode)
	ErrMessageTooLong  = fmt.Errorf("Message must be %d characters or less.", MaxMessageLength)
	// ErrSlowmodeUnchanged is returned when the channel already has the requested interval.
	ErrSlowmodeUnchanged = errors.New("slowmode unchanged")
)

type Service struct {
	platform model.ChannelManager
}

func NewService(platform model.ChannelManager) *Service {
	return &Service{platform: platform}
}

// SetSlowmode sets the per-user message interval of a channel. Zero turns slowmode off.
func (s *Service) SetSlowmode(ctx context.Context, channelID string, seconds int) error {
	if seconds < 0 || seconds > MaxSlowmode {
		return ErrInvalidInterval
	}
	current, err := s.platform.SlowmodeDelay(ctx, channelID)
	if err != nil {
		return err
	}
	if current == seconds {
		return ErrSlowmodeUnchanged
	}
	if err := s.platform.SetSlowmode(ctx, channelID, seconds); err != nil {
		return err
	}
	logging.Info("Slowmode updated", "channel_id", channelID, "previous", current, "seconds", seconds)
	return nil
}

// Send posts a short message to a channel as the bot.
func (s *Service) Send(ctx context.Context, channelID, content string) error {
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if err := s.platform.SendMessage(ctx, channelID, content); err != nil {
		logging.Warn("Failed to send message", "channel_id", channelID, "kind", model.KindOf(err).String(), "error", err)
		return err
	}
	return nil
}
