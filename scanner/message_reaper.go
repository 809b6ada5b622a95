package scanner

import (
	"context"
	"time"

	"moddingway/logging"
)

// SweepMessages deletes every unpinned message in a channel older than maxAge.
// Deletions are paced by the reaper's limiter.
func (r *Reaper) SweepMessages(ctx context.Context, channelID string, maxAge time.Duration) SweepResult {
	res := SweepResult{Kind: MessageScope, ScopeID: channelID, MaxAge: maxAge}

	messages, err := r.messages.ChannelHistory(ctx, channelID)
	if err != nil {
		res.Err = err
		logResult(res)
		return res
	}

	now := r.now()
	for _, msg := range messages {
		if msg.Pinned || now.Sub(msg.SentAt) <= maxAge {
			continue
		}

		if err := r.limiter.Wait(ctx); err != nil {
			res.Err = err
			break
		}

		err := r.messages.DeleteMessage(ctx, channelID, msg.ID)
		r.record(MessageScope, err)
		if err != nil {
			logging.Error("Failed to delete message", "message_id", msg.ID, "channel_id", channelID, "error", err)
			res.Errors++
			continue
		}
		res.Deleted++
	}

	logResult(res)
	return res
}
