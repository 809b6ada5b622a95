package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moddingway/announcements"
	"moddingway/bot"
	"moddingway/channels"
	"moddingway/model"
	"moddingway/utils"
)

// automodTimeout outlives commandTimeout since a sweep pauses between deletions.
const automodTimeout = 10 * time.Minute

type jobRunner interface {
	RunNow(ctx context.Context, name string) error
}

// Tools runs the channel and announcement commands.
type Tools struct {
	config        func() *model.Config
	channels      *channels.Service
	announcements *announcements.Service
	jobs          jobRunner
}

func NewTools(config func() *model.Config, ch *channels.Service, ann *announcements.Service, jobs jobRunner) *Tools {
	return &Tools{config: config, channels: ch, announcements: ann, jobs: jobs}
}

func (t *Tools) SetSlowmode(ctx context.Context, actorID, channelID string, interval int64) Reply {
	entry := utils.NewLogEntry("/set_slowmode", actorID).
		Add("Channel", "<#"+channelID+">").
		Add("Interval", fmt.Sprintf("%d", interval))

	err := t.channels.SetSlowmode(ctx, channelID, int(interval))
	var msg string
	switch {
	case errors.Is(err, channels.ErrSlowmodeUnchanged) && interval == 0:
		msg = fmt.Sprintf("Slowmode is already off in <#%s>", channelID)
	case errors.Is(err, channels.ErrSlowmodeUnchanged):
		msg = fmt.Sprintf("Slowmode is already set to %d seconds in <#%s>", interval, channelID)
	case err != nil:
		msg = channelMessage(err, "update", channelID)
	case interval == 0:
		entry.Add("Result", fmt.Sprintf("Successfully turned off slowmode in <#%s>", channelID))
		return Reply{Content: entry.Value("Result"), Log: entry}
	default:
		entry.Add("Result", fmt.Sprintf("Successfully set slowmode to %d seconds in <#%s>", interval, channelID))
		return Reply{Content: entry.Value("Result"), Log: entry}
	}
	entry.Add("Error", msg)
	return Reply{Content: msg, Log: entry}
}

func (t *Tools) SendMessage(ctx context.Context, actorID, channelID, content string) Reply {
	entry := utils.NewLogEntry("/send_message", actorID).
		Add("Channel", "<#"+channelID+">").
		Add("Message", content)

	if err := t.channels.Send(ctx, channelID, content); err != nil {
		msg := channelMessage(err, "post in", channelID)
		entry.Add("Error", msg)
		return Reply{Content: msg, Log: entry}
	}
	msg := fmt.Sprintf("Successfully sent message to <#%s>", channelID)
	entry.Add("Result", msg)
	return Reply{Content: msg, Log: entry}
}

// channelMessage explains a failed channel action, e.g. "Unable to post in <#1>: ...".
func channelMessage(err error, verb, channelID string) string {
	switch {
	case errors.Is(err, channels.ErrInvalidInterval), errors.Is(err, channels.ErrMessageTooLong):
		return err.Error()
	case model.KindOf(err) == model.KindForbidden:
		return fmt.Sprintf("Unable to %s <#%s>: the bot is missing permissions.", verb, channelID)
	case model.IsNotFound(err):
		return fmt.Sprintf("Channel <#%s> was not found.", channelID)
	}
	return fmt.Sprintf("Unable to %s <#%s>: an unexpected error occurred.", verb, channelID)
}

// RunAutomod runs the forum thread reaper immediately and waits for it to finish.
func (t *Tools) RunAutomod(ctx context.Context, actorID string) Reply {
	entry := utils.NewLogEntry("/run_automod", actorID)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), automodTimeout)
	defer cancel()

	msg := "Forum automod task completed."
	err := t.jobs.RunNow(ctx, bot.JobThreadReaper)
	switch {
	case errors.Is(err, bot.ErrJobRunning):
		msg = "Forum automod is already running."
	case err != nil:
		msg = "Forum automod task finished with errors, see the notification channel."
	}
	entry.Add("Result", msg)
	return Reply{Content: msg, Log: entry}
}

func (t *Tools) DraftAnnouncement(ctx context.Context, actorID, content string) Reply {
	entry := utils.NewLogEntry("/draft_announcement", actorID).Add("Announcement", content)

	res, err := t.announcements.Draft(ctx, actorID, content)
	if err != nil {
		msg := announcementMessage(err)
		entry.Add("Error", msg)
		return Reply{Content: msg, Log: entry}
	}
	entry.Footer = fmt.Sprintf("Announcement ID: %d", res.ID)
	entry.Add("Result", fmt.Sprintf("Announcement draft created, ID:%d", res.ID))

	msg := fmt.Sprintf("Successfully added announcement. (ID: %d)", res.ID)
	if res.PreviewErr != nil {
		entry.Add("Preview", "Failed to post draft preview, "+res.PreviewErr.Error())
		msg += "\nThe draft preview could not be posted."
	}
	return Reply{Content: msg, Log: entry}
}

func (t *Tools) PublishAnnouncement(ctx context.Context, actorID, channelID string, id int64) Reply {
	entry := utils.NewLogEntry("/publish_announcement", actorID).Add("Channel", "<#"+channelID+">")
	entry.Footer = fmt.Sprintf("Announcement ID: %d", id)

	a, err := t.announcements.Publish(ctx, actorID, id, channelID)
	if errors.Is(err, announcements.ErrAlreadyPublished) {
		return Reply{Content: fmt.Sprintf("Announcement already published: %s",
			announcements.MessageLink(t.config().GuildID, a))}
	}
	if err != nil {
		msg := announcementMessage(err)
		entry.Add("Error", msg)
		return Reply{Content: msg, Log: entry}
	}
	entry.Add("Result", "Published announcement")
	return Reply{Content: fmt.Sprintf("Successfully published announcement. (ID: %d)", id), Log: entry}
}

func announcementMessage(err error) string {
	for _, known := range []error{
		announcements.ErrEmpty, announcements.ErrTooLong,
		announcements.ErrNotFound, announcements.ErrNoDraftChannel,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return userMessage(err)
}
