package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"moddingway/announcements"
	"moddingway/bot"
	"moddingway/channels"
	"moddingway/discord/discordtest"
	"moddingway/model"
	"moddingway/utils/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJobs struct {
	ran []string
	err error
}

func (j *stubJobs) RunNow(_ context.Context, name string) error {
	j.ran = append(j.ran, name)
	return j.err
}

func newTools(t *testing.T) (*Tools, *discordtest.Platform, *stubJobs) {
	t.Helper()
	cfg := &model.Config{GuildID: "guild", AnnouncementDraftChannelID: "drafts"}
	platform := discordtest.New()
	jobs := &stubJobs{}
	tools := NewTools(func() *model.Config { return cfg },
		channels.NewService(platform),
		announcements.NewService(cfg, dbtest.NewStore(t), platform),
		jobs)
	return tools, platform, jobs
}

func TestSetSlowmodeCommand(t *testing.T) {
	ctx := context.Background()
	tools, platform, _ := newTools(t)

	reply := tools.SetSlowmode(ctx, actor, "general", 30)
	assert.Equal(t, "Successfully set slowmode to 30 seconds in <#general>", reply.Content)
	require.NotNil(t, reply.Log)
	assert.Equal(t, "/set_slowmode", reply.Log.Action)
	assert.Equal(t, 30, platform.Slowmode["general"])

	reply = tools.SetSlowmode(ctx, actor, "general", 30)
	assert.Equal(t, "Slowmode is already set to 30 seconds in <#general>", reply.Content)
	assert.Equal(t, reply.Content, reply.Log.Value("Error"))

	reply = tools.SetSlowmode(ctx, actor, "general", 0)
	assert.Equal(t, "Successfully turned off slowmode in <#general>", reply.Content)
	reply = tools.SetSlowmode(ctx, actor, "general", 0)
	assert.Equal(t, "Slowmode is already off in <#general>", reply.Content)

	reply = tools.SetSlowmode(ctx, actor, "general", 21601)
	assert.Equal(t, "Interval must be between 0 and 21600 seconds", reply.Content)

	platform.ChannelErr = &model.PlatformError{Op: "set slowmode", Kind: model.KindForbidden}
	reply = tools.SetSlowmode(ctx, actor, "general", 5)
	assert.Equal(t, "Unable to update <#general>: the bot is missing permissions.", reply.Content)
}

func TestSendMessageCommand(t *testing.T) {
	ctx := context.Background()
	tools, platform, _ := newTools(t)

	reply := tools.SendMessage(ctx, actor, "general", "Welcome!")
	assert.Equal(t, "Successfully sent message to <#general>", reply.Content)
	assert.Equal(t, []discordtest.Sent{{ChannelID: "general", Content: "Welcome!"}}, platform.Sent)
	assert.Equal(t, "Welcome!", reply.Log.Value("Message"))

	reply = tools.SendMessage(ctx, actor, "general", strings.Repeat("x", 251))
	assert.Equal(t, "Message must be 250 characters or less.", reply.Content)

	platform.SendErr = &model.PlatformError{Op: "send message", Kind: model.KindForbidden}
	reply = tools.SendMessage(ctx, actor, "staff", "hi")
	assert.Equal(t, "Unable to post in <#staff>: the bot is missing permissions.", reply.Content)
	assert.Len(t, platform.Sent, 1)
}

func TestRunAutomodCommand(t *testing.T) {
	ctx := context.Background()
	tools, _, jobs := newTools(t)

	reply := tools.RunAutomod(ctx, actor)
	assert.Equal(t, "Forum automod task completed.", reply.Content)
	assert.Equal(t, []string{bot.JobThreadReaper}, jobs.ran)
	assert.Equal(t, reply.Content, reply.Log.Value("Result"))

	jobs.err = bot.ErrJobRunning
	reply = tools.RunAutomod(ctx, actor)
	assert.Equal(t, "Forum automod is already running.", reply.Content)

	jobs.err = errors.New("list archived threads: forbidden")
	reply = tools.RunAutomod(ctx, actor)
	assert.Contains(t, reply.Content, "finished with errors")
}

func TestAnnouncementCommands(t *testing.T) {
	ctx := context.Background()
	tools, platform, _ := newTools(t)

	reply := tools.DraftAnnouncement(ctx, actor, "Event on Friday")
	assert.Equal(t, "Successfully added announcement. (ID: 1)", reply.Content)
	require.NotNil(t, reply.Log)
	assert.Equal(t, "Announcement ID: 1", reply.Log.Footer)
	require.Len(t, platform.Posted, 1)
	assert.Equal(t, "drafts", platform.Posted[0].ChannelID)

	reply = tools.DraftAnnouncement(ctx, actor, " ")
	assert.Equal(t, announcements.ErrEmpty.Error(), reply.Content)

	reply = tools.PublishAnnouncement(ctx, actor, "news", 7)
	assert.Equal(t, "Announcement not found.", reply.Content)

	reply = tools.PublishAnnouncement(ctx, actor, "news", 1)
	assert.Equal(t, "Successfully published announcement. (ID: 1)", reply.Content)
	require.Len(t, platform.Posted, 2)
	published := platform.Posted[1]
	assert.Equal(t, "news", published.ChannelID)

	reply = tools.PublishAnnouncement(ctx, actor, "general", 1)
	assert.Equal(t, "Announcement already published: https://discord.com/channels/guild/news/"+published.MessageID, reply.Content)
	assert.Nil(t, reply.Log)
	assert.Len(t, platform.Posted, 2)
}
