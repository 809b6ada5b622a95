package handlers

import (
	"context"
	"fmt"
	"time"

	"moddingway/bot"
	"moddingway/utils"

	"github.com/bwmarrin/discordgo"
)

func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info := utils.CollectSystemInfo(ctx)

	dbStatus := "OK"
	if err := b.Store.Ping(ctx); err != nil {
		dbStatus = "Unreachable"
	}

	var jobLines string
	for _, st := range b.Scheduler.Status() {
		last := "never"
		if st.LastRunAt != nil {
			last = fmt.Sprintf("<t:%d:R>", st.LastRunAt.Unix())
		}
		jobLines += fmt.Sprintf("`%s` every %s, last run %s\n", st.Name, st.Interval, last)
	}
	if jobLines == "" {
		jobLines = "none"
	}

	embed := &discordgo.MessageEmbed{
		Title: "System Info",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion), Inline: true},
			{Name: "🔧 Kernel", Value: info.KernelVersion, Inline: true},
			{Name: "🐹 Go", Value: info.GoVersion, Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", info.CPUCount), Inline: true},
			{Name: "🔥 CPU Usage", Value: fmt.Sprintf("%.1f%%", info.CPUPercent), Inline: true},
			{Name: "🧠 Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", info.MemoryPercent, info.MemoryUsedMB, info.MemoryTotalMB), Inline: true},
			{Name: "🗃️ Database", Value: dbStatus, Inline: true},
			{Name: "⏱️ WebSocket Latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", info.Goroutines), Inline: true},
			{Name: "⌛ Bot Uptime", Value: b.Uptime().Truncate(time.Second).String(), Inline: true},
			{Name: "📅 Jobs", Value: jobLines},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("System monitor・%s", time.Now().Format("15:04")),
		},
	}
	utils.SendEmbedResponse(s, i, embed)
}
