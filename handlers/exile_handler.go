package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"moddingway/exile"
	"moddingway/logging"
	"moddingway/model"
	"moddingway/utils"
)

var rouletteHours = []int{1, 6, 12, 18, 24}

func (m *Moderation) Exile(ctx context.Context, actorID string, target *model.Member, duration, reason string) Reply {
	d, err := utils.ParseDuration(duration)
	if err != nil {
		return Reply{Content: err.Error()}
	}
	if m.isMod(target) {
		logging.Warn("Exile refused, target is a mod", "actor_id", actorID, "user_id", target.UserID)
		return Reply{Content: fmt.Sprintf("Unable to exile %s: You cannot exile a mod.", target.Mention())}
	}

	entry := utils.NewLogEntry("/exile", actorID).
		Add("User", target.Mention()).
		Add("Duration", utils.FormatDuration(duration)).
		Add("Reason", reason)

	res, err := m.exiles.Exile(ctx, target, d, reason)
	if err != nil {
		msg := userMessage(err)
		entry.Add("Error", msg)
		return Reply{Content: msg, Log: entry}
	}

	entry.Footer = fmt.Sprintf("Exile ID: %d", res.ExileID)
	if res.Extended {
		entry.Add("Result", fmt.Sprintf("Existing exile extended, now ends %s", discordTime(res.EndAt)))
		annotate(entry, res)
		return Reply{Content: "User exile extended", Log: entry}
	}
	entry.Add("Result", fmt.Sprintf("%s was exiled until %s", target.Mention(), discordTime(res.EndAt)))
	annotate(entry, res)
	return Reply{Content: "Successfully exiled " + target.Mention(), Log: entry}
}

func (m *Moderation) Unexile(ctx context.Context, actorID string, target *model.Member) Reply {
	entry := utils.NewLogEntry("/unexile", actorID).Add("User", target.Mention())

	res, err := m.exiles.Unexile(ctx, target)
	if err != nil {
		msg := userMessage(err)
		entry.Add("Error", msg)
		return Reply{Content: msg, Log: entry}
	}

	entry.Add("Result", target.Mention()+" was unexiled")
	annotate(entry, res)
	if res.ExileID != 0 {
		entry.Footer = fmt.Sprintf("Exile ID: %d", res.ExileID)
	}
	return Reply{Content: "Successfully unexiled " + target.Mention(), Log: entry}
}

func (m *Moderation) ViewExiles(ctx context.Context, userID string) Reply {
	exiles, err := m.exiles.UserExiles(ctx, userID)
	if err != nil {
		return Reply{Content: userMessage(err)}
	}
	if len(exiles) == 0 {
		return Reply{Content: fmt.Sprintf("No exiles found for <@%s>", userID)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Exiles found for <@%s>:", userID)
	for _, e := range exiles {
		fmt.Fprintf(&b, "\n* ID: %d | START DATE: %s | END DATE: %s | TYPE: %s | REASON: %s",
			e.ID, discordTime(&e.StartAt), discordTime(e.EndAt), e.Status, e.Reason)
	}
	return Reply{Content: b.String()}
}

func (m *Moderation) ViewActiveExiles(ctx context.Context) Reply {
	exiles, err := m.exiles.ActiveExiles(ctx)
	if err != nil {
		return Reply{Content: userMessage(err)}
	}
	if len(exiles) == 0 {
		return Reply{Content: "No active exiles found"}
	}

	var b strings.Builder
	b.WriteString("Active exiles:")
	for _, e := range exiles {
		fmt.Fprintf(&b, "\n* ID: %d | USER: <@%s> | START DATE: %s | END DATE: %s | REASON: %s",
			e.ID, e.DiscordUserID, discordTime(&e.StartAt), discordTime(e.EndAt), e.Reason)
	}
	return Reply{Content: b.String()}
}

// Roulette gives the caller a one in six chance of a short exile.
func (m *Moderation) Roulette(ctx context.Context, player *model.Member) Reply {
	if left, ok := m.roulette.Try(player.UserID); !ok {
		return Reply{Content: fmt.Sprintf("You can play roulette again <t:%d:R>.", m.now().Add(left).Unix())}
	}

	if m.intn(6) != 0 {
		return Reply{Content: player.Mention() + " has tested their luck and lives another day...", Public: true}
	}

	hours := rouletteHours[m.intn(len(rouletteHours))]
	failed := fmt.Sprintf("%s has tested their luck and has utterly failed! %s has been sent into exile for %d hour(s).",
		player.Mention(), player.Mention(), hours)
	if m.isMod(player) {
		return Reply{Content: failed, Public: true}
	}

	entry := utils.NewLogEntry("/roulette", player.UserID).
		Add("User", player.Mention()).
		Add("Duration", utils.FormatDuration(fmt.Sprintf("%dhour", hours)))

	res, err := m.exiles.Exile(ctx, player, time.Duration(hours)*time.Hour, exile.RouletteReason)
	if err != nil {
		logging.Error("Roulette exile failed", "user_id", player.UserID, "error", err)
		m.roulette.Release(player.UserID)
		entry.Add("Error", err.Error())
		return Reply{Content: genericError, Log: entry}
	}
	annotate(entry, res)
	entry.Footer = fmt.Sprintf("Exile ID: %d", res.ExileID)
	return Reply{Content: failed, Public: true, Log: entry}
}

func annotate(entry *utils.LogEntry, res *exile.Result) {
	if res.DMErr != nil {
		entry.Add("DM Status", "Failed to send DM to user, "+res.DMErr.Error())
	}
	if len(res.StickyRoles) > 0 {
		ids := make([]string, len(res.StickyRoles))
		for i, id := range res.StickyRoles {
			ids[i] = "<@&" + id + ">"
		}
		entry.Add("Sticky Roles", strings.Join(ids, " "))
	}
	if res.StickyRoleErr != nil {
		entry.Add("Sticky Role Error", res.StickyRoleErr.Error())
	}
}

func discordTime(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return fmt.Sprintf("<t:%d:f>", t.Unix())
}
