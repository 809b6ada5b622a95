package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moddingway/ban"
	"moddingway/logging"
	"moddingway/model"
	"moddingway/utils"
)

func (m *Moderation) AddStrike(ctx context.Context, actorID string, target *model.Member, severity int64, reason string) Reply {
	if m.isMod(target) {
		logging.Warn("Strike refused, target is a mod", "actor_id", actorID, "user_id", target.UserID)
		return Reply{Content: fmt.Sprintf("Unable to add strike to %s: You cannot add strike to a mod.", target.Mention())}
	}

	sev := model.StrikeSeverity(severity)
	entry := utils.NewLogEntry("/add_strike", actorID).
		Add("User", target.Mention()).
		Add("Severity", sev.String()).
		Add("Reason", reason)

	res, err := m.ledger.AddStrike(ctx, target, sev, reason, actorID)
	if err != nil {
		msg := userMessage(err)
		entry.Add("Error", msg)
		return Reply{Content: msg, Log: entry}
	}

	entry.Add("Result", fmt.Sprintf("%s was given a strike, bringing them to %d points from %d points",
		target.Mention(), res.NewPoints, res.PreviousPoints))
	entry.Add("Punishment", res.Punishment.String())
	entry.Footer = fmt.Sprintf("Strike ID: %d", res.StrikeID)

	var b strings.Builder
	fmt.Fprintf(&b, "Strike added. Punishment: %s", res.Punishment)
	if res.PunishmentErr != nil {
		entry.Add("Punishment Error", res.PunishmentErr.Error())
		fmt.Fprintf(&b, "\nThe punishment could not be applied: %s", userMessage(res.PunishmentErr))
	}
	if res.DMErr != nil {
		entry.Add("DM Status", "Failed to send DM to user, "+res.DMErr.Error())
		b.WriteString("\nUnable to send a direct message to the user.")
	}
	return Reply{Content: b.String(), Log: entry}
}

func (m *Moderation) ViewStrikes(ctx context.Context, userID string) Reply {
	user, strikes, err := m.ledger.UserStrikes(ctx, userID)
	if err != nil {
		return Reply{Content: userMessage(err)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Strikes found for <@%s>: [Temporary points: %d | Permanent points: %d]",
		userID, user.TemporaryPoints, user.PermanentPoints)
	if len(strikes) == 0 {
		b.WriteString("\nNo strikes found")
	}
	for _, s := range strikes {
		fmt.Fprintf(&b, "\n* ID: %d | SEVERITY: %s | Moderator: <@%s> | REASON: %s",
			s.ID, s.Severity, s.CreatedBy, s.Reason)
	}
	fmt.Fprintf(&b, "\nTotal Points: %d", user.TotalPoints())
	return Reply{Content: b.String()}
}

func (m *Moderation) DeleteStrike(ctx context.Context, actorID string, strikeID int64) Reply {
	entry := utils.NewLogEntry("/delete_strike", actorID)
	entry.Footer = fmt.Sprintf("Strike ID: %d", strikeID)

	strike, user, err := m.ledger.DeleteStrike(ctx, strikeID)
	if err != nil {
		msg := userMessage(err)
		entry.Add("Error", msg)
		return Reply{Content: msg, Log: entry}
	}

	entry.Add("User", "<@"+user.DiscordUserID+">").
		Add("Severity", strike.Severity.String()).
		Add("Reason", strike.Reason).
		Add("Result", fmt.Sprintf("Strike deleted, user now has %d points", user.TotalPoints()))
	return Reply{
		Content: fmt.Sprintf("Successfully deleted strike %d. <@%s> now has %d temporary and %d permanent points.",
			strikeID, user.DiscordUserID, user.TemporaryPoints, user.PermanentPoints),
		Log: entry,
	}
}

func (m *Moderation) Ban(ctx context.Context, actorID string, target *model.Member, reason string, deleteMessages bool) Reply {
	if m.isMod(target) {
		return Reply{Content: fmt.Sprintf("Unable to ban %s: You cannot ban a mod.", target.Mention())}
	}

	entry := utils.NewLogEntry("/ban", actorID).
		Add("User", target.Mention()).
		Add("Reason", reason).
		Add("Delete Messages", fmt.Sprintf("%t", deleteMessages))

	res, err := m.bans.Ban(ctx, target, reason, deleteMessages)
	if err != nil {
		msg := userMessage(err)
		if errors.Is(err, ban.ErrBanFailed) {
			msg = fmt.Sprintf("Failed to ban %s. Please try again or use Discord's built-in tools.", target.Mention())
		}
		entry.Add("Error", msg)
		return Reply{Content: msg, Log: entry}
	}

	success := fmt.Sprintf("Successfully banned %s.", target.Mention())
	entry.Add("Result", success)
	if res.DMErr != nil {
		entry.Add("DM Status", "Failed to send DM to user, "+res.DMErr.Error())
	}
	return Reply{Content: success, Log: entry}
}
