package handlers

import (
	"context"
	"fmt"
	"strings"

	"moddingway/utils"
)

func (m *Moderation) AddNote(ctx context.Context, actorID, userID, content string, warning bool) Reply {
	action, kind := "/add_note", "note"
	if warning {
		action, kind = "/add_warning", "warning"
	}
	entry := utils.NewLogEntry(action, actorID).
		Add("User", "<@"+userID+">").
		Add("Note", content)

	res, err := m.notes.Add(ctx, userID, content, actorID, warning)
	if err != nil {
		msg := userMessage(err)
		entry.Add("Error", msg)
		return Reply{Content: msg, Log: entry}
	}

	entry.Add("Result", fmt.Sprintf("<@%s> was given a %s", userID, kind))
	entry.Footer = fmt.Sprintf("Note ID: %d", res.NoteID)
	content = fmt.Sprintf("Successfully added %s to <@%s>", kind, userID)
	if res.DMErr != nil {
		entry.Add("DM Status", "Failed to send DM to user, "+res.DMErr.Error())
		content += "\nUnable to send a direct message to the user."
	}
	return Reply{Content: content, Log: entry}
}

func (m *Moderation) ViewNotes(ctx context.Context, userID string, warningsOnly bool) Reply {
	list, err := m.notes.List(ctx, userID, warningsOnly)
	if err != nil {
		return Reply{Content: userMessage(err)}
	}

	kind := "notes"
	if warningsOnly {
		kind = "warnings"
	}
	if len(list) == 0 {
		return Reply{Content: fmt.Sprintf("No %s found for user <@%s>", kind, userID)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s found for <@%s>:", strings.Title(kind), userID)
	for _, n := range list {
		tag := ""
		if n.IsWarning && !warningsOnly {
			tag = " | WARNING"
		}
		fmt.Fprintf(&b, "\n* ID: %d%s | Note Creator: <@%s> | Last Editor: <@%s> | Note: %s",
			n.ID, tag, n.CreatedBy, n.LastEditedBy, n.Content)
	}
	return Reply{Content: b.String()}
}

func (m *Moderation) UpdateNote(ctx context.Context, actorID string, noteID int64, content string) Reply {
	entry := utils.NewLogEntry("/update_note", actorID).Add("New note", content)
	entry.Footer = fmt.Sprintf("Note ID: %d", noteID)

	old, err := m.notes.Update(ctx, noteID, content, actorID)
	if err != nil {
		msg := userMessage(err)
		entry.Add("Error", msg)
		return Reply{Content: msg, Log: entry}
	}
	entry.Add("Old note", old.Content).Add("Result", "Note updated")
	return Reply{Content: "Note successfully updated", Log: entry}
}

func (m *Moderation) DeleteNote(ctx context.Context, actorID string, noteID int64) Reply {
	entry := utils.NewLogEntry("/delete_note", actorID)
	entry.Footer = fmt.Sprintf("Note ID: %d", noteID)

	note, err := m.notes.Delete(ctx, noteID)
	if err != nil {
		msg := userMessage(err)
		entry.Add("Error", msg)
		return Reply{Content: msg, Log: entry}
	}
	entry.Add("Note", note.Content).Add("Result", "Note deleted")
	return Reply{Content: fmt.Sprintf("Successfully deleted note: %d", noteID), Log: entry}
}
