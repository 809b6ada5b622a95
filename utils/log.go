package utils

import (
	"context"
	"strings"

	"moddingway/logging"
	"moddingway/model"
)

type LogField struct {
	Name  string
	Value string
}

// LogEntry is one moderation action as posted to the logging channel.
type LogEntry struct {
	Action  string
	ActorID string
	Fields  []LogField
	Footer  string
}

func NewLogEntry(action, actorID string) *LogEntry {
	return &LogEntry{Action: action, ActorID: actorID}
}

// Add appends a field. Empty values are skipped.
func (e *LogEntry) Add(name, value string) *LogEntry {
	if value != "" {
		e.Fields = append(e.Fields, LogField{Name: name, Value: value})
	}
	return e
}

// Value returns the first field called name.
func (e *LogEntry) Value(name string) string {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func (e *LogEntry) Description() string {
	var b strings.Builder
	if e.ActorID != "" {
		b.WriteString("**Moderator:** <@" + e.ActorID + ">\n")
	}
	for _, f := range e.Fields {
		b.WriteString("**" + f.Name + ":** " + f.Value + "\n")
	}
	if e.Footer != "" {
		b.WriteString("\n" + e.Footer)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Post sends the entry to channelID. Failures are logged and otherwise ignored.
func (e *LogEntry) Post(ctx context.Context, modLog model.ModLogger, channelID string) {
	if e == nil || modLog == nil || channelID == "" {
		return
	}
	if err := modLog.PostLog(ctx, channelID, e.Action, e.Description()); err != nil {
		logging.Warn("Failed to post moderation log", "action", e.Action, "channel_id", channelID, "error", err)
	}
}
