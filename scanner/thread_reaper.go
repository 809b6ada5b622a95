package scanner

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"moddingway/logging"
	"moddingway/model"
)

var eventTimestamp = regexp.MustCompile(`<t:(\d+)(?::[a-zA-Z])?>`)

// SweepThreads deletes every unpinned thread in a forum whose age is at least maxAge.
func (r *Reaper) SweepThreads(ctx context.Context, forumID string, maxAge time.Duration) SweepResult {
	res := SweepResult{Kind: ThreadScope, ScopeID: forumID, MaxAge: maxAge}

	threads, err := r.threads.ForumThreads(ctx, forumID)
	if err != nil {
		res.Err = err
		logResult(res)
		return res
	}

	now := r.now()
	for _, thread := range threads {
		if thread.Pinned {
			continue
		}
		if now.Sub(r.threadReference(ctx, forumID, thread)) < maxAge {
			continue
		}

		err := r.threads.DeleteThread(ctx, thread.ID)
		r.record(ThreadScope, err)
		if err != nil {
			logging.Error("Failed to delete thread", "thread_id", thread.ID, "forum_id", forumID, "error", err)
			res.Errors++
			continue
		}
		logging.Info("Thread deleted", "thread_id", thread.ID, "forum_id", forumID)
		res.Deleted++
	}

	logResult(res)
	return res
}

// threadReference is the time a thread's age is measured from: the scheduled event time
// for event-bot posts in the event forum, otherwise the last activity.
func (r *Reaper) threadReference(ctx context.Context, forumID string, thread model.Thread) time.Time {
	if r.eventBotID == "" || forumID != r.eventForumID {
		return thread.LastActivityAt
	}

	starter, err := r.threads.StarterMessage(ctx, thread.ID)
	if err != nil {
		logging.Warn("Failed to fetch starter message", "thread_id", thread.ID, "error", err)
		return thread.LastActivityAt
	}
	if starter.AuthorID != r.eventBotID {
		return thread.LastActivityAt
	}

	if at, ok := parseEventTime(starter.Content); ok {
		return at
	}
	return thread.LastActivityAt
}

func parseEventTime(content string) (time.Time, bool) {
	m := eventTimestamp.FindStringSubmatch(content)
	if m == nil {
		return time.Time{}, false
	}
	unix, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0).UTC(), true
}
