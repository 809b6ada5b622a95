package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moddingway/exile"
	"moddingway/logging"
	"moddingway/model"
	"moddingway/scanner"
)

const (
	JobStrikeDecay     = "strike_decay"
	JobExileReconcile  = "exile_reconcile"
	JobThreadReaper    = "thread_reaper"
	JobMessageReaper   = "message_reaper"
	reaperSummaryTitle = "Inactivity cleanup"
)

type decayer interface {
	DecayTemporaryPoints(ctx context.Context) (int64, error)
}

type reconciler interface {
	ReconcileExpired(ctx context.Context) (exile.ReconcileSummary, error)
}

type sweeper interface {
	SweepAllThreads(ctx context.Context, limits map[string]int) []scanner.SweepResult
	SweepAllMessages(ctx context.Context, limits map[string]int) []scanner.SweepResult
}

// JobDeps are the services the periodic jobs drive.
type JobDeps struct {
	Config    func() *model.Config
	Decay     decayer
	Reconcile reconciler
	Reaper    sweeper
	ModLog    model.ModLogger
}

// Jobs builds the fixed set of periodic jobs.
func Jobs(d JobDeps) []Job {
	sched := d.Config().Schedule
	return []Job{
		{
			Name:     JobStrikeDecay,
			Interval: sched.Decay,
			Run: func(ctx context.Context) error {
				n, err := d.Decay.DecayTemporaryPoints(ctx)
				if err != nil {
					return err
				}
				logging.Info("Strike decay finished", "users", n)
				return nil
			},
		},
		{
			Name:       JobExileReconcile,
			Interval:   sched.Reconcile,
			RunOnStart: true,
			Run: func(ctx context.Context) error {
				summary, err := d.Reconcile.ReconcileExpired(ctx)
				if err != nil {
					return err
				}
				if summary.Unknown > 0 {
					postLog(ctx, d.ModLog, d.Config().LoggingChannelID, "Exile reconciliation",
						fmt.Sprintf("%d of %d expired exiles could not be resolved and were marked UNKNOWN.",
							summary.Unknown, summary.Pending))
				}
				return nil
			},
		},
		{
			Name:     JobThreadReaper,
			Interval: sched.ThreadReaper,
			Run: func(ctx context.Context) error {
				cfg := d.Config()
				results := d.Reaper.SweepAllThreads(ctx, cfg.ThreadInactivity)
				reportSweep(ctx, d.ModLog, cfg, results)
				return sweepErr(results)
			},
		},
		{
			Name:     JobMessageReaper,
			Interval: sched.MessageReaper,
			Run: func(ctx context.Context) error {
				cfg := d.Config()
				results := d.Reaper.SweepAllMessages(ctx, cfg.MessageInactivity)
				reportSweep(ctx, d.ModLog, cfg, results)
				return sweepErr(results)
			},
		},
	}
}

// reportSweep posts a summary to the notify channel when any scope removed something or failed.
// Event forum deletions are also reported to the event warn channel.
func reportSweep(ctx context.Context, modLog model.ModLogger, cfg *model.Config, results []scanner.SweepResult) {
	var lines []string
	for _, res := range results {
		if !res.Noteworthy() {
			continue
		}
		lines = append(lines, summaryLine(res))

		if res.Kind == scanner.ThreadScope && res.ScopeID == cfg.EventForumID && res.Deleted > 0 {
			postLog(ctx, modLog, cfg.EventWarnChannelID, "Event threads removed",
				fmt.Sprintf("%d finished event thread(s) were removed from <#%s>.", res.Deleted, res.ScopeID))
		}
	}
	if len(lines) == 0 {
		return
	}
	postLog(ctx, modLog, cfg.NotifyChannelID, reaperSummaryTitle, strings.Join(lines, "\n"))
}

func summaryLine(res scanner.SweepResult) string {
	noun := "thread"
	if res.Kind == scanner.MessageScope {
		noun = "message"
	}
	if res.Err != nil {
		return fmt.Sprintf("<#%s>: could not list %ss: %v", res.ScopeID, noun, res.Err)
	}
	line := fmt.Sprintf("<#%s>: removed %d %s(s) older than %s", res.ScopeID, res.Deleted, noun, res.MaxAge)
	if res.Errors > 0 {
		line += fmt.Sprintf(", %d failed", res.Errors)
	}
	return line
}

func sweepErr(results []scanner.SweepResult) error {
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", res.Kind, res.ScopeID, res.Err))
		}
	}
	return errors.Join(errs...)
}

func postLog(ctx context.Context, modLog model.ModLogger, channelID, title, description string) {
	if modLog == nil || channelID == "" {
		return
	}
	if err := modLog.PostLog(ctx, channelID, title, description); err != nil {
		logging.Warn("Failed to post log message", "channel_id", channelID, "title", title, "error", err)
	}
}
