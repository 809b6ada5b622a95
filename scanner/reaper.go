package scanner

import (
	"context"
	"sort"
	"sync"
	"time"

	"moddingway/logging"
	"moddingway/metrics"
	"moddingway/model"

	"golang.org/x/time/rate"
)

const (
	defaultDeletionPause = time.Second
	scopeWorkers         = 4
)

// Reaper deletes forum threads and channel messages that have been inactive too long.
type Reaper struct {
	threads      model.ThreadSource
	messages     model.MessageSource
	limiter      *rate.Limiter
	metrics      *metrics.MetricsRegistry
	eventBotID   string
	eventForumID string
	now          func() time.Time
}

func NewReaper(cfg *model.Config, threads model.ThreadSource, messages model.MessageSource, m *metrics.MetricsRegistry) *Reaper {
	pause := cfg.DeletionPause
	if pause <= 0 {
		pause = defaultDeletionPause
	}
	return &Reaper{
		threads:      threads,
		messages:     messages,
		limiter:      rate.NewLimiter(rate.Every(pause), 1),
		metrics:      m,
		eventBotID:   cfg.EventBotID,
		eventForumID: cfg.EventForumID,
		now:          time.Now,
	}
}

// SweepAllThreads sweeps every forum in limits, which maps forum ids to an age in days.
func (r *Reaper) SweepAllThreads(ctx context.Context, limits map[string]int) []SweepResult {
	return r.sweepAll(ctx, limits, func(id string, days int) SweepResult {
		return r.SweepThreads(ctx, id, time.Duration(days)*24*time.Hour)
	})
}

// SweepAllMessages sweeps every channel in limits, which maps channel ids to an age in minutes.
func (r *Reaper) SweepAllMessages(ctx context.Context, limits map[string]int) []SweepResult {
	return r.sweepAll(ctx, limits, func(id string, minutes int) SweepResult {
		return r.SweepMessages(ctx, id, time.Duration(minutes)*time.Minute)
	})
}

// sweepAll runs one sweep per scope on a small worker pool and returns results in scope id order.
func (r *Reaper) sweepAll(ctx context.Context, limits map[string]int, sweep func(id string, limit int) SweepResult) []SweepResult {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]SweepResult, 0, len(limits))
		guard   = make(chan struct{}, scopeWorkers)
	)

	for id, limit := range limits {
		wg.Add(1)
		guard <- struct{}{}

		go func(id string, limit int) {
			defer func() {
				<-guard
				wg.Done()
			}()
			res := sweep(id, limit)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(id, limit)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].ScopeID < results[j].ScopeID })
	return results
}

func (r *Reaper) record(kind ScopeKind, err error) {
	result := "deleted"
	if err != nil {
		result = "error"
	}
	r.metrics.ReaperDeletionsTotal.WithLabelValues(string(kind), result).Inc()
}

func logResult(res SweepResult) {
	if res.Err != nil {
		logging.Error("Sweep failed", "scope", res.Kind, "scope_id", res.ScopeID, "error", res.Err)
		return
	}
	if res.Deleted > 0 || res.Errors > 0 {
		logging.Info("Sweep removed inactive items",
			"scope", res.Kind, "scope_id", res.ScopeID, "deleted", res.Deleted, "errors", res.Errors)
		return
	}
	logging.Info("Nothing marked for deletion", "scope", res.Kind, "scope_id", res.ScopeID)
}
