package scanner

import "time"

// ScopeKind names the two kinds of sweep the reaper runs.
type ScopeKind string

const (
	ThreadScope  ScopeKind = "thread"
	MessageScope ScopeKind = "message"
)

// SweepResult is the outcome of sweeping one forum or channel.
type SweepResult struct {
	Kind    ScopeKind
	ScopeID string
	MaxAge  time.Duration
	Deleted int
	Errors  int
	// Err is set when the scope could not be listed at all.
	Err error
}

// Noteworthy reports whether the sweep removed anything or hit an error.
func (r SweepResult) Noteworthy() bool {
	return r.Deleted > 0 || r.Errors > 0 || r.Err != nil
}
