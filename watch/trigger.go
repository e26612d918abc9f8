package watch

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// Trigger reasons.
const (
	ReasonChange   = "change"
	ReasonSchedule = "schedule"
)

// Trigger asks for a recompile.
type Trigger struct {
	// Reason is ReasonChange or ReasonSchedule.
	Reason string

	// Paths lists the changed files, for ReasonChange.
	Paths []string

	// At is when the trigger fired.
	At time.Time
}

// Func handles one trigger.
type Func func(ctx context.Context, t Trigger) error

// Loop calls fn for every trigger received on changes or ticks until ctx is
// done or both channels are closed. Calls never overlap. Triggers that pile
// up while fn runs are merged into a single follow-up call. Errors from fn
// are logged and do not stop the loop.
func Loop(ctx context.Context, changes, ticks <-chan Trigger, fn Func, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	for changes != nil || ticks != nil {
		var t Trigger
		var ok bool
		select {
		case <-ctx.Done():
			return
		case t, ok = <-changes:
			if !ok {
				changes = nil
				continue
			}
		case t, ok = <-ticks:
			if !ok {
				ticks = nil
				continue
			}
		}

		t = merge(t, drain(changes), drain(ticks))
		logger.Info("Recompiling", "reason", t.Reason, "files", len(t.Paths))
		if err := fn(ctx, t); err != nil {
			logger.Error("Recompile failed", "reason", t.Reason, "error", err)
		}
	}
}

// drain returns every trigger immediately available on ch.
func drain(ch <-chan Trigger) []Trigger {
	var out []Trigger
	for ch != nil {
		select {
		case t, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, t)
		default:
			return out
		}
	}
	return out
}

// merge folds pending triggers into t. A file change wins over a schedule
// tick as the reason; paths are deduplicated.
func merge(t Trigger, pending ...[]Trigger) Trigger {
	for _, batch := range pending {
		for _, p := range batch {
			if p.Reason == ReasonChange {
				t.Reason = ReasonChange
			}
			for _, path := range p.Paths {
				if !slices.Contains(t.Paths, path) {
					t.Paths = append(t.Paths, path)
				}
			}
			if p.At.After(t.At) {
				t.At = p.At
			}
		}
	}
	return t
}
