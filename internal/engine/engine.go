// Package engine exposes the watch/alert operations consumed by the chat
// dispatch layer: watch, unwatch, list watches, and the read-only odds
// lookup. Every operation degrades to a user-visible message; nothing here
// is fatal to the hosting process.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rewired-gh/oddswatch/internal/logger"
	"github.com/rewired-gh/oddswatch/internal/models"
	"github.com/rewired-gh/oddswatch/internal/resolve"
	"github.com/rewired-gh/oddswatch/internal/snapshot"
	"github.com/rewired-gh/oddswatch/internal/watch"
)

// DefaultDrainLimit caps how many pending alerts a single list-watches call
// pulls off the queue.
const DefaultDrainLimit = 5

const usageHint = "Couldn't find that event. Name both teams (e.g. \"watch Arsenal vs Tottenham 5%\") or give an explicit key (e.g. \"watch eventKey ev_123\")."

// CandidateLister supplies the current trackable events in a stable order.
type CandidateLister interface {
	ListEvents(ctx context.Context) ([]models.Candidate, error)
}

// Engine ties resolution, the registry, the queue, and the poller together
// behind the command surface.
type Engine struct {
	feed       CandidateLister
	snapshots  watch.SnapshotClient
	registry   *watch.Registry
	queue      *watch.Queue
	poller     *watch.Poller
	drainLimit int
}

// New creates an engine. drainLimit <= 0 uses DefaultDrainLimit.
func New(feed CandidateLister, snapshots watch.SnapshotClient, registry *watch.Registry, queue *watch.Queue, poller *watch.Poller, drainLimit int) *Engine {
	if drainLimit <= 0 {
		drainLimit = DefaultDrainLimit
	}
	return &Engine{
		feed:       feed,
		snapshots:  snapshots,
		registry:   registry,
		queue:      queue,
		poller:     poller,
		drainLimit: drainLimit,
	}
}

// Watch resolves the free text to an event key and registers (or replaces)
// a watch with the parsed threshold and direction. A malformed threshold
// token silently falls back to the default; it never rejects the request.
func (e *Engine) Watch(ctx context.Context, text string) string {
	candidates, err := e.feed.ListEvents(ctx)
	if err != nil {
		logger.Warn("Candidate listing failed: %v", err)
		return upstreamFailureText(err)
	}

	key, ok := resolve.ResolveKey(text, candidates)
	if !ok {
		return usageHint
	}

	threshold, _ := resolve.ParseThreshold(text)
	direction := resolve.ParseDirection(text)
	e.registry.AddOrReplace(key, threshold, direction)

	// Best-effort initial baseline; the poller retries on its own schedule.
	if _, exists := e.registry.Observed(key); !exists {
		if snap, err := e.snapshots.Snapshot(ctx, key); err == nil {
			e.registry.SetObserved(key, snap.HomeWinProb, observedAt(snap))
		} else {
			logger.Debug("Initial baseline fetch failed for %s: %v", key, err)
		}
	}

	effective := threshold
	if effective <= 0 {
		effective = watch.DefaultThresholdPct
	}
	return fmt.Sprintf("Watching %s (direction: %s, threshold: %.1fpp).", key, direction, effective)
}

// Unwatch resolves the free text and removes the watch, if any.
func (e *Engine) Unwatch(ctx context.Context, text string) string {
	candidates, err := e.feed.ListEvents(ctx)
	if err != nil {
		logger.Warn("Candidate listing failed: %v", err)
		return upstreamFailureText(err)
	}

	key, ok := resolve.ResolveKey(text, candidates)
	if !ok {
		return usageHint
	}

	if !e.registry.Remove(key) {
		return fmt.Sprintf("Wasn't watching %s.", key)
	}
	return fmt.Sprintf("Stopped watching %s.", key)
}

// ListWatches renders the active watches, drains up to the configured
// number of pending alerts, and reports the poller status.
func (e *Engine) ListWatches() string {
	var b strings.Builder

	watches := e.registry.List()
	if len(watches) == 0 {
		b.WriteString("No active watches.\n")
	} else {
		b.WriteString(fmt.Sprintf("Active watches (%d):\n", len(watches)))
		for _, w := range watches {
			threshold := w.ThresholdPct
			if threshold <= 0 {
				threshold = watch.DefaultThresholdPct
			}
			b.WriteString(fmt.Sprintf("• %s — %s, %.1fpp\n", w.EventKey, w.Direction, threshold))
		}
	}

	if pending := e.queue.Drain(e.drainLimit); len(pending) > 0 {
		b.WriteString("\nPending alerts:\n")
		for _, msg := range pending {
			b.WriteString(msg)
			b.WriteString("\n")
		}
	}

	if e.poller.Running() {
		b.WriteString(fmt.Sprintf("\nPoller: running every %v.", e.poller.Interval()))
	} else {
		b.WriteString("\nPoller: stopped.")
	}
	return b.String()
}

// Odds resolves the free text and formats the current probabilities for the
// event. Read-only: no registry interaction.
func (e *Engine) Odds(ctx context.Context, text string) string {
	candidates, err := e.feed.ListEvents(ctx)
	if err != nil {
		logger.Warn("Candidate listing failed: %v", err)
		return upstreamFailureText(err)
	}

	key, ok := resolve.ResolveKey(text, candidates)
	if !ok {
		return usageHint
	}

	snap, err := e.snapshots.Snapshot(ctx, key)
	if err != nil {
		logger.Warn("Odds lookup failed for %s: %v", key, err)
		return upstreamFailureText(err)
	}

	return fmt.Sprintf("%s vs %s (%s): home %.1f%% · draw %.1f%% · away %.1f%% (as of %s, %d sources)",
		snap.HomeTeam, snap.AwayTeam, snap.EventKey,
		snap.HomeWinProb*100, snap.DrawProb*100, snap.AwayWinProb*100,
		observedAt(snap).Format("15:04:05"), snap.SourceCount)
}

// upstreamFailureText maps an upstream error onto the user-visible taxonomy:
// no-data is distinct from a generic retry, and a payment/authorization
// rejection exposes the collaborator's instructive message.
func upstreamFailureText(err error) string {
	var pay *snapshot.PaymentError
	if errors.As(err, &pay) {
		return pay.Message
	}
	if errors.Is(err, snapshot.ErrNoData) {
		return "No probability data for this event."
	}
	return "Upstream data source is unavailable right now, please try again shortly."
}

func observedAt(snap *models.ProbabilitySnapshot) time.Time {
	if snap.AsOf.IsZero() {
		return time.Now()
	}
	return snap.AsOf
}
