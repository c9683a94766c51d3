package watch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/oddswatch/internal/logger"
	"github.com/rewired-gh/oddswatch/internal/models"
)

// DefaultInterval is the poll interval applied when configuration does not
// set one (120000 ms).
const DefaultInterval = 120 * time.Second

// DefaultFetchTimeout caps a single snapshot fetch so one hung request
// cannot stall a tick indefinitely.
const DefaultFetchTimeout = 10 * time.Second

// SnapshotClient fetches a probability snapshot for one event key.
type SnapshotClient interface {
	Snapshot(ctx context.Context, eventKey string) (*models.ProbabilitySnapshot, error)
}

// AlertSink records fired alerts for later inspection. Writes are
// best-effort; a sink failure never blocks alert delivery.
type AlertSink interface {
	AddAlert(alert *models.Alert) error
}

// Poller runs the recurring watch cycle: every interval it snapshots the
// watch list, fetches fresh probabilities per watch, runs movement detection
// against the previous observation, and queues any resulting alerts.
type Poller struct {
	registry     *Registry
	queue        *Queue
	client       SnapshotClient
	history      AlertSink
	interval     time.Duration
	fetchTimeout time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

// NewPoller creates a poller. history may be nil to disable the audit trail.
// Non-positive interval or fetchTimeout fall back to the defaults.
func NewPoller(registry *Registry, queue *Queue, client SnapshotClient, history AlertSink, interval, fetchTimeout time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &Poller{
		registry:     registry,
		queue:        queue,
		client:       client,
		history:      history,
		interval:     interval,
		fetchTimeout: fetchTimeout,
	}
}

// Start begins the recurring poll loop. Calling Start while already running
// is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.running = true
	go p.run(ctx)
	logger.Info("Poller started (interval: %v, fetch timeout: %v)", p.interval, p.fetchTimeout)
}

// Stop cancels the poll loop. No new tick is scheduled after Stop; an
// in-flight tick finishes its current fetches and its results are discarded
// or applied per normal rules.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.cancel()
	p.cancel = nil
	p.running = false
	logger.Info("Poller stopped")
}

// Running reports whether the poll loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one poll cycle over a stable copy of the watch list. A failing
// fetch is logged and skipped; it never aborts the tick for other watches.
func (p *Poller) Tick(ctx context.Context) {
	watches := p.registry.List()
	if len(watches) == 0 {
		return
	}
	logger.Debug("Poll tick over %d watches", len(watches))

	alerts := 0
	for _, w := range watches {
		if ctx.Err() != nil {
			return
		}
		snap, err := p.fetch(ctx, w.EventKey)
		if err != nil {
			logger.Warn("Snapshot fetch failed for %s: %v", w.EventKey, err)
			continue
		}

		var prev *float64
		if obs, ok := p.registry.Observed(w.EventKey); ok {
			v := obs.HomeWinProb
			prev = &v
		}

		if alert, fired := Evaluate(w, prev, snap); fired {
			p.queue.Push(alert.Message)
			alerts++
			if p.history != nil {
				alert.ID = uuid.NewString()
				alert.DetectedAt = time.Now()
				if err := p.history.AddAlert(&alert); err != nil {
					logger.Warn("Failed to record alert for %s: %v", w.EventKey, err)
				}
			}
		}

		observedAt := snap.AsOf
		if observedAt.IsZero() {
			observedAt = time.Now()
		}
		p.registry.SetObserved(w.EventKey, snap.HomeWinProb, observedAt)
	}

	if alerts > 0 {
		logger.Info("Poll tick queued %d alerts", alerts)
	}
}

func (p *Poller) fetch(ctx context.Context, eventKey string) (*models.ProbabilitySnapshot, error) {
	fctx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()
	snap, err := p.client.Snapshot(fctx, eventKey)
	if err != nil {
		return nil, err
	}
	snap.Normalize()
	return snap, nil
}
