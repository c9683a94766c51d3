// Package watch implements the watch/alert engine core: the watch registry,
// movement detection, the alert queue, and the background poller.
package watch

import (
	"sync"
	"time"

	"github.com/rewired-gh/oddswatch/internal/models"
)

// DefaultThresholdPct is the alert threshold, in percentage points, applied
// to watches that do not set their own.
const DefaultThresholdPct = 3.0

// Registry holds the set of active watches and the last-observed home-win
// probability per watched key. All methods are safe for concurrent use; the
// poller reads the full set every tick while command handlers mutate it.
type Registry struct {
	mu       sync.RWMutex
	watches  map[string]models.WatchedEvent
	order    []string
	observed map[string]models.ObservedProbability
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		watches:  make(map[string]models.WatchedEvent),
		observed: make(map[string]models.ObservedProbability),
	}
}

// AddOrReplace registers a watch, overwriting any prior entry for the same
// key. thresholdPct <= 0 means "use the detector default". Re-adding keeps
// the key's position in the listing order and any existing baseline.
func (r *Registry) AddOrReplace(eventKey string, thresholdPct float64, direction models.Direction) {
	if direction == "" {
		direction = models.DirectionAny
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.watches[eventKey]; !exists {
		r.order = append(r.order, eventKey)
	}
	r.watches[eventKey] = models.WatchedEvent{
		EventKey:     eventKey,
		ThresholdPct: thresholdPct,
		Direction:    direction,
		CreatedAt:    time.Now(),
	}
}

// Remove deletes the watch and its observed baseline, so a later re-add
// starts fresh. Returns whether an entry existed.
func (r *Registry) Remove(eventKey string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.watches[eventKey]; !exists {
		return false
	}
	delete(r.watches, eventKey)
	delete(r.observed, eventKey)
	for i, k := range r.order {
		if k == eventKey {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns the current watches in insertion order. The returned slice is
// a copy; callers never hold an iterator over live registry state.
func (r *Registry) List() []models.WatchedEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.WatchedEvent, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.watches[k])
	}
	return out
}

// Len returns the number of active watches.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.watches)
}

// Observed returns the last-seen home-win probability for a key, if any.
func (r *Registry) Observed(eventKey string) (models.ObservedProbability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obs, ok := r.observed[eventKey]
	return obs, ok
}

// SetObserved records the baseline for a key. The baseline is only kept for
// keys that are still watched, so a concurrent Remove cannot leak a stale
// baseline into a future watch lifecycle.
func (r *Registry) SetObserved(eventKey string, prob float64, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.watches[eventKey]; !exists {
		return
	}
	r.observed[eventKey] = models.ObservedProbability{HomeWinProb: prob, ObservedAt: at}
}
