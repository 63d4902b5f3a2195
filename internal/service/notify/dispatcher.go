package notify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"waypost/internal/domain/content"
	"waypost/internal/domain/geo"
)

// NotificationRequest is a surfaced notification for one local update.
// Tag deduplicates at the presentation layer; the dispatcher's ledger
// already guarantees at-most-once emission per update.
type NotificationRequest struct {
	UpdateID string           `json:"update_id"`
	Category content.Category `json:"category"`
	Title    string           `json:"title"`
	Body     string           `json:"body"`
	Tag      string           `json:"tag"`
}

// Notifier delivers a notification request over one presentation
// channel (native surface, in-app, ...).
type Notifier interface {
	// Notify delivers a single request
	Notify(ctx context.Context, req NotificationRequest) error
}

// Dispatcher decides, per tick, which local updates have newly become
// relevant to the viewer and emits at most one notification per update
// for the lifetime of the process. An update that leaves relevance and
// re-enters it later stays suppressed: the ledger never re-arms.
type Dispatcher struct {
	engine geo.Service
	logger *zap.Logger

	mu           sync.Mutex
	notified     map[string]struct{}
	lastRelevant map[string]bool
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(engine geo.Service, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		engine:       engine,
		logger:       logger,
		notified:     make(map[string]struct{}),
		lastRelevant: make(map[string]bool),
	}
}

// ProcessTick evaluates every update against the viewer location and
// returns the notifications to surface. Muted categories are skipped
// entirely. For the rest, a notification fires only on a false-to-true
// relevance transition for an update the ledger has not seen fire
// before; the stored relevance is updated on every pass so later
// transitions are detected correctly. With a nil viewer location
// nothing is relevant and nothing fires. Items are independent, so the
// emitted set does not depend on input order.
func (d *Dispatcher) ProcessTick(updates []content.LocalUpdate, viewer *geo.Coordinate, muted content.MuteSet) []NotificationRequest {
	d.mu.Lock()
	defer d.mu.Unlock()

	var requests []NotificationRequest
	for _, update := range updates {
		if muted.Muted(update.Category) {
			continue
		}

		current := d.engine.Evaluate(update, viewer).IsRelevant
		previous := d.lastRelevant[update.ID]

		if current && !previous {
			if _, seen := d.notified[update.ID]; !seen {
				d.notified[update.ID] = struct{}{}
				requests = append(requests, buildRequest(update))
			}
		}

		d.lastRelevant[update.ID] = current
	}

	return requests
}

// buildRequest formats the notification payload for an update.
func buildRequest(update content.LocalUpdate) NotificationRequest {
	return NotificationRequest{
		UpdateID: update.ID,
		Category: update.Category,
		Title:    update.Category.Label() + " nearby",
		Body:     update.Body,
		Tag:      "update-" + update.ID,
	}
}

// Deliver hands requests to the notifier chain, first to last, stopping
// at the first channel that accepts each request. Delivery failure on
// every channel is logged and otherwise ignored; the ledger marked the
// update notified at emission time, so correctness does not depend on
// which channel succeeded.
func (d *Dispatcher) Deliver(ctx context.Context, notifiers []Notifier, requests []NotificationRequest) {
	for _, req := range requests {
		delivered := false
		for _, n := range notifiers {
			if err := n.Notify(ctx, req); err != nil {
				d.logger.Debug("notification channel failed",
					zap.String("update_id", req.UpdateID),
					zap.Error(err),
				)
				continue
			}
			delivered = true
			break
		}

		if !delivered {
			d.logger.Warn("notification dropped on all channels",
				zap.String("update_id", req.UpdateID),
			)
		}
	}
}

// String implements fmt.Stringer for log output.
func (r NotificationRequest) String() string {
	return fmt.Sprintf("%s: %s", r.Title, r.Body)
}
