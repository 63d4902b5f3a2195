package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"waypost/internal/domain/content"
	"waypost/internal/domain/geo"
	"waypost/internal/domain/profile"
)

// LocationSource supplies the viewer's current coordinate, or nil when
// no location is available.
type LocationSource interface {
	Current() *geo.Coordinate
}

// WatcherConfig contains configuration for the notification watcher.
type WatcherConfig struct {
	UserID       string
	TickInterval time.Duration
}

// Watcher drives the dispatcher on a timer: each tick it pulls the
// active local updates from the backend, the viewer location from the
// tracker, and the mute preferences from the preference store, runs
// one dispatch pass, and delivers whatever fired.
type Watcher struct {
	backend    content.Backend
	source     LocationSource
	prefs      profile.Preferences
	dispatcher *Dispatcher
	notifiers  []Notifier
	config     WatcherConfig
	logger     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a notification watcher. Notifiers are tried in
// order; put the native channel first and the in-app fallback last.
func NewWatcher(
	backend content.Backend,
	source LocationSource,
	prefs profile.Preferences,
	dispatcher *Dispatcher,
	notifiers []Notifier,
	config WatcherConfig,
	logger *zap.Logger,
) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		backend:    backend,
		source:     source,
		prefs:      prefs,
		dispatcher: dispatcher,
		notifiers:  notifiers,
		config:     config,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins the periodic dispatch loop.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop halts the loop and waits for the in-flight tick to finish.
func (w *Watcher) Stop(ctx context.Context) error {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick runs one dispatch pass immediately. The HTTP layer calls this
// when the viewer location changes so a freshly relevant update is not
// delayed by the timer.
func (w *Watcher) Tick(ctx context.Context) {
	w.tick(ctx)
}

func (w *Watcher) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			tickCtx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
			w.tick(tickCtx)
			cancel()
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	viewer := w.source.Current()
	if viewer == nil {
		// Nothing can be relevant without a location; skip the backend
		// round-trip entirely.
		return
	}

	updates, err := w.backend.ListLocalUpdates(ctx)
	if err != nil {
		w.logger.Warn("failed to list local updates", zap.Error(err))
		return
	}
	if len(updates) == 0 {
		return
	}

	muted, err := w.prefs.MuteSet(ctx, w.config.UserID)
	if err != nil {
		w.logger.Warn("failed to load mute preferences", zap.Error(err))
		muted = content.MuteSet{}
	}

	requests := w.dispatcher.ProcessTick(updates, viewer, muted)
	if len(requests) == 0 {
		return
	}

	w.logger.Info("surfacing local update notifications", zap.Int("count", len(requests)))
	w.dispatcher.Deliver(ctx, w.notifiers, requests)
}
