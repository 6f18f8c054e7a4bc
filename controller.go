package dragonsmp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dragonsmp/dragonsmp/internal/desktop"
	"github.com/dragonsmp/dragonsmp/internal/metrics"
	"github.com/dragonsmp/dragonsmp/internal/poller"
	"github.com/dragonsmp/dragonsmp/internal/timer"
	"github.com/dragonsmp/dragonsmp/internal/ui"
)

const (
	// CopyTitle and CopyDesc are the toast shown after the server address
	// was copied.
	CopyTitle = "IP ADRESİ KOPYALANDI!"
	CopyDesc  = "IP adresi panoya kopyalandı"

	subscriberBuffer = 16
)

var (
	// ErrClosed is returned by operations on a controller whose Run has
	// returned.
	ErrClosed = errors.New("dragonsmp: controller closed")

	// ErrRunning is returned by a second concurrent call to Run.
	ErrRunning = errors.New("dragonsmp: controller already running")
)

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// LinkOpener opens a URL outside the process, typically in a browser.
type LinkOpener interface {
	Open(ctx context.Context, url string) error
}

// Controller owns the interaction state of one DragonSMP front end: server
// status polling, the toast, the secret key sequence and panel, and the
// application form modal.
//
// Every transition runs under one lock, so events are applied one at a time
// and run to completion, as on a UI event loop. Timers (toast dismissal,
// delayed links) fire under the same lock and are cancelled, not merely
// ignored, when superseded.
//
// The typical lifecycle is:
//
//	c, err := dragonsmp.NewController()
//	if err != nil {
//	    return err
//	}
//	go c.Run(ctx) // polls until ctx is cancelled
//
//	c.KeyPress("s")
//	snap := c.Snapshot()
//
// After Run returns the controller is closed: timers are cancelled, further
// events are ignored and subscriptions are closed.
type Controller struct {
	serverAddress string
	statusURL     string
	formURL       string
	interval      time.Duration
	timeout       time.Duration
	clock         clockwork.Clock
	logger        *slog.Logger
	clipboard     Clipboard
	fallback      Clipboard
	opener        LinkOpener
	callbacks     []func(Snapshot)
	pollMetrics   *metrics.PollMetrics
	uiMetrics     *metrics.InteractionMetrics

	// linkCtx bounds link opens; cancelled on teardown.
	linkCtx    context.Context
	linkCancel context.CancelFunc
	linkWG     sync.WaitGroup

	mu        sync.Mutex
	state     ui.State
	toast     *timer.Slot
	link      *timer.Slot
	running   bool
	closed    bool
	scheduler *poller.Scheduler

	subMu       sync.Mutex
	subscribers map[chan Snapshot]struct{}
	subClosed   bool
}

// NewController creates a [Controller] with the given options.
//
// Defaults:
//   - Server address: dragonsmp.shock.gg
//   - Status API: https://api.mcsrvstat.us/3/
//   - Polling interval: 30 seconds, no request timeout
//   - Clipboard: system clipboard, then OSC 52 on the controlling terminal
//   - Links: the system's web browser
//
// Returns an error if any option is invalid.
func NewController(opts ...Option) (*Controller, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		serverAddress: cfg.serverAddress,
		statusURL:     cfg.statusURL(),
		formURL:       cfg.formURL,
		interval:      cfg.pollingInterval,
		timeout:       cfg.requestTimeout,
		clock:         cfg.clock,
		logger:        cfg.logger,
		clipboard:     cfg.clipboard,
		fallback:      cfg.fallback,
		opener:        cfg.opener,
		callbacks:     cfg.stateCallbacks,
		subscribers:   make(map[chan Snapshot]struct{}),
	}
	if c.clipboard == nil {
		c.clipboard = desktop.NewSystemClipboard()
	}
	if c.fallback == nil {
		c.fallback = desktop.NewOSC52Clipboard()
	}
	if c.opener == nil {
		c.opener = desktop.NewBrowserOpener()
	}
	if cfg.registry != nil {
		c.pollMetrics = metrics.NewPollMetrics(cfg.registry)
		c.uiMetrics = metrics.NewInteractionMetrics(cfg.registry)
	}

	c.toast = timer.NewSlot(c.clock, &c.mu)
	c.link = timer.NewSlot(c.clock, &c.mu)
	c.linkCtx, c.linkCancel = context.WithCancel(context.Background())

	return c, nil
}

// ServerAddress returns the Minecraft server address.
func (c *Controller) ServerAddress() string {
	return c.serverAddress
}

// FormURL returns the application form URL.
func (c *Controller) FormURL() string {
	return c.formURL
}

// Run polls the server status until ctx is cancelled, applying each result
// issued by the latest poll tick and discarding results of superseded ticks.
//
// The first poll is issued immediately. When ctx is done Run stops polling,
// cancels pending toast and link timers, closes all subscriptions and
// returns nil. A controller runs at most once: Run returns [ErrRunning] while
// another Run is active and [ErrClosed] afterwards.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.running:
		c.mu.Unlock()
		return ErrRunning
	}
	c.running = true
	sched := poller.NewScheduler(c.statusURL, c.interval, c.timeout, c.clock, c.logger)
	c.scheduler = sched
	c.mu.Unlock()

	c.logger.Info("controller started",
		"status_url", c.statusURL,
		"interval", c.interval.String(),
	)

	var callbacksDone chan struct{}
	if len(c.callbacks) > 0 {
		callbacksDone = make(chan struct{})
		go c.dispatchCallbacks(c.Subscribe(), callbacksDone)
	}

	sched.Start(ctx)
	results := sched.Results()

	for {
		select {
		case <-ctx.Done():
			c.teardown(sched)
			if callbacksDone != nil {
				<-callbacksDone
			}
			c.logger.Info("controller stopped")
			return nil

		case result, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			c.applyResult(result)
		}
	}
}

// teardown closes the controller and releases its timers, poller and
// subscriptions.
func (c *Controller) teardown(sched *poller.Scheduler) {
	c.mu.Lock()
	c.closed = true
	c.toast.Cancel()
	c.link.Cancel()
	c.linkCancel()
	c.mu.Unlock()

	sched.Stop()
	c.linkWG.Wait()

	c.subMu.Lock()
	c.subClosed = true
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
	c.subMu.Unlock()
}

// applyResult applies a poll result if it belongs to the latest issued tick.
func (c *Controller) applyResult(r poller.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if r.Seq != c.scheduler.Issued() {
		c.pollMetrics.Stale()
		c.logger.Debug("discarding stale status", "seq", r.Seq)
		return
	}
	if r.Err != nil {
		c.pollMetrics.Observe(metrics.PollFailure, r.Latency)
		c.logger.Warn("status poll failed",
			"seq", r.Seq,
			"url", r.URL,
			"status_code", r.StatusCode,
			"error", r.Err.Error(),
		)
		return
	}

	c.pollMetrics.Observe(metrics.PollSuccess, r.Latency)
	c.pollMetrics.SetPlayers(r.Status.Players.Online)
	c.logger.Debug("status applied",
		"seq", r.Seq,
		"online", r.Status.Online,
		"players", r.Status.Players.Online,
		"latency_ms", r.Latency.Milliseconds(),
	)
	c.apply(func(s ui.State) (ui.State, []ui.Effect) {
		return ui.ApplyStatus(s, r.Status), nil
	})
}

// Notify shows a toast, replacing any visible one. The toast is dismissed
// 3000 ms after the latest call; earlier pending dismissals are cancelled.
func (c *Controller) Notify(title, desc string) {
	c.update(func(s ui.State) (ui.State, []ui.Effect) {
		c.uiMetrics.Toast()
		return ui.ShowToast(s, title, desc)
	})
}

// Copy writes text to the primary clipboard or, if that fails, to the
// fallback clipboard, then shows the copy confirmation toast.
//
// When both clipboards fail no toast is shown and the error is returned;
// callers driving a UI may ignore it.
func (c *Controller) Copy(ctx context.Context, text string) error {
	if c.isClosed() {
		return ErrClosed
	}

	result := "primary"
	err := c.clipboard.WriteText(ctx, text)
	if err != nil {
		c.logger.Debug("primary clipboard failed", "error", err)
		result = "fallback"
		if ferr := c.fallback.WriteText(ctx, text); ferr != nil {
			c.uiMetrics.ClipboardCopy("failed")
			c.logger.Debug("fallback clipboard failed", "error", ferr)
			return fmt.Errorf("copy to clipboard: %w", errors.Join(desktop.ErrClipboardUnavailable, err, ferr))
		}
	}

	c.uiMetrics.ClipboardCopy(result)
	c.Notify(CopyTitle, CopyDesc)
	return nil
}

// KeyPress feeds one keystroke: a single character or a key name such as
// [KeyEscape].
func (c *Controller) KeyPress(key string) {
	c.update(func(s ui.State) (ui.State, []ui.Effect) {
		next, effects := ui.PressKey(s, key)
		if !s.Secret.Visible && next.Secret.Visible {
			c.uiMetrics.SecretUnlocked()
			c.logger.Debug("secret panel unlocked")
		}
		return next, effects
	})
}

// SetSecretInput records the secret panel's input field value.
func (c *Controller) SetSecretInput(input string) {
	c.update(func(s ui.State) (ui.State, []ui.Effect) {
		next, effects := ui.SetSecretInput(s, input)
		if !s.Secret.Resolved && next.Secret.Resolved {
			c.uiMetrics.SecretResolved(next.Secret.Input)
		}
		return next, effects
	})
}

// OpenSecret shows the secret panel, empty and unresolved.
func (c *Controller) OpenSecret() {
	c.update(func(s ui.State) (ui.State, []ui.Effect) {
		return ui.OpenSecret(s), nil
	})
}

// CloseSecret hides the secret panel, resets it and cancels a pending link.
func (c *Controller) CloseSecret() {
	c.update(ui.CloseSecret)
}

// OpenForm shows the application form modal.
func (c *Controller) OpenForm() {
	c.update(func(s ui.State) (ui.State, []ui.Effect) {
		return ui.OpenForm(s), nil
	})
}

// CloseForm hides the application form modal.
func (c *Controller) CloseForm() {
	c.update(func(s ui.State) (ui.State, []ui.Effect) {
		return ui.CloseForm(s), nil
	})
}

// ClickOverlay handles a click on the topmost open modal: the secret panel
// if visible, otherwise the form modal. A click on the overlay closes the
// modal; a click on its body does nothing.
func (c *Controller) ClickOverlay(target Target) {
	c.update(func(s ui.State) (ui.State, []ui.Effect) {
		if s.Secret.Visible {
			return ui.ClickSecret(s, target)
		}
		return ui.ClickForm(s, target), nil
	})
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotOf(c.state)
}

// Subscribe returns a channel receiving a [Snapshot] after every transition.
//
// Sends are non-blocking: a subscriber whose buffer is full misses
// snapshots. Caller must call [Controller.Unsubscribe] when done. The
// channel is closed when the controller shuts down; subscribing to a closed
// controller returns a closed channel.
func (c *Controller) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if c.subClosed {
		close(ch)
		return ch
	}
	c.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes the channel.
// Safe to call with a channel that was already unsubscribed.
func (c *Controller) Unsubscribe(ch <-chan Snapshot) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for sub := range c.subscribers {
		if sub == ch {
			delete(c.subscribers, sub)
			close(sub)
			return
		}
	}
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// update runs one event transition unless the controller is closed.
func (c *Controller) update(fn func(ui.State) (ui.State, []ui.Effect)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.apply(fn)
}

// apply runs a transition, performs its effects and publishes the result.
// Must be called with c.mu held.
func (c *Controller) apply(fn func(ui.State) (ui.State, []ui.Effect)) {
	next, effects := fn(c.state)
	c.state = next
	for _, e := range effects {
		c.perform(e)
	}
	c.publish(snapshotOf(c.state))
}

// perform executes one effect. Must be called with c.mu held.
func (c *Controller) perform(e ui.Effect) {
	switch e.Kind {
	case ui.EffectArmToast:
		c.toast.Arm(e.Delay, func() {
			c.apply(func(s ui.State) (ui.State, []ui.Effect) {
				return ui.DismissToast(s), nil
			})
		})

	case ui.EffectOpenLink:
		url := e.URL
		c.link.Arm(e.Delay, func() {
			c.openLink(url)
		})

	case ui.EffectCancelLink:
		if c.link.Cancel() {
			c.logger.Debug("pending link cancelled")
		}
	}
}

// openLink launches url without holding the controller lock.
func (c *Controller) openLink(url string) {
	c.linkWG.Add(1)
	go func() {
		defer c.linkWG.Done()
		err := c.opener.Open(c.linkCtx, url)
		c.uiMetrics.LinkOpened(err == nil)
		if err != nil {
			c.logger.Warn("failed to open link", "url", url, "error", err)
			return
		}
		c.logger.Debug("link opened", "url", url)
	}()
}

func (c *Controller) publish(snap Snapshot) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for ch := range c.subscribers {
		select {
		case ch <- snap.clone():
		default:
		}
	}
}

// dispatchCallbacks feeds snapshots to the state callbacks until the
// subscription is closed.
func (c *Controller) dispatchCallbacks(ch <-chan Snapshot, done chan<- struct{}) {
	defer close(done)
	for snap := range ch {
		for _, cb := range c.callbacks {
			invokeCallbackSafe(cb, snap.clone(), c.logger)
		}
	}
}

// invokeCallbackSafe calls a state callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Snapshot), snap Snapshot, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("state callback panicked", "panic", r)
		}
	}()
	cb(snap)
}
