package events

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/anchorgo/sdk-go/coder"
	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/provider"
)

// Observer streams a program's events by subscribing to log notifications
// that mention the program. It provides reconnection with exponential
// backoff and filtering capabilities.
type Observer struct {
	prov      *provider.Provider
	programID solana.PublicKey
	coder     *coder.EventCoder
	handlers  []handlerEntry
	log       *logrus.Entry

	// Reconnection backoff settings
	initialBackoff time.Duration
	maxBackoff     time.Duration

	// Synchronization
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
	running  bool
}

// ObserverOption is a function that configures an Observer.
type ObserverOption func(*Observer)

// WithReconnectBackoff sets the initial and maximum backoff durations for
// reconnection. Default is 1s initial, 60s max with exponential growth.
func WithReconnectBackoff(initial, max time.Duration) ObserverOption {
	return func(o *Observer) {
		o.initialBackoff = initial
		o.maxBackoff = max
	}
}

// WithLogger sets the logger used for stream and handler errors.
func WithLogger(log *logrus.Entry) ObserverOption {
	return func(o *Observer) {
		o.log = log
	}
}

// NewObserver creates an Observer for one program's events. The event coder
// is typically taken from the program client (prog.Coder.Events).
func NewObserver(prov *provider.Provider, programID solana.PublicKey, c *coder.EventCoder, opts ...ObserverOption) *Observer {
	obs := &Observer{
		prov:           prov,
		programID:      programID,
		coder:          c,
		handlers:       make([]handlerEntry, 0),
		log:            logrus.WithField("component", "events"),
		initialBackoff: 1 * time.Second,
		maxBackoff:     60 * time.Second,
		stopChan:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(obs)
	}

	return obs
}

// OnEvent registers a handler for decoded events with optional filters.
// Multiple handlers can be registered. Filters are ANDed together.
// Handlers are called sequentially for each matching event.
func (o *Observer) OnEvent(handler EventHandler, filters ...EventFilter) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.handlers = append(o.handlers, handlerEntry{
		handler: handler,
		filters: filters,
	})
}

// Start begins streaming log notifications for the program.
// This method blocks until the context is cancelled or Stop() is called.
// It automatically resubscribes with exponential backoff on stream failures.
func (o *Observer) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return errors.NewEventsError(errors.STREAM_ERROR, "observer already running", nil)
	}
	o.running = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	// Stop must unblock a pending Recv, so the stream runs under a context
	// cancelled alongside stopChan.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-o.stopChan:
			cancel()
		case <-runCtx.Done():
		}
	}()

	backoff := o.initialBackoff

	for {
		if o.stopping() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := o.streamOnce(runCtx)
		if err == nil {
			// Stopped cleanly.
			return nil
		}
		if o.stopping() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		o.log.WithError(err).Warn("log stream disconnected; reconnecting")
		select {
		case <-o.stopChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > o.maxBackoff {
			backoff = o.maxBackoff
		}
	}
}

// streamOnce subscribes and pumps notifications until the subscription
// breaks (returned as an error) or the observer stops (returned as nil).
func (o *Observer) streamOnce(ctx context.Context) error {
	wsClient, err := o.prov.WS(ctx)
	if err != nil {
		return err
	}

	sub, err := wsClient.LogsSubscribeMentions(o.programID, o.prov.Commitment())
	if err != nil {
		return errors.NewEventsError(errors.STREAM_ERROR, "logs subscribe", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-o.stopChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := sub.Recv(ctx)
		if err != nil {
			if o.stopping() {
				return nil
			}
			return errors.NewEventsError(errors.STREAM_DISCONNECTED, "log stream receive", err)
		}
		if msg.Value.Err != nil {
			// Failed transactions still produce notifications; their
			// events never took effect.
			continue
		}

		evts, err := ParseLogs(o.coder, o.programID, msg.Value.Logs)
		if err != nil {
			o.log.WithError(err).Warn("failed to parse event logs")
			continue
		}
		for _, evt := range evts {
			evt.Signature = msg.Value.Signature
			evt.Slot = msg.Context.Slot
			o.dispatch(evt)
		}
	}
}

// dispatch runs an event through every registered handler whose filters all
// match. Handler errors are logged and do not stop the stream.
func (o *Observer) dispatch(evt Event) {
	o.mu.RLock()
	entries := o.handlers
	o.mu.RUnlock()

	for _, entry := range entries {
		matched := true
		for _, filter := range entry.filters {
			if !filter(evt) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		if err := entry.handler(evt); err != nil {
			o.log.WithError(err).WithField("event", evt.Name).Warn("event handler failed")
		}
	}
}

func (o *Observer) stopping() bool {
	select {
	case <-o.stopChan:
		return true
	default:
		return false
	}
}

// Stop gracefully stops streaming, unblocking a Start that is waiting on
// the stream. It's safe to call Stop multiple times.
func (o *Observer) Stop() error {
	o.stopOnce.Do(func() {
		close(o.stopChan)
	})
	return nil
}
