package provider

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

// HookEvent represents a named lifecycle event in a transaction's journey
// through the provider.
type HookEvent string

// Hook event constants represent the lifecycle events callers can react to.
const (
	HookBeforeSend HookEvent = "tx:before_send"
	HookAfterSend  HookEvent = "tx:after_send"
	HookConfirmed  HookEvent = "tx:confirmed"
)

// TxEvent carries the transaction (and, once assigned, its signature) to
// hook handlers.
type TxEvent struct {
	Tx        *solana.Transaction
	Signature solana.Signature
}

// HookRegistry manages lifecycle event handlers for transactions sent
// through a provider. It implements the observer pattern, allowing callers
// to register callbacks that execute sequentially when lifecycle events
// occur.
//
// Handlers are stored per event and execute in registration order.
// The registry is thread-safe for concurrent registration and triggering.
type HookRegistry struct {
	handlers map[HookEvent][]func(*TxEvent)
	mu       sync.RWMutex
}

// NewHookRegistry creates a new lifecycle hook registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		handlers: make(map[HookEvent][]func(*TxEvent)),
	}
}

// On registers a handler function for a specific lifecycle event.
// Multiple handlers can be registered for the same event and will execute
// sequentially in registration order when the event is triggered.
//
// Handlers should be quick, non-blocking operations. If a handler panics,
// the panic propagates and prevents subsequent handlers from executing.
func (r *HookRegistry) On(event HookEvent, handler func(*TxEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[event] = append(r.handlers[event], handler)
}

// Trigger executes all registered handlers for a specific lifecycle event.
// Handlers execute sequentially in registration order.
func (r *HookRegistry) Trigger(event HookEvent, evt *TxEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers, ok := r.handlers[event]
	if !ok {
		return
	}

	for _, handler := range handlers {
		handler(evt)
	}
}
