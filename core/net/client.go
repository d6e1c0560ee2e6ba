// Package net provides the HTTP transport used underneath the Solana
// JSON-RPC client, adding retry with exponential backoff and a simple
// circuit breaker to prevent cascading failures when an RPC node is down.
//
// The Transport implements http.RoundTripper so it can be handed to the
// solana-go RPC client:
//
//	t := net.NewTransport(
//	    net.WithTimeout(20*time.Second),
//	    net.WithMaxRetries(5),
//	    net.WithRetryBackoff(2*time.Second),
//	)
//	rpcClient := rpc.NewWithCustomRPCClient(
//	    jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{HTTPClient: t.HTTPClient()}),
//	)
package net

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Default configuration values
const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRetries   = 3
	defaultBackoff      = 1 * time.Second
	defaultFailureLimit = 5
	defaultResetTimeout = 60 * time.Second
)

// Transport is an http.RoundTripper with retry, timeout, and circuit
// breaker capabilities.
type Transport struct {
	base           http.RoundTripper
	timeout        time.Duration
	maxRetries     int
	retryBackoff   time.Duration
	circuitBreaker *circuitBreaker
}

// TransportOption is a function that configures a Transport.
type TransportOption func(*Transport)

// WithTimeout sets the per-request timeout (default: 30s).
func WithTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		t.timeout = d
	}
}

// WithMaxRetries sets the maximum number of retry attempts (default: 3).
func WithMaxRetries(n int) TransportOption {
	return func(t *Transport) {
		t.maxRetries = n
	}
}

// WithRetryBackoff sets the base duration for exponential backoff (default: 1s).
func WithRetryBackoff(d time.Duration) TransportOption {
	return func(t *Transport) {
		t.retryBackoff = d
	}
}

// WithBaseTransport sets the underlying round tripper (default: http.DefaultTransport).
func WithBaseTransport(rt http.RoundTripper) TransportOption {
	return func(t *Transport) {
		t.base = rt
	}
}

// NewTransport creates a new retrying transport with the given options.
func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{
		base:         http.DefaultTransport,
		timeout:      defaultTimeout,
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultBackoff,
		circuitBreaker: &circuitBreaker{
			failureLimit: defaultFailureLimit,
			resetTimeout: defaultResetTimeout,
		},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// HTTPClient wraps the transport in an *http.Client carrying its timeout.
func (t *Transport) HTTPClient() *http.Client {
	return &http.Client{
		Transport: t,
		Timeout:   t.timeout,
	}
}

// RoundTrip executes the request with retry logic and circuit breaker.
// Requests are retried on transport errors and 5xx responses; 4xx responses
// are returned to the caller unchanged.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.circuitBreaker.allowRequest() {
		return nil, fmt.Errorf("net: circuit breaker is open")
	}

	// Buffer the request body so it can be replayed on retries.
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("net: read request body: %w", err)
		}
		req.Body.Close()
	}

	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		default:
		}

		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			req.ContentLength = int64(len(bodyBytes))
		}

		resp, err := t.base.RoundTrip(req)
		if err != nil {
			lastErr = err
			if attempt < t.maxRetries {
				t.backoff(req, attempt)
				continue
			}
			t.circuitBreaker.recordFailure()
			return nil, fmt.Errorf("net: request failed after %d attempts: %w", attempt+1, err)
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d %s", resp.StatusCode, resp.Status)
			if attempt < t.maxRetries {
				t.backoff(req, attempt)
				continue
			}
			t.circuitBreaker.recordFailure()
			return nil, fmt.Errorf("net: server error after %d attempts: %w", attempt+1, lastErr)
		}

		t.circuitBreaker.recordSuccess()
		return resp, nil
	}

	return nil, fmt.Errorf("net: unexpected retry exhaustion: %w", lastErr)
}

// backoff waits backoff * 2^attempt, or until the request context ends.
func (t *Transport) backoff(req *http.Request, attempt int) {
	duration := t.retryBackoff * (1 << uint(attempt)) // 2^attempt
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-req.Context().Done():
	}
}

// circuitBreaker implements a simple circuit breaker pattern.
type circuitBreaker struct {
	mu           sync.RWMutex
	failures     int
	lastFailTime time.Time
	failureLimit int
	resetTimeout time.Duration
	state        circuitState
}

type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
)

// allowRequest checks if the circuit breaker allows the request to proceed.
func (cb *circuitBreaker) allowRequest() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	if cb.state == stateClosed {
		return true
	}

	// Check if reset timeout has elapsed
	if time.Since(cb.lastFailTime) > cb.resetTimeout {
		return true
	}

	return false
}

// recordSuccess records a successful request and may close the circuit.
func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = stateClosed
}

// recordFailure records a failed request and may open the circuit.
func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailTime = time.Now()

	if cb.failures >= cb.failureLimit {
		cb.state = stateOpen
	}
}
