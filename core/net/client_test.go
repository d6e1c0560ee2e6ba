package net

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransport(opts ...TransportOption) *Transport {
	base := []TransportOption{WithRetryBackoff(time.Millisecond)}
	return NewTransport(append(base, opts...)...)
}

func TestTransport_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := testTransport().HTTPClient().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestTransport_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	resp, err := testTransport().HTTPClient().Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransport_ReplaysRequestBodyOnRetry(t *testing.T) {
	var calls atomic.Int32
	var bodies [][]byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, body)
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
	}))
	defer srv.Close()

	payload := []byte(`{"jsonrpc":"2.0","method":"getHealth"}`)
	resp, err := testTransport().HTTPClient().Post(srv.URL, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, bodies, 2)
	assert.Equal(t, payload, bodies[0])
	assert.Equal(t, payload, bodies[1])
}

func TestTransport_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testTransport(WithMaxRetries(2)).HTTPClient().Get(srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCircuitBreaker_OpensAfterFailureLimit(t *testing.T) {
	cb := &circuitBreaker{failureLimit: 2, resetTimeout: time.Hour}

	assert.True(t, cb.allowRequest())
	cb.recordFailure()
	assert.True(t, cb.allowRequest())
	cb.recordFailure()
	assert.False(t, cb.allowRequest())

	cb.recordSuccess()
	assert.True(t, cb.allowRequest())
}

func TestCircuitBreaker_AllowsProbeAfterResetTimeout(t *testing.T) {
	cb := &circuitBreaker{failureLimit: 1, resetTimeout: 10 * time.Millisecond}

	cb.recordFailure()
	assert.False(t, cb.allowRequest())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, cb.allowRequest())
}
