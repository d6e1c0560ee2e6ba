package events

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	anchorgo "github.com/anchorgo/sdk-go"
	"github.com/anchorgo/sdk-go/coder"
	"github.com/anchorgo/sdk-go/idl"
	"github.com/anchorgo/sdk-go/provider"
)

const eventsIDL = `{
  "version": "0.1.0",
  "name": "dex",
  "instructions": [
    {"name": "placeOrder", "accounts": [], "args": []}
  ],
  "events": [
    {
      "name": "TradeExecuted",
      "fields": [
        {"name": "amount", "type": "u64", "index": false},
        {"name": "memo", "type": "string", "index": false}
      ]
    }
  ]
}`

var (
	dexProgram   = solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")
	otherProgram = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
)

func eventCoder(t *testing.T) *coder.EventCoder {
	t.Helper()
	def, err := idl.Parse([]byte(eventsIDL))
	require.NoError(t, err)
	return coder.New(def).Events
}

func tradePayload(t *testing.T, c *coder.EventCoder, amount uint64, memo string) string {
	t.Helper()
	raw, err := c.Encode("TradeExecuted", map[string]any{"amount": amount, "memo": memo})
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestParseLogs_DecodesOwnEvents(t *testing.T) {
	c := eventCoder(t)
	logs := []string{
		"Program " + dexProgram.String() + " invoke [1]",
		"Program log: Instruction: PlaceOrder",
		"Program data: " + tradePayload(t, c, 100, "fill"),
		"Program " + dexProgram.String() + " consumed 4231 of 200000 compute units",
		"Program " + dexProgram.String() + " success",
	}

	evts, err := ParseLogs(c, dexProgram, logs)
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, "TradeExecuted", evts[0].Name)
	assert.Equal(t, uint64(100), evts[0].Data["amount"])
	assert.Equal(t, "fill", evts[0].Data["memo"])
}

func TestParseLogs_AttributesAcrossCPI(t *testing.T) {
	c := eventCoder(t)

	// The inner program emits a payload that happens to carry a valid
	// discriminator; it must not be attributed to the outer program.
	logs := []string{
		"Program " + dexProgram.String() + " invoke [1]",
		"Program data: " + tradePayload(t, c, 1, "outer before"),
		"Program " + otherProgram.String() + " invoke [2]",
		"Program data: " + tradePayload(t, c, 999, "inner"),
		"Program " + otherProgram.String() + " success",
		"Program data: " + tradePayload(t, c, 2, "outer after"),
		"Program " + dexProgram.String() + " success",
	}

	evts, err := ParseLogs(c, dexProgram, logs)
	require.NoError(t, err)
	require.Len(t, evts, 2)
	assert.Equal(t, uint64(1), evts[0].Data["amount"])
	assert.Equal(t, uint64(2), evts[1].Data["amount"])
}

func TestParseLogs_FailedCPIStillPops(t *testing.T) {
	c := eventCoder(t)
	logs := []string{
		"Program " + otherProgram.String() + " invoke [1]",
		"Program " + otherProgram.String() + " failed: custom program error: 0x1",
		"Program " + dexProgram.String() + " invoke [1]",
		"Program data: " + tradePayload(t, c, 7, "after failure"),
		"Program " + dexProgram.String() + " success",
	}

	evts, err := ParseLogs(c, dexProgram, logs)
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, uint64(7), evts[0].Data["amount"])
}

func TestParseLogs_SkipsPlainTextAndUnknownPayloads(t *testing.T) {
	c := eventCoder(t)
	logs := []string{
		"Program " + dexProgram.String() + " invoke [1]",
		"Program log: plain human-readable message",
		"Program log: " + base64.StdEncoding.EncodeToString([]byte("valid base64, unknown discriminator")),
		"Program " + dexProgram.String() + " success",
	}

	evts, err := ParseLogs(c, dexProgram, logs)
	require.NoError(t, err)
	assert.Empty(t, evts)
}

func TestWithNameFilter(t *testing.T) {
	filter := WithName("TradeExecuted")
	assert.True(t, filter(Event{Name: "TradeExecuted"}))
	assert.False(t, filter(Event{Name: "OrderCancelled"}))
}

func TestObserver_DispatchHonorsFilters(t *testing.T) {
	obs := NewObserver(nil, dexProgram, eventCoder(t))

	var seen []string
	obs.OnEvent(func(evt Event) error {
		seen = append(seen, "all:"+evt.Name)
		return nil
	})
	obs.OnEvent(func(evt Event) error {
		seen = append(seen, "filtered:"+evt.Name)
		return nil
	}, WithName("TradeExecuted"))

	obs.dispatch(Event{Name: "TradeExecuted"})
	obs.dispatch(Event{Name: "OrderCancelled"})

	assert.Equal(t, []string{
		"all:TradeExecuted",
		"filtered:TradeExecuted",
		"all:OrderCancelled",
	}, seen)
}

func TestObserver_StopIsIdempotent(t *testing.T) {
	obs := NewObserver(nil, dexProgram, eventCoder(t))
	require.NoError(t, obs.Stop())
	require.NoError(t, obs.Stop())
}

func TestObserver_StopUnblocksStart(t *testing.T) {
	// The cluster has no websocket endpoint, so every subscribe attempt
	// fails and Start parks in the reconnect backoff.
	prov := provider.New(anchorgo.Cluster{RPC: "http://127.0.0.1:0"}, nil)
	obs := NewObserver(prov, dexProgram, eventCoder(t),
		WithReconnectBackoff(time.Hour, time.Hour))

	done := make(chan error, 1)
	go func() { done <- obs.Start(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, obs.Stop())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}
