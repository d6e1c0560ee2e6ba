// Package events provides abstractions for decoding and watching Anchor
// program events in real-time. Programs emit events by writing
// base64-encoded, discriminator-prefixed payloads to the transaction log;
// this package walks those logs, attributes payloads to the right program
// across CPI boundaries, and surfaces decoded events through typed handlers
// with filtering capabilities.
//
// Example usage:
//
//	obs := events.NewObserver(prov, programID, prog.Coder.Events,
//	    events.WithReconnectBackoff(time.Second, time.Minute),
//	)
//
//	obs.OnEvent(func(evt events.Event) error {
//	    log.Printf("event %s: %v", evt.Name, evt.Data)
//	    return nil
//	}, events.WithName("TradeExecuted"))
//
//	ctx := context.Background()
//	if err := obs.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package events

import (
	"encoding/base64"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/anchorgo/sdk-go/coder"
)

// Log line prefixes emitted by the Solana runtime.
const (
	programLogPrefix  = "Program log: "
	programDataPrefix = "Program data: "
)

// Event is a decoded program event.
type Event struct {
	// Name is the event name from the IDL.
	Name string

	// Data holds the decoded event fields keyed by field name.
	Data map[string]any

	// Signature is the transaction that emitted the event, when known.
	Signature solana.Signature

	// Slot is the slot the transaction landed in, when known.
	Slot uint64
}

// EventHandler is a user-supplied function that processes an Event.
// Handlers are called sequentially for each event that matches registered
// filters. If the handler returns an error, the error is logged but
// streaming continues.
type EventHandler func(Event) error

// EventFilter determines whether an Event should be processed by a handler.
// Return true to allow the event, false to skip it.
type EventFilter func(Event) bool

// handlerEntry pairs a handler with its filters
type handlerEntry struct {
	handler EventHandler
	filters []EventFilter
}

// WithName returns an EventFilter that matches events with a specific name.
func WithName(name string) EventFilter {
	return func(evt Event) bool {
		return evt.Name == name
	}
}

// ParseLogs extracts and decodes the events emitted by one program from a
// transaction's log messages. The runtime interleaves logs from every
// program touched by the transaction; a stack of "Program X invoke" /
// "Program X success|failed" markers attributes each payload line to the
// program that wrote it, so events logged by CPI callees are not
// misattributed.
//
// Payload lines that do not decode as base64, or whose discriminator is
// unknown to the coder, are skipped: programs freely mix human-readable
// messages into the same log stream.
func ParseLogs(c *coder.EventCoder, programID solana.PublicKey, logs []string) ([]Event, error) {
	var out []Event
	var stack []string
	target := programID.String()

	for _, line := range logs {
		if payload, ok := strings.CutPrefix(line, programLogPrefix); ok {
			if current(stack) == target {
				if evt, ok, err := decodePayload(c, payload); err != nil {
					return nil, err
				} else if ok {
					out = append(out, evt)
				}
			}
			continue
		}
		if payload, ok := strings.CutPrefix(line, programDataPrefix); ok {
			if current(stack) == target {
				if evt, ok, err := decodePayload(c, payload); err != nil {
					return nil, err
				} else if ok {
					out = append(out, evt)
				}
			}
			continue
		}

		// "Program <id> invoke [depth]" pushes; "Program <id> success"
		// and "Program <id> failed: ..." pop. Other "Program <id> ..."
		// lines (consumed units, returns) leave the stack alone.
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[0] == "Program" {
			switch fields[2] {
			case "invoke":
				stack = append(stack, fields[1])
			case "success", "failed:":
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}
	return out, nil
}

func current(stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}

func decodePayload(c *coder.EventCoder, payload string) (Event, bool, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Plain-text program log, not an event payload.
		return Event{}, false, nil
	}
	name, data, ok, err := c.Decode(raw)
	if err != nil {
		return Event{}, false, err
	}
	if !ok {
		return Event{}, false, nil
	}
	return Event{Name: name, Data: data}, true, nil
}
