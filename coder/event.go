package coder

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/idl"
)

// EventCoder decodes event payloads emitted through program logs: the 8-byte
// event discriminator followed by the borsh-serialized event fields.
type EventCoder struct {
	idl   *idl.Idl
	types *TypesCoder

	byDiscriminator map[Discriminator]*idl.Event
}

// NewEventCoder builds an EventCoder for the given IDL.
func NewEventCoder(def *idl.Idl, types *TypesCoder) *EventCoder {
	byDisc := make(map[Discriminator]*idl.Event, len(def.Events))
	for i := range def.Events {
		ev := &def.Events[i]
		byDisc[EventDiscriminator(ev.Name)] = ev
	}
	return &EventCoder{idl: def, types: types, byDiscriminator: byDisc}
}

// Decode parses a raw event payload. The boolean result is false when the
// discriminator does not match any event in the IDL, which is not an error:
// programs routinely log payloads the client has no schema for.
func (c *EventCoder) Decode(data []byte) (string, map[string]any, bool, error) {
	if len(data) < DiscriminatorSize {
		return "", nil, false, nil
	}
	var disc Discriminator
	copy(disc[:], data[:DiscriminatorSize])

	ev, ok := c.byDiscriminator[disc]
	if !ok {
		return "", nil, false, nil
	}

	dec := bin.NewBorshDecoder(data[DiscriminatorSize:])
	fields := make(map[string]any, len(ev.Fields))
	for _, f := range ev.Fields {
		val, err := c.types.decode(dec, f.Type)
		if err != nil {
			return "", nil, false, errors.NewCoderError(errors.DECODE_FAILED,
				fmt.Sprintf("event %s field %s", ev.Name, f.Name), err)
		}
		fields[f.Name] = val
	}
	return ev.Name, fields, true, nil
}

// Encode serializes an event, mainly useful for tests and local simulation.
func (c *EventCoder) Encode(name string, fields map[string]any) ([]byte, error) {
	var ev *idl.Event
	for i := range c.idl.Events {
		if c.idl.Events[i].Name == name {
			ev = &c.idl.Events[i]
			break
		}
	}
	if ev == nil {
		return nil, errors.NewEventsError(errors.EVENT_UNKNOWN,
			fmt.Sprintf("event %q is not in the IDL", name), nil)
	}

	buf := new(bytes.Buffer)
	disc := EventDiscriminator(name)
	buf.Write(disc[:])

	enc := bin.NewBorshEncoder(buf)
	for _, f := range ev.Fields {
		if err := c.types.encode(enc, f.Type, fields[f.Name]); err != nil {
			return nil, fmt.Errorf("event %s field %s: %w", name, f.Name, err)
		}
	}
	return buf.Bytes(), nil
}
