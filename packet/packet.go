// Package packet implements the wire format shared by the chat server, the
// interactive client, and any one-shot sender such as the web gateway.
//
// A packet is a single UDP datagram carrying one UTF-8 JSON object. Every
// object has a "type" field naming one of the known packet types; the
// remaining fields depend on the type (see spec.go). Both ends decode and
// validate before acting on a packet, so a malformed datagram can never
// reach a handler.
package packet

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MaxSize is the datagram size ceiling. Packets are read into a buffer of
// this size and refused at encode time if they would exceed it.
const MaxSize = 1024

// DefaultPort is the port the server binds when none is configured.
const DefaultPort = 5000

// Returned when inbound bytes are not a JSON object.
var ErrMalformed = errors.New("malformed packet")

// Returned when an encoded packet would not fit in a single datagram.
var ErrTooLarge = errors.New("packet exceeds datagram size")

// Packet is a decoded wire record. Field values are accessed with Type and
// String; a validated packet is guaranteed to have a string value for every
// required field of its type.
type Packet map[string]interface{}

// Type returns the packet's type tag, or "" if absent.
func (p Packet) Type() string {
	return p.String("type")
}

// String returns the named field as a string, or "" if the field is absent
// or not a string.
func (p Packet) String(field string) string {
	s, _ := p[field].(string)
	return s
}

// Encode serializes a packet into a single datagram payload.
func Encode(p Packet) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode packet: %w", err)
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Decode parses a datagram payload. The result is not schema-checked, use
// Validate before dispatching on it.
func Decode(data []byte) (Packet, error) {
	var p Packet
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	return p, nil
}
