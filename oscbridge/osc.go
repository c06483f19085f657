// Package oscbridge listens for Muse OSC packets over UDP and forwards the
// band powers to the relay endpoint.
package oscbridge

import (
	"errors"
	"fmt"

	"github.com/hypebeast/go-osc/osc"
)

var errEmptyPacket = errors.New("osc: empty packet")

// Decode parses a packet into its messages, flattening bundles. A packet the
// parser cannot handle is reported as an error, never a panic.
func Decode(packet []byte) (msgs []*osc.Message, err error) {
	if len(packet) == 0 {
		return nil, errEmptyPacket
	}
	defer func() {
		if r := recover(); r != nil {
			msgs, err = nil, fmt.Errorf("osc: malformed packet: %v", r)
		}
	}()
	p, err := osc.ParsePacket(string(packet))
	if err != nil {
		return nil, err
	}
	return flatten(p), nil
}

func flatten(p osc.Packet) []*osc.Message {
	switch v := p.(type) {
	case *osc.Message:
		return []*osc.Message{v}
	case *osc.Bundle:
		out := append([]*osc.Message(nil), v.Messages...)
		for _, b := range v.Bundles {
			out = append(out, flatten(b)...)
		}
		return out
	}
	return nil
}

// firstFloat returns the first argument of m as a float64.
func firstFloat(m *osc.Message) (float64, bool) {
	if len(m.Arguments) == 0 {
		return 0, false
	}
	switch v := m.Arguments[0].(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
