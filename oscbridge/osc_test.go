package oscbridge

import (
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
)

func TestDecodeMessage(t *testing.T) {
	packet, err := osc.NewMessage("/muse/elements/alpha_absolute", float32(0.5), int32(3), "x").MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	msgs, err := Decode(packet)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Address != "/muse/elements/alpha_absolute" {
		t.Fatalf("got %+v", msgs)
	}
	args := msgs[0].Arguments
	if args[0] != float32(0.5) || args[1] != int32(3) || args[2] != "x" {
		t.Fatalf("args = %#v", args)
	}
	if v, ok := firstFloat(msgs[0]); !ok || v != 0.5 {
		t.Fatalf("firstFloat() = %v, %v", v, ok)
	}
}

func TestDecodeBundle(t *testing.T) {
	bundle := osc.NewBundle(time.Now())
	if err := bundle.Append(osc.NewMessage("/a", float32(1))); err != nil {
		t.Fatal(err)
	}
	if err := bundle.Append(osc.NewMessage("/b", float32(2))); err != nil {
		t.Fatal(err)
	}
	packet, err := bundle.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	msgs, err := Decode(packet)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Address != "/a" || msgs[1].Address != "/b" {
		t.Fatalf("got %+v", msgs)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for name, packet := range map[string][]byte{
		"empty":        {},
		"no slash":     []byte("abc\x00"),
		"unterminated": []byte("/abc"),
		"short arg":    append([]byte("/a\x00\x00,f\x00\x00"), 0, 0),
		// blob padding runs past the end, then a string argument follows
		"blob overrun": []byte("/a\x00\x00,bs\x00\x00\x00\x00\x01x"),
		"blob length":  []byte("/a\x00\x00,b\x00\x00\xff\xff\xff\xf0"),
	} {
		msgs, err := Decode(packet)
		if err == nil {
			t.Errorf("%s: expected error, got %+v", name, msgs)
		}
	}
}

func TestFirstFloatTypes(t *testing.T) {
	for _, arg := range []any{float32(2), float64(2), int32(2), int64(2)} {
		if v, ok := firstFloat(osc.NewMessage("/x", arg)); !ok || v != 2 {
			t.Errorf("firstFloat(%T) = %v, %v", arg, v, ok)
		}
	}
	if _, ok := firstFloat(osc.NewMessage("/x")); ok {
		t.Error("firstFloat() on a message without arguments")
	}
}
