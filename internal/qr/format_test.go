package qr

import (
	"errors"
	"reflect"
	"testing"

	"github.com/getyourway/scanpad-go/internal/protocol"
)

func TestCommandTextForms(t *testing.T) {
	dev := protocol.Command{ID: protocol.CmdLEDSetState, Payload: []byte{0x03, 0x01}}
	if got := DeviceCommandText(dev); got != "$CMD:DEV:100301CMD$" {
		t.Errorf("DeviceCommandText = %q", got)
	}
	key := protocol.Command{ID: protocol.CmdClearKeyConfig, Payload: []byte{0x05}}
	if got := KeyCommandText(key); got != "$CMD:KEY:1205CMD$" {
		t.Errorf("KeyCommandText = %q", got)
	}
}

func TestParseFrameCommandForms(t *testing.T) {
	f, err := ParseFrame("$CMD:DEV:100301CMD$")
	if err != nil {
		t.Fatal(err)
	}
	if f.Kind != KindDeviceCommand {
		t.Fatalf("kind = %v", f.Kind)
	}
	want := protocol.Command{ID: 0x10, Payload: []byte{0x03, 0x01}}
	if !reflect.DeepEqual(f.Command, want) {
		t.Errorf("command = %+v", f.Command)
	}

	f, err = ParseFrame("$CMD:KEY:1205CMD$")
	if err != nil {
		t.Fatal(err)
	}
	if f.Kind != KindKeyCommand || f.Command.ID != 0x12 {
		t.Errorf("frame = %+v", f)
	}
}

func TestBatchTextRoundTrip(t *testing.T) {
	cmds := []protocol.Command{
		{ID: protocol.CmdLEDSetState, Payload: []byte{protocol.LEDGreen1, 1}},
		{ID: protocol.CmdBuzzerMelody, Payload: []byte{protocol.MelodyConfirm}},
	}
	text, err := BatchText(cmds)
	if err != nil {
		t.Fatal(err)
	}
	f, err := ParseFrame(text)
	if err != nil {
		t.Fatal(err)
	}
	if f.Kind != KindBatch {
		t.Fatalf("kind = %v", f.Kind)
	}
	if !reflect.DeepEqual(f.Batch, cmds) {
		t.Errorf("batch = %+v, want %+v", f.Batch, cmds)
	}
}

func TestParseFrameFullConfig(t *testing.T) {
	cfg := FullConfig{2: {protocol.TextAction("go", 0)}}
	text, err := EncodeContainer(cfg, DefaultCompressionLevel)
	if err != nil {
		t.Fatal(err)
	}
	f, err := ParseFrame(text)
	if err != nil {
		t.Fatal(err)
	}
	if f.Kind != KindFullConfig || !reflect.DeepEqual(f.FullConfig, cfg) {
		t.Errorf("frame = %+v", f)
	}
}

func TestParseFrameLuaFragments(t *testing.T) {
	tests := []struct {
		text string
		want Fragment
	}{
		{"$LUA1:QUJD$", Fragment{Number: 1, Payload: "QUJD"}},
		{"$LUA42:REVG$", Fragment{Number: 42, Payload: "REVG"}},
		{"$LUAX:R0hJ$", Fragment{Final: true, Payload: "R0hJ"}},
	}
	for _, tt := range tests {
		f, err := ParseFrame(tt.text)
		if err != nil {
			t.Fatalf("%q: %v", tt.text, err)
		}
		if f.Kind != KindLuaFragment || f.Fragment != tt.want {
			t.Errorf("%q: frame = %+v", tt.text, f)
		}
	}
}

func TestParseFragmentRoundTripThroughText(t *testing.T) {
	frags, err := Split([]byte("print('hello scanner')"), 16, DefaultCompressionLevel)
	if err != nil {
		t.Fatal(err)
	}
	parsed := make([]Fragment, len(frags))
	for i, f := range frags {
		p, err := ParseFragment(f.Text())
		if err != nil {
			t.Fatalf("fragment %d: %v", i+1, err)
		}
		parsed[i] = p
	}
	got, err := Reassemble(parsed)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "print('hello scanner')" {
		t.Errorf("script = %q", got)
	}
}

func TestParseFrameRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unknown marker", "$NOPE:abc$"},
		{"plain text", "hello"},
		{"cmd without terminator", "$CMD:DEV:1003"},
		{"cmd odd hex", "$CMD:DEV:100CMD$"},
		{"cmd empty", "$CMD:DEV:CMD$"},
		{"lua bad number", "$LUA0:abc$"},
		{"lua number too big", "$LUA100:abc$"},
		{"lua no terminator", "$LUA1:abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFrame(tt.text); !errors.Is(err, ErrBadFrame) {
				t.Errorf("err = %v, want ErrBadFrame", err)
			}
		})
	}
}
