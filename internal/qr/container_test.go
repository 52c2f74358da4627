package qr

import (
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/getyourway/scanpad-go/internal/protocol"
)

func TestContainerRoundTrip(t *testing.T) {
	cfg := FullConfig{
		0:  {protocol.TextAction("Hi", 10)},
		5:  {protocol.HidAction(protocol.HIDKeyEnter, protocol.ModLeftShift, 0)},
		16: {protocol.TextAction("ok", 0), protocol.HidAction(protocol.HIDKeyTab, 0, 250)},
	}
	for level := 1; level <= 9; level++ {
		text, err := EncodeContainer(cfg, level)
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if !strings.HasPrefix(text, "$FULL:") || !strings.HasSuffix(text, "$") {
			t.Fatalf("level %d: framing = %q", level, text)
		}
		got, err := DecodeContainer(text)
		if err != nil {
			t.Fatalf("level %d: decode: %v", level, err)
		}
		if !reflect.DeepEqual(got, cfg) {
			t.Errorf("level %d: round trip = %+v, want %+v", level, got, cfg)
		}
	}
}

func TestEncodeContainerDeterministic(t *testing.T) {
	cfg := FullConfig{
		3: {protocol.HidAction(protocol.HIDKeyA, 0, 0)},
		1: {protocol.TextAction("x", 0)},
		7: {protocol.HidAction(protocol.HIDKeyZ, 0, 0)},
	}
	first, err := EncodeContainer(cfg, DefaultCompressionLevel)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := EncodeContainer(cfg, DefaultCompressionLevel)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("attempt %d differs:\n%s\n%s", i, again, first)
		}
	}
}

func TestEncodeContainerRejectsUnrepresentable(t *testing.T) {
	tests := []struct {
		name   string
		action protocol.KeyAction
		want   error
	}{
		{"consumer", protocol.ConsumerAction(protocol.ConsumerVolumeUp, 0), ErrUnsupportedContainerAction},
		{"hardware", protocol.HardwareAction(protocol.HardwareScanTrigger, 0, 0), ErrUnsupportedContainerAction},
		{"modifier toggle", protocol.ModifierToggleAction(protocol.ModLeftCtrl, 0), ErrUnsupportedContainerAction},
		{"wide delay", protocol.HidAction(protocol.HIDKeyA, 0, 300), protocol.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeContainer(FullConfig{0: {tt.action}}, DefaultCompressionLevel)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeContainerRejects(t *testing.T) {
	wrap := func(bin []byte) string {
		packed, err := compress(bin, DefaultCompressionLevel)
		if err != nil {
			t.Fatal(err)
		}
		return "$FULL:" + base64.StdEncoding.EncodeToString(packed) + "$"
	}

	tests := []struct {
		name string
		text string
		want error
	}{
		{"wrong prefix", "$LUAX:abc$", ErrBadFrame},
		{"no terminator", "$FULL:abc", ErrBadFrame},
		{"bad base64", "$FULL:!!!$", ErrCorruptData},
		{"not zlib", "$FULL:" + base64.StdEncoding.EncodeToString([]byte("junk")) + "$", ErrCorruptData},
		{"bad magic", wrap([]byte{'X', 'Y', 'Z', 0x01, 0x00}), ErrBadMagic},
		{"future version", wrap([]byte{'G', 'Y', 'W', 0x02, 0x00}), ErrUnsupportedVersion},
		{"truncated key", wrap([]byte{'G', 'Y', 'W', 0x01, 0x01, 0x00}), ErrCorruptData},
		{"unknown action tag", wrap([]byte{'G', 'Y', 'W', 0x01, 0x01, 0x00, 0x01, 0x07}), ErrUnsupportedContainerAction},
		{"trailing bytes", wrap([]byte{'G', 'Y', 'W', 0x01, 0x00, 0xFF}), ErrCorruptData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeContainer(tt.text); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
