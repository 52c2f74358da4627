package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncodeActionWire(t *testing.T) {
	tests := []struct {
		name   string
		index  byte
		action KeyAction
		want   []byte
	}{
		{
			name:   "text with delay",
			index:  0,
			action: TextAction("Hi", 10),
			want:   []byte{0x00, 0x00, 0x00, 0x00, 0x0A, 0x00, 0x02, 0x48, 0x69},
		},
		{
			name:   "hid ctrl-c",
			index:  1,
			action: HidAction(0x06, ModLeftCtrl, 0),
			want:   []byte{0x01, 0x01, 0x06, 0x01, 0x00, 0x00},
		},
		{
			name:   "consumer splits low and high bytes",
			index:  0,
			action: ConsumerAction(ConsumerACHome, 0),
			want:   []byte{0x00, 0x02, 0x23, 0x02, 0x00, 0x00},
		},
		{
			name:   "hardware scan trigger",
			index:  0,
			action: HardwareAction(HardwareScanTrigger, 0x7F, 500),
			want:   []byte{0x00, 0x03, 0x14, 0x7F, 0xF4, 0x01},
		},
		{
			name:   "modifier toggle",
			index:  2,
			action: ModifierToggleAction(ModLeftShift|ModLeftGUI, 0),
			want:   []byte{0x02, 0x04, 0x00, 0x0A, 0x00, 0x00},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeAction(nil, tt.index, tt.action)
			if err != nil {
				t.Fatalf("EncodeAction: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeAction = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestActionRoundTrip(t *testing.T) {
	actions := []KeyAction{
		TextAction("abc", 0),
		TextAction("héllo", 25),
		HidAction(HIDKeyEnter, 0, 0),
		ConsumerAction(ConsumerVolumeUp, 0),
		HardwareAction(HardwareScanTrigger, 1, 0),
		ModifierToggleAction(ModRightAlt, 100),
	}
	for i, want := range actions {
		buf, err := EncodeAction(nil, byte(i), want)
		if err != nil {
			t.Fatalf("action %d: encode: %v", i, err)
		}
		got, n, err := DecodeAction(buf)
		if err != nil {
			t.Fatalf("action %d: decode: %v", i, err)
		}
		if n != len(buf) {
			t.Errorf("action %d: consumed %d of %d bytes", i, n, len(buf))
		}
		if got != want {
			t.Errorf("action %d: round trip = %+v, want %+v", i, got, want)
		}
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"12345678", "12345678"},
		{"123456789", "12345678"},
		{"héllohé", "hélloh"}, // 9 bytes, é is 2
		{"ééééé", "éééé"},     // 10 bytes, cut lands mid-rune
	}
	for _, tt := range tests {
		got := TruncateText(tt.in)
		if got != tt.want {
			t.Errorf("TruncateText(%q) = %q, want %q", tt.in, got, tt.want)
		}
		// Stable under re-truncation.
		if again := TruncateText(got); again != got {
			t.Errorf("TruncateText(%q) not idempotent: %q", got, again)
		}
	}
}

func TestEncodeActionRejects(t *testing.T) {
	tests := []struct {
		name   string
		action KeyAction
		want   error
	}{
		{"invalid utf8", KeyAction{Type: ActionText, Text: string([]byte{0xFF, 0xFE})}, ErrInvalidUTF8},
		{"hardware param too wide", HardwareAction(HardwareScanTrigger, 0x100, 0), ErrInvalidParameter},
		{"unknown type", KeyAction{Type: ActionType(9)}, ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeAction(nil, 0, tt.action); !errors.Is(err, tt.want) {
				t.Errorf("EncodeAction err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeActionTruncatesLongText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123456789", "12345678"},
		{"héllohé", "hélloh"}, // backs off to the rune boundary
	}
	for _, tt := range tests {
		buf, err := EncodeAction(nil, 0, KeyAction{Type: ActionText, Text: tt.in, Delay: 10})
		if err != nil {
			t.Fatalf("EncodeAction(%q): %v", tt.in, err)
		}
		if got := int(buf[actionHeaderLen]); got != len(tt.want) {
			t.Errorf("%q: length byte = %d, want %d", tt.in, got, len(tt.want))
		}
		if got := string(buf[actionHeaderLen+1:]); got != tt.want {
			t.Errorf("%q: wire text = %q, want %q", tt.in, got, tt.want)
		}
		// Stable across repeated encodes of the same input.
		again, err := EncodeAction(nil, 0, KeyAction{Type: ActionText, Text: tt.in, Delay: 10})
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(buf, again) {
			t.Errorf("%q: encode not deterministic", tt.in)
		}
	}
}

func TestDecodeActionTruncated(t *testing.T) {
	full, err := EncodeAction(nil, 0, TextAction("Hi", 10))
	if err != nil {
		t.Fatal(err)
	}
	for cut := 0; cut < len(full); cut++ {
		if _, _, err := DecodeAction(full[:cut]); !errors.Is(err, ErrTruncatedFrame) {
			t.Errorf("cut at %d: err = %v, want ErrTruncatedFrame", cut, err)
		}
	}
}

func TestDecodeActionInvalidUTF8Placeholder(t *testing.T) {
	frame := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0xFF, 0xFE}
	a, n, err := DecodeAction(frame)
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("err = %v, want ErrInvalidUTF8", err)
	}
	if n != len(frame) {
		t.Errorf("consumed %d of %d bytes", n, len(frame))
	}
	if !strings.HasPrefix(a.Text, "<INVALID_UTF8_") {
		t.Errorf("placeholder = %q", a.Text)
	}
}
