package cli

import (
	"errors"
	"reflect"
	"testing"

	"github.com/getyourway/scanpad-go/internal/protocol"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		spec string
		want protocol.KeyAction
	}{
		{"text:Hi", protocol.TextAction("Hi", 0)},
		{"text:Hi@250", protocol.TextAction("Hi", 250)},
		{"key:enter", protocol.HidAction(protocol.HIDKeyEnter, 0, 0)},
		{"key:a+ctrl+shift", protocol.HidAction(protocol.HIDKeyA, protocol.ModLeftCtrl|protocol.ModLeftShift, 0)},
		{"key:f5", protocol.HidAction(protocol.HIDKeyF1 + 4, 0, 0)},
		{"key:0", protocol.HidAction(protocol.HIDKey0, 0, 0)},
		{"media:volume-up", protocol.ConsumerAction(protocol.ConsumerVolumeUp, 0)},
		{"scan", protocol.HardwareAction(protocol.HardwareScanTrigger, 0, 0)},
		{"scan@100", protocol.HardwareAction(protocol.HardwareScanTrigger, 0, 100)},
		{"toggle:ctrl+alt", protocol.ModifierToggleAction(protocol.ModLeftCtrl|protocol.ModLeftAlt, 0)},
		{"text:a@b", protocol.TextAction("a@b", 0)},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.spec)
		if err != nil {
			t.Errorf("ParseAction(%q): %v", tt.spec, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseAction(%q) = %+v, want %+v", tt.spec, got, tt.want)
		}
	}
}

func TestParseActionRejects(t *testing.T) {
	for _, spec := range []string{
		"",
		"text:",
		"text:ninechars",
		"key:bogus",
		"key:a+bogus",
		"media:bogus",
		"toggle:",
		"frob:x",
	} {
		if _, err := ParseAction(spec); err == nil {
			t.Errorf("ParseAction(%q) accepted", spec)
		}
	}
}

func TestParseActionsLimits(t *testing.T) {
	if _, err := ParseActions(nil); err == nil {
		t.Error("empty sequence accepted")
	}
	specs := make([]string, protocol.MaxActionsPerKey+1)
	for i := range specs {
		specs[i] = "scan"
	}
	if _, err := ParseActions(specs); err == nil {
		t.Error("oversized sequence accepted")
	}
	if _, err := ParseActions(specs[:protocol.MaxActionsPerKey]); err != nil {
		t.Errorf("max-sized sequence rejected: %v", err)
	}
}

func TestFormatActionRoundTrip(t *testing.T) {
	specs := []string{
		"text:Hi@250",
		"key:enter+shift",
		"key:f5",
		"media:volume-up",
		"scan",
		"toggle:ctrl+alt",
	}
	for _, spec := range specs {
		a, err := ParseAction(spec)
		if err != nil {
			t.Fatalf("ParseAction(%q): %v", spec, err)
		}
		if got := FormatAction(a); got != spec {
			t.Errorf("FormatAction = %q, want %q", got, spec)
		}
	}
}

func TestParseKeyID(t *testing.T) {
	tests := []struct {
		in   string
		want byte
	}{
		{"0", 0},
		{"15", 15},
		{"19", 19},
		{"long:3", 103},
		{"103", 103},
	}
	for _, tt := range tests {
		got, err := ParseKeyID(tt.in)
		if err != nil {
			t.Errorf("ParseKeyID(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKeyID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
	for _, in := range []string{"20", "99", "116", "long:16", "x", ""} {
		if _, err := ParseKeyID(in); !errors.Is(err, protocol.ErrInvalidParameter) {
			t.Errorf("ParseKeyID(%q) err = %v", in, err)
		}
	}
}

func TestNamedLookups(t *testing.T) {
	if id, err := parseLED("red-scan"); err != nil || id != protocol.LEDRedScan {
		t.Errorf("parseLED(red-scan) = %d, %v", id, err)
	}
	if _, err := parseLED("10"); err == nil {
		t.Error("LED 10 accepted")
	}
	if id, err := parseMelody("confirm"); err != nil || id != protocol.MelodyConfirm {
		t.Errorf("parseMelody(confirm) = %d, %v", id, err)
	}
	if o, err := parseOrientation("landscape"); err != nil || o != protocol.OrientationLandscape {
		t.Errorf("parseOrientation(landscape) = %d, %v", o, err)
	}
	if code, err := parseLayout("win-fr-azerty"); err != nil || code != protocol.LayoutWinFRAzerty {
		t.Errorf("parseLayout(win-fr-azerty) = %04X, %v", code, err)
	}
	if code, err := parseLayout("0x1110"); err != nil || code != protocol.LayoutWinUSQwerty {
		t.Errorf("parseLayout(0x1110) = %04X, %v", code, err)
	}
	if layoutName(protocol.LayoutMacUSQwerty) != "mac-us-qwerty" {
		t.Errorf("layoutName = %q", layoutName(protocol.LayoutMacUSQwerty))
	}
}

func TestParseCommandSpec(t *testing.T) {
	cmd, err := parseCommandSpec("0x14", "0301")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.ID != 0x14 || !reflect.DeepEqual(cmd.Payload, []byte{0x03, 0x01}) {
		t.Errorf("cmd = %+v", cmd)
	}
	if _, err := parseCommandSpec("zz", ""); err == nil {
		t.Error("bad ID accepted")
	}
	if _, err := parseCommandSpec("10", "xy"); err == nil {
		t.Error("bad payload accepted")
	}
}
