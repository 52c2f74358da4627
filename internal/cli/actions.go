package cli

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/getyourway/scanpad-go/internal/protocol"
)

// Action spec grammar: kind[:value][@delay_ms]
//
//	text:Hello@250      type text, delay 250ms
//	key:enter+shift     keycode with modifiers
//	media:volume-up     consumer control
//	scan                hardware scan trigger
//	toggle:ctrl+alt     modifier latch
var hidKeyNames = map[string]byte{
	"enter":     protocol.HIDKeyEnter,
	"escape":    protocol.HIDKeyEscape,
	"backspace": protocol.HIDKeyBackspace,
	"tab":       protocol.HIDKeyTab,
	"space":     protocol.HIDKeySpace,
	"delete":    protocol.HIDKeyDelete,
	"right":     protocol.HIDKeyRight,
	"left":      protocol.HIDKeyLeft,
	"down":      protocol.HIDKeyDown,
	"up":        protocol.HIDKeyUp,
}

var modifierNames = map[string]byte{
	"ctrl":   protocol.ModLeftCtrl,
	"shift":  protocol.ModLeftShift,
	"alt":    protocol.ModLeftAlt,
	"gui":    protocol.ModLeftGUI,
	"win":    protocol.ModLeftGUI,
	"cmd":    protocol.ModLeftGUI,
	"rctrl":  protocol.ModRightCtrl,
	"rshift": protocol.ModRightShift,
	"ralt":   protocol.ModRightAlt,
	"rgui":   protocol.ModRightGUI,
}

var consumerNames = map[string]uint16{
	"play-pause":      protocol.ConsumerPlayPause,
	"next":            protocol.ConsumerScanNext,
	"prev":            protocol.ConsumerScanPrev,
	"stop":            protocol.ConsumerStop,
	"mute":            protocol.ConsumerMute,
	"volume-up":       protocol.ConsumerVolumeUp,
	"volume-down":     protocol.ConsumerVolumeDown,
	"brightness-up":   protocol.ConsumerBrightUp,
	"brightness-down": protocol.ConsumerBrightDown,
	"home":            protocol.ConsumerACHome,
	"back":            protocol.ConsumerACBack,
}

// hidKeycode resolves a key name: single letters, digits, f1-f12, and
// the named keys above.
func hidKeycode(name string) (byte, error) {
	if code, ok := hidKeyNames[name]; ok {
		return code, nil
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return protocol.HIDKeyA + (c - 'a'), nil
		case c >= '1' && c <= '9':
			return protocol.HIDKey1 + (c - '1'), nil
		case c == '0':
			return protocol.HIDKey0, nil
		}
	}
	if n, ok := strings.CutPrefix(name, "f"); ok {
		if v, err := strconv.Atoi(n); err == nil && v >= 1 && v <= 12 {
			return protocol.HIDKeyF1 + byte(v-1), nil
		}
	}
	return 0, fmt.Errorf("unknown key %q: %w", name, protocol.ErrInvalidParameter)
}

func modifierMask(names []string) (byte, error) {
	var mask byte
	for _, n := range names {
		bit, ok := modifierNames[n]
		if !ok {
			return 0, fmt.Errorf("unknown modifier %q: %w", n, protocol.ErrInvalidParameter)
		}
		mask |= bit
	}
	return mask, nil
}

// splitDelay strips a trailing @<ms> suffix. An '@' whose suffix is not
// a number stays part of the value.
func splitDelay(spec string) (string, uint16) {
	i := strings.LastIndexByte(spec, '@')
	if i < 0 {
		return spec, 0
	}
	n, err := strconv.ParseUint(spec[i+1:], 10, 16)
	if err != nil {
		return spec, 0
	}
	return spec[:i], uint16(n)
}

// ParseAction parses one action spec.
func ParseAction(spec string) (protocol.KeyAction, error) {
	body, delay := splitDelay(spec)
	kind, value, _ := strings.Cut(body, ":")

	switch kind {
	case "text":
		if value == "" {
			return protocol.KeyAction{}, fmt.Errorf("empty text action: %w", protocol.ErrInvalidParameter)
		}
		if len(value) > protocol.MaxTextBytes {
			return protocol.KeyAction{}, fmt.Errorf("text %q exceeds %d bytes: %w",
				value, protocol.MaxTextBytes, protocol.ErrTextTooLong)
		}
		return protocol.TextAction(value, delay), nil

	case "key":
		parts := strings.Split(value, "+")
		code, err := hidKeycode(parts[0])
		if err != nil {
			return protocol.KeyAction{}, err
		}
		mods, err := modifierMask(parts[1:])
		if err != nil {
			return protocol.KeyAction{}, err
		}
		return protocol.HidAction(code, mods, delay), nil

	case "media":
		usage, ok := consumerNames[value]
		if !ok {
			return protocol.KeyAction{}, fmt.Errorf("unknown media control %q: %w", value, protocol.ErrInvalidParameter)
		}
		return protocol.ConsumerAction(usage, delay), nil

	case "scan":
		return protocol.HardwareAction(protocol.HardwareScanTrigger, 0, delay), nil

	case "toggle":
		mask, err := modifierMask(strings.Split(value, "+"))
		if err != nil {
			return protocol.KeyAction{}, err
		}
		if mask == 0 {
			return protocol.KeyAction{}, fmt.Errorf("empty toggle mask: %w", protocol.ErrInvalidParameter)
		}
		return protocol.ModifierToggleAction(mask, delay), nil
	}
	return protocol.KeyAction{}, fmt.Errorf("unknown action kind %q: %w", kind, protocol.ErrInvalidParameter)
}

// ParseActions parses a full action sequence.
func ParseActions(specs []string) ([]protocol.KeyAction, error) {
	if len(specs) == 0 || len(specs) > protocol.MaxActionsPerKey {
		return nil, fmt.Errorf("1..%d actions per key: %w", protocol.MaxActionsPerKey, protocol.ErrInvalidParameter)
	}
	actions := make([]protocol.KeyAction, 0, len(specs))
	for _, spec := range specs {
		a, err := ParseAction(spec)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// FormatAction renders an action back in spec form, for display.
func FormatAction(a protocol.KeyAction) string {
	var s string
	switch a.Type {
	case protocol.ActionText:
		s = "text:" + a.Text
	case protocol.ActionHid:
		s = "key:" + hidKeyName(a.Keycode)
		if mods := modifierNameList(a.Modifiers); mods != "" {
			s += "+" + mods
		}
	case protocol.ActionConsumer:
		s = "media:" + consumerName(a.Consumer)
	case protocol.ActionHardware:
		if a.HardwareID == protocol.HardwareScanTrigger {
			s = "scan"
		} else {
			s = fmt.Sprintf("hw:%d,%d", a.HardwareID, a.Param)
		}
	case protocol.ActionModifierToggle:
		s = "toggle:" + modifierNameList(a.ModifierMask)
	default:
		s = fmt.Sprintf("type-%d", byte(a.Type))
	}
	if a.Delay > 0 {
		s += fmt.Sprintf("@%d", a.Delay)
	}
	return s
}

func hidKeyName(code byte) string {
	for name, c := range hidKeyNames {
		if c == code {
			return name
		}
	}
	switch {
	case code >= protocol.HIDKeyA && code <= protocol.HIDKeyZ:
		return string('a' + code - protocol.HIDKeyA)
	case code >= protocol.HIDKey1 && code <= protocol.HIDKey1+8:
		return string('1' + code - protocol.HIDKey1)
	case code == protocol.HIDKey0:
		return "0"
	case code >= protocol.HIDKeyF1 && code < protocol.HIDKeyF1+12:
		return fmt.Sprintf("f%d", code-protocol.HIDKeyF1+1)
	}
	return fmt.Sprintf("0x%02X", code)
}

func modifierNameList(mask byte) string {
	order := []string{"ctrl", "shift", "alt", "gui", "rctrl", "rshift", "ralt", "rgui"}
	var names []string
	for _, n := range order {
		if mask&modifierNames[n] != 0 {
			names = append(names, n)
		}
	}
	return strings.Join(names, "+")
}

func consumerName(usage uint16) string {
	for name, u := range consumerNames {
		if u == usage {
			return name
		}
	}
	return fmt.Sprintf("0x%04X", usage)
}

// ParseKeyID resolves a key argument: a numeric ID, or long:<n> for a
// matrix key's long-press slot.
func ParseKeyID(s string) (byte, error) {
	if n, ok := strings.CutPrefix(s, "long:"); ok {
		v, err := strconv.ParseUint(n, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("key %q: %w", s, protocol.ErrInvalidParameter)
		}
		return protocol.LongPressID(byte(v))
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || !protocol.ValidKeyID(byte(v)) {
		return 0, fmt.Errorf("key %q: %w", s, protocol.ErrInvalidParameter)
	}
	return byte(v), nil
}

var ledNames = map[string]byte{
	"green1":     protocol.LEDGreen1,
	"red1":       protocol.LEDRed1,
	"blue1":      protocol.LEDBlue1,
	"green2":     protocol.LEDGreen2,
	"red2":       protocol.LEDRed2,
	"green3":     protocol.LEDGreen3,
	"orange3":    protocol.LEDOrange3,
	"green-scan": protocol.LEDGreenScan,
	"red-scan":   protocol.LEDRedScan,
}

func parseLED(s string) (byte, error) {
	if id, ok := ledNames[s]; ok {
		return id, nil
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || byte(v) < protocol.LEDFirst || byte(v) > protocol.LEDLast {
		return 0, fmt.Errorf("LED %q: %w", s, protocol.ErrInvalidParameter)
	}
	return byte(v), nil
}

var melodyNames = map[string]byte{
	"key":        protocol.MelodyKey,
	"start":      protocol.MelodyStart,
	"stop":       protocol.MelodyStop,
	"notif-up":   protocol.MelodyNotifUp,
	"notif-down": protocol.MelodyNotifDown,
	"confirm":    protocol.MelodyConfirm,
	"warning":    protocol.MelodyWarning,
	"error":      protocol.MelodyError,
	"success":    protocol.MelodySuccess,
}

func parseMelody(s string) (byte, error) {
	if id, ok := melodyNames[s]; ok {
		return id, nil
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || byte(v) < protocol.MelodyFirst || byte(v) > protocol.MelodyLast {
		return 0, fmt.Errorf("melody %q: %w", s, protocol.ErrInvalidParameter)
	}
	return byte(v), nil
}

var orientationNames = map[string]byte{
	"portrait":          protocol.OrientationPortrait,
	"landscape":         protocol.OrientationLandscape,
	"portrait-flipped":  protocol.OrientationPortraitFlipped,
	"landscape-flipped": protocol.OrientationLandscapeFlipped,
}

func parseOrientation(s string) (byte, error) {
	if o, ok := orientationNames[s]; ok {
		return o, nil
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || byte(v) > protocol.OrientationLast {
		return 0, fmt.Errorf("orientation %q: %w", s, protocol.ErrInvalidParameter)
	}
	return byte(v), nil
}

func orientationName(o byte) string {
	for name, v := range orientationNames {
		if v == o {
			return name
		}
	}
	return fmt.Sprintf("%d", o)
}

var layoutNames = map[string]uint16{
	"win-us-qwerty":  protocol.LayoutWinUSQwerty,
	"win-fr-azerty":  protocol.LayoutWinFRAzerty,
	"win-be-azerty":  protocol.LayoutWinBEAzerty,
	"win-de-qwertz":  protocol.LayoutWinDEQwertz,
	"win-es-qwerty":  protocol.LayoutWinESQwerty,
	"mac-us-qwerty":  protocol.LayoutMacUSQwerty,
	"mac-fr-azerty":  protocol.LayoutMacFRAzerty,
	"ios-us-qwerty":  protocol.LayoutIOSUSQwerty,
	"android-qwerty": protocol.LayoutAndroidQwerty,
}

func parseLayout(s string) (uint16, error) {
	if code, ok := layoutNames[s]; ok {
		return code, nil
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("layout %q: %w", s, protocol.ErrInvalidParameter)
	}
	return uint16(v), nil
}

func parseHexByte(s string) (byte, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

func parseHexBytes(s string) ([]byte, error) {
	return hex.DecodeString(strings.ToLower(strings.TrimPrefix(s, "0x")))
}

func layoutName(code uint16) string {
	for name, c := range layoutNames {
		if c == code {
			return name
		}
	}
	return fmt.Sprintf("0x%04X", code)
}
