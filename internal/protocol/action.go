package protocol

import (
	"fmt"
	"unicode/utf8"
)

// ActionType tags the variants of a key action.
type ActionType byte

const (
	// ActionText types a short UTF-8 string.
	ActionText ActionType = 0
	// ActionHid sends a single HID keycode with modifier bits.
	ActionHid ActionType = 1
	// ActionConsumer sends a 16-bit consumer control usage.
	ActionConsumer ActionType = 2
	// ActionHardware triggers a device-internal function such as the
	// scan trigger.
	ActionHardware ActionType = 3
	// ActionModifierToggle latches or releases modifier keys.
	ActionModifierToggle ActionType = 4
)

func (t ActionType) String() string {
	switch t {
	case ActionText:
		return "text"
	case ActionHid:
		return "hid"
	case ActionConsumer:
		return "consumer"
	case ActionHardware:
		return "hardware"
	case ActionModifierToggle:
		return "modifier-toggle"
	}
	return fmt.Sprintf("type-%d", byte(t))
}

// MaxTextBytes is the UTF-8 byte capacity of a single text action.
const MaxTextBytes = 8

// actionHeaderLen is the fixed per-action wire prefix:
// [index][type][value][mask][delay_lo][delay_hi].
const actionHeaderLen = 6

// KeyAction is one step of a key's action sequence. Only the fields of
// the selected Type are meaningful.
type KeyAction struct {
	Type ActionType

	Text string // ActionText, at most MaxTextBytes UTF-8 bytes

	Keycode   byte // ActionHid
	Modifiers byte // ActionHid

	Consumer uint16 // ActionConsumer

	HardwareID byte   // ActionHardware
	Param      uint16 // ActionHardware, must fit in one byte on the wire

	ModifierMask byte // ActionModifierToggle

	Delay uint16 // milliseconds to wait after the action, little-endian
}

// TextAction builds a text action, truncating s to MaxTextBytes on a
// rune boundary. Truncation is deterministic so re-encoding a decoded
// action is stable.
func TextAction(s string, delayMS uint16) KeyAction {
	return KeyAction{Type: ActionText, Text: TruncateText(s), Delay: delayMS}
}

// HidAction builds a keycode action.
func HidAction(keycode, modifiers byte, delayMS uint16) KeyAction {
	return KeyAction{Type: ActionHid, Keycode: keycode, Modifiers: modifiers, Delay: delayMS}
}

// ConsumerAction builds a consumer control action.
func ConsumerAction(usage uint16, delayMS uint16) KeyAction {
	return KeyAction{Type: ActionConsumer, Consumer: usage, Delay: delayMS}
}

// HardwareAction builds a hardware function action.
func HardwareAction(id byte, param uint16, delayMS uint16) KeyAction {
	return KeyAction{Type: ActionHardware, HardwareID: id, Param: param, Delay: delayMS}
}

// ModifierToggleAction builds a modifier latch action.
func ModifierToggleAction(mask byte, delayMS uint16) KeyAction {
	return KeyAction{Type: ActionModifierToggle, ModifierMask: mask, Delay: delayMS}
}

// TruncateText cuts s to at most MaxTextBytes UTF-8 bytes, backing off
// to the previous rune boundary so the result stays valid UTF-8.
func TruncateText(s string) string {
	if len(s) <= MaxTextBytes {
		return s
	}
	cut := MaxTextBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// EncodeAction appends the wire form of a to buf and returns the
// extended slice. index is the zero-based position of the action in its
// sequence. Text longer than MaxTextBytes is truncated the same way
// TextAction truncates it; the emitted length byte reports what went on
// the wire.
func EncodeAction(buf []byte, index byte, a KeyAction) ([]byte, error) {
	var value, mask byte
	switch a.Type {
	case ActionText:
		if !utf8.ValidString(a.Text) {
			return nil, fmt.Errorf("action %d: %w", index, ErrInvalidUTF8)
		}
	case ActionHid:
		value = a.Keycode
		mask = a.Modifiers
	case ActionConsumer:
		value = byte(a.Consumer & 0xFF)
		mask = byte(a.Consumer >> 8)
	case ActionHardware:
		if a.Param > 0xFF {
			return nil, fmt.Errorf("action %d: hardware param %d: %w", index, a.Param, ErrInvalidParameter)
		}
		value = a.HardwareID
		mask = byte(a.Param)
	case ActionModifierToggle:
		mask = a.ModifierMask
	default:
		return nil, fmt.Errorf("action %d: type %d: %w", index, a.Type, ErrInvalidParameter)
	}

	buf = append(buf, index, byte(a.Type), value, mask,
		byte(a.Delay&0xFF), byte(a.Delay>>8))
	if a.Type == ActionText {
		text := TruncateText(a.Text)
		buf = append(buf, byte(len(text)))
		buf = append(buf, text...)
	}
	return buf, nil
}

// DecodeAction parses one action from the front of buf and returns it
// with the number of bytes consumed.
//
// A text action carrying invalid UTF-8 is not fatal: the returned action
// holds a readable placeholder, n still covers the full action, and the
// error wraps ErrInvalidUTF8 so callers can keep walking the sequence.
func DecodeAction(buf []byte) (KeyAction, int, error) {
	if len(buf) < actionHeaderLen {
		return KeyAction{}, 0, fmt.Errorf("action header: %w (%d bytes)", ErrTruncatedFrame, len(buf))
	}
	typ := ActionType(buf[1])
	value := buf[2]
	mask := buf[3]
	delay := uint16(buf[4]) | uint16(buf[5])<<8

	a := KeyAction{Type: typ, Delay: delay}
	n := actionHeaderLen

	switch typ {
	case ActionText:
		if len(buf) < n+1 {
			return KeyAction{}, 0, fmt.Errorf("text length: %w", ErrTruncatedFrame)
		}
		textLen := int(buf[n])
		n++
		if textLen > MaxTextBytes {
			return KeyAction{}, 0, fmt.Errorf("text length %d: %w", textLen, ErrTextTooLong)
		}
		if len(buf) < n+textLen {
			return KeyAction{}, 0, fmt.Errorf("text payload: %w", ErrTruncatedFrame)
		}
		raw := buf[n : n+textLen]
		n += textLen
		if !utf8.Valid(raw) {
			a.Text = fmt.Sprintf("<INVALID_UTF8_%X>", raw)
			return a, n, fmt.Errorf("text payload % X: %w", raw, ErrInvalidUTF8)
		}
		a.Text = string(raw)
	case ActionHid:
		a.Keycode = value
		a.Modifiers = mask
	case ActionConsumer:
		a.Consumer = uint16(value) | uint16(mask)<<8
	case ActionHardware:
		a.HardwareID = value
		a.Param = uint16(mask)
	case ActionModifierToggle:
		a.ModifierMask = mask
	default:
		return KeyAction{}, 0, fmt.Errorf("action type %d: %w", typ, ErrInvalidParameter)
	}
	return a, n, nil
}
