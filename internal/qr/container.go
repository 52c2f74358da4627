package qr

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/getyourway/scanpad-go/internal/protocol"
)

// Container framing.
const (
	containerMagic   = "GYW"
	containerVersion = 0x01

	fullPrefix = "$FULL:"
	frameEnd   = "$"
)

// Container action type tags. The container format predates the richer
// wire actions and only knows these two.
const (
	containerText byte = 0
	containerHid  byte = 1
)

// FullConfig maps key IDs to their action sequences, the unit the
// $FULL: frame carries.
type FullConfig map[byte][]protocol.KeyAction

// EncodeContainer renders cfg as a $FULL: text frame. Keys are emitted
// in ascending ID order so the output is deterministic. Only Text and
// Hid actions are representable; anything else fails with
// ErrUnsupportedContainerAction rather than being dropped.
func EncodeContainer(cfg FullConfig, level int) (string, error) {
	if len(cfg) == 0 || len(cfg) > 0xFF {
		return "", fmt.Errorf("%d keys: %w", len(cfg), protocol.ErrInvalidParameter)
	}
	ids := make([]byte, 0, len(cfg))
	for id := range cfg {
		if !protocol.ValidKeyID(id) {
			return "", fmt.Errorf("key %d: %w", id, protocol.ErrInvalidParameter)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	bin := []byte(containerMagic)
	bin = append(bin, containerVersion, byte(len(cfg)))
	for _, id := range ids {
		actions := cfg[id]
		if len(actions) == 0 || len(actions) > protocol.MaxActionsPerKey {
			return "", fmt.Errorf("key %d: %d actions: %w", id, len(actions), protocol.ErrInvalidParameter)
		}
		bin = append(bin, id, byte(len(actions)))
		for i, a := range actions {
			var err error
			bin, err = appendContainerAction(bin, a)
			if err != nil {
				return "", fmt.Errorf("key %d action %d: %w", id, i, err)
			}
		}
	}

	packed, err := compress(bin, level)
	if err != nil {
		return "", err
	}
	return fullPrefix + base64.StdEncoding.EncodeToString(packed) + frameEnd, nil
}

func appendContainerAction(bin []byte, a protocol.KeyAction) ([]byte, error) {
	if a.Delay > 0xFF {
		return nil, fmt.Errorf("delay %d ms exceeds container limit: %w", a.Delay, protocol.ErrInvalidParameter)
	}
	switch a.Type {
	case protocol.ActionText:
		if !utf8.ValidString(a.Text) {
			return nil, protocol.ErrInvalidUTF8
		}
		if len(a.Text) > protocol.MaxTextBytes {
			return nil, protocol.ErrTextTooLong
		}
		bin = append(bin, containerText, byte(len(a.Text)), byte(a.Delay))
		return append(bin, a.Text...), nil
	case protocol.ActionHid:
		return append(bin, containerHid, a.Keycode, a.Modifiers, byte(a.Delay)), nil
	default:
		return nil, fmt.Errorf("%s: %w", a.Type, ErrUnsupportedContainerAction)
	}
}

// DecodeContainer parses a $FULL: frame back into a FullConfig.
func DecodeContainer(text string) (FullConfig, error) {
	body, ok := strings.CutPrefix(text, fullPrefix)
	if !ok {
		return nil, fmt.Errorf("missing %s prefix: %w", fullPrefix, ErrBadFrame)
	}
	body, ok = strings.CutSuffix(body, frameEnd)
	if !ok {
		return nil, fmt.Errorf("missing terminator: %w", ErrBadFrame)
	}
	packed, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrCorruptData, err)
	}
	bin, err := decompress(packed)
	if err != nil {
		return nil, err
	}

	if len(bin) < len(containerMagic)+2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptData, len(bin))
	}
	if string(bin[:len(containerMagic)]) != containerMagic {
		return nil, fmt.Errorf("%w: % X", ErrBadMagic, bin[:len(containerMagic)])
	}
	if bin[3] != containerVersion {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedVersion, bin[3])
	}
	keyCount := int(bin[4])
	buf := bin[5:]

	cfg := make(FullConfig, keyCount)
	for k := 0; k < keyCount; k++ {
		if len(buf) < 2 {
			return nil, fmt.Errorf("%w: key header", ErrCorruptData)
		}
		id := buf[0]
		actionCount := int(buf[1])
		buf = buf[2:]
		actions := make([]protocol.KeyAction, 0, actionCount)
		for i := 0; i < actionCount; i++ {
			a, n, err := decodeContainerAction(buf)
			if err != nil {
				return nil, fmt.Errorf("key %d action %d: %w", id, i, err)
			}
			actions = append(actions, a)
			buf = buf[n:]
		}
		cfg[id] = actions
	}
	if len(buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptData, len(buf))
	}
	return cfg, nil
}

func decodeContainerAction(buf []byte) (protocol.KeyAction, int, error) {
	if len(buf) < 1 {
		return protocol.KeyAction{}, 0, fmt.Errorf("%w: action tag", ErrCorruptData)
	}
	switch buf[0] {
	case containerText:
		if len(buf) < 3 {
			return protocol.KeyAction{}, 0, fmt.Errorf("%w: text header", ErrCorruptData)
		}
		textLen := int(buf[1])
		if textLen > protocol.MaxTextBytes {
			return protocol.KeyAction{}, 0, fmt.Errorf("text length %d: %w", textLen, ErrCorruptData)
		}
		if len(buf) < 3+textLen {
			return protocol.KeyAction{}, 0, fmt.Errorf("%w: text payload", ErrCorruptData)
		}
		raw := buf[3 : 3+textLen]
		if !utf8.Valid(raw) {
			return protocol.KeyAction{}, 0, fmt.Errorf("%w: % X", protocol.ErrInvalidUTF8, raw)
		}
		a := protocol.KeyAction{
			Type:  protocol.ActionText,
			Text:  string(raw),
			Delay: uint16(buf[2]),
		}
		return a, 3 + textLen, nil
	case containerHid:
		if len(buf) < 4 {
			return protocol.KeyAction{}, 0, fmt.Errorf("%w: hid action", ErrCorruptData)
		}
		a := protocol.KeyAction{
			Type:      protocol.ActionHid,
			Keycode:   buf[1],
			Modifiers: buf[2],
			Delay:     uint16(buf[3]),
		}
		return a, 4, nil
	default:
		return protocol.KeyAction{}, 0, fmt.Errorf("tag %d: %w", buf[0], ErrUnsupportedContainerAction)
	}
}
