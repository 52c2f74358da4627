package protocol

import (
	"errors"
	"fmt"
	"sort"
)

// MaxActionsPerKey is the firmware limit on one key's action sequence.
const MaxActionsPerKey = 10

// KeyConfig is the full configuration of one key.
type KeyConfig struct {
	KeyID   byte
	Enabled bool
	Actions []KeyAction
}

// EncodeKeyConfig builds the payload of a key-config write:
// [key_id][action_count][actions...].
func EncodeKeyConfig(keyID byte, actions []KeyAction) ([]byte, error) {
	if !ValidKeyID(keyID) {
		return nil, fmt.Errorf("key %d: %w", keyID, ErrInvalidParameter)
	}
	if len(actions) == 0 || len(actions) > MaxActionsPerKey {
		return nil, fmt.Errorf("key %d: %d actions: %w", keyID, len(actions), ErrInvalidParameter)
	}
	payload := []byte{keyID, byte(len(actions))}
	var err error
	for i, a := range actions {
		payload, err = EncodeAction(payload, byte(i), a)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", keyID, err)
		}
	}
	return payload, nil
}

// DecodeKeyConfig parses a key-config read reply. This command answers
// with its own layout, [status][cmd][key_id][enabled][action_count]
// [actions...], rather than the structured header.
//
// Actions with undecodable text survive as placeholders; the last such
// error is returned alongside the otherwise complete config.
func DecodeKeyConfig(r Response) (KeyConfig, error) {
	if err := r.Err(); err != nil {
		return KeyConfig{}, err
	}
	if len(r.Raw) < 5 {
		return KeyConfig{}, fmt.Errorf("key config response: %w (%d bytes)", ErrShortFrame, len(r.Raw))
	}
	cfg := KeyConfig{KeyID: r.Raw[2], Enabled: r.Raw[3] != 0}
	count := int(r.Raw[4])
	buf := r.Raw[5:]

	var textErr error
	for i := 0; i < count; i++ {
		a, n, err := DecodeAction(buf)
		if err != nil {
			if !errors.Is(err, ErrInvalidUTF8) {
				return KeyConfig{}, fmt.Errorf("key %d action %d: %w", cfg.KeyID, i, err)
			}
			textErr = fmt.Errorf("key %d action %d: %w", cfg.KeyID, i, err)
		}
		cfg.Actions = append(cfg.Actions, a)
		buf = buf[n:]
	}
	return cfg, textErr
}

// EncodeSetMultiple builds the bulk-write payload:
// [key_count]([key_id][action_count][actions...])*. Keys are emitted in
// ascending ID order so the payload is deterministic.
func EncodeSetMultiple(configs map[byte][]KeyAction) ([]byte, error) {
	if len(configs) == 0 || len(configs) > 0xFF {
		return nil, fmt.Errorf("%d keys: %w", len(configs), ErrInvalidParameter)
	}
	ids := make([]byte, 0, len(configs))
	for id := range configs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	payload := []byte{byte(len(configs))}
	for _, id := range ids {
		// The bulk write path does not support variable-length text
		// entries. Refusing beats silently dropping them.
		for i, a := range configs[id] {
			if a.Type == ActionText {
				return nil, fmt.Errorf("key %d action %d: text not supported in bulk write: %w",
					id, i, ErrInvalidParameter)
			}
		}
		one, err := EncodeKeyConfig(id, configs[id])
		if err != nil {
			return nil, err
		}
		payload = append(payload, one...)
	}
	return payload, nil
}
