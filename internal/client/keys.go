package client

import (
	"errors"
	"fmt"

	"github.com/getyourway/scanpad-go/internal/protocol"
)

// SetKey replaces a key's action sequence.
func (c *Client) SetKey(keyID byte, actions []protocol.KeyAction) error {
	payload, err := protocol.EncodeKeyConfig(keyID, actions)
	if err != nil {
		return err
	}
	return c.configEmpty(protocol.CmdSetKeyConfig, payload)
}

// GetKey reads back a key's configuration.
func (c *Client) GetKey(keyID byte) (protocol.KeyConfig, error) {
	if !protocol.ValidKeyID(keyID) {
		return protocol.KeyConfig{}, fmt.Errorf("key %d: %w", keyID, protocol.ErrInvalidParameter)
	}
	resp, err := c.config(protocol.CmdGetKeyConfig, []byte{keyID})
	if err != nil {
		return protocol.KeyConfig{}, err
	}
	return protocol.DecodeKeyConfig(resp)
}

// ClearKey removes a key's configuration.
func (c *Client) ClearKey(keyID byte) error {
	if !protocol.ValidKeyID(keyID) {
		return fmt.Errorf("key %d: %w", keyID, protocol.ErrInvalidParameter)
	}
	return c.configEmpty(protocol.CmdClearKeyConfig, []byte{keyID})
}

// SetKeyEnabled toggles a key without touching its actions.
func (c *Client) SetKeyEnabled(keyID byte, enabled bool) error {
	if !protocol.ValidKeyID(keyID) {
		return fmt.Errorf("key %d: %w", keyID, protocol.ErrInvalidParameter)
	}
	return c.configEmpty(protocol.CmdSetKeyEnabled, []byte{keyID, boolByte(enabled)})
}

// SetMultiple writes several keys in one command. Text actions are not
// supported on this path; see protocol.EncodeSetMultiple.
func (c *Client) SetMultiple(configs map[byte][]protocol.KeyAction) error {
	payload, err := protocol.EncodeSetMultiple(configs)
	if err != nil {
		return err
	}
	return c.configEmpty(protocol.CmdSetMultiple, payload)
}

// GetAllConfigs reads every configured key. The reply is a count
// followed by key-config bodies in the read layout.
func (c *Client) GetAllConfigs() ([]protocol.KeyConfig, error) {
	resp, err := c.config(protocol.CmdGetAllConfigs, nil)
	if err != nil {
		return nil, err
	}
	body, err := resp.Payload()
	if err != nil {
		return nil, err
	}
	if len(body) < 1 {
		return nil, fmt.Errorf("all configs: %w", protocol.ErrShortFrame)
	}
	count := int(body[0])
	buf := body[1:]
	configs := make([]protocol.KeyConfig, 0, count)
	for k := 0; k < count; k++ {
		if len(buf) < 3 {
			return nil, fmt.Errorf("all configs: entry %d: %w", k, protocol.ErrTruncatedFrame)
		}
		cfg := protocol.KeyConfig{KeyID: buf[0], Enabled: buf[1] != 0}
		actionCount := int(buf[2])
		buf = buf[3:]
		for i := 0; i < actionCount; i++ {
			a, n, err := protocol.DecodeAction(buf)
			if err != nil && !errors.Is(err, protocol.ErrInvalidUTF8) {
				return nil, fmt.Errorf("all configs: key %d action %d: %w", cfg.KeyID, i, err)
			}
			cfg.Actions = append(cfg.Actions, a)
			buf = buf[n:]
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// SaveConfig persists the current configuration to flash.
func (c *Client) SaveConfig() error {
	return c.configEmpty(protocol.CmdSaveConfig, nil)
}

// FactoryReset wipes all key configuration.
func (c *Client) FactoryReset() error {
	return c.configEmpty(protocol.CmdFactoryReset, nil)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
