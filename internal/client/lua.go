package client

import (
	"bytes"
	"compress/zlib"
	"fmt"

	"github.com/getyourway/scanpad-go/internal/protocol"
)

// maxLuaDeployBytes bounds the compressed script a single BLE deploy
// command may carry. Larger scripts ship as barcode fragments instead.
const maxLuaDeployBytes = 512

// DeployLuaScript uploads a small script over the connection. The
// payload is the zlib-compressed script prefixed with its length.
func (c *Client) DeployLuaScript(script []byte) error {
	if len(script) == 0 {
		return fmt.Errorf("empty script: %w", protocol.ErrInvalidParameter)
	}
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(script); err != nil {
		return fmt.Errorf("compress script: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("compress script: %w", err)
	}
	packed := buf.Bytes()
	if len(packed) > maxLuaDeployBytes {
		return fmt.Errorf("compressed script %d bytes exceeds %d: %w",
			len(packed), maxLuaDeployBytes, protocol.ErrInvalidParameter)
	}
	payload := []byte{byte(len(packed) & 0xFF), byte(len(packed) >> 8)}
	payload = append(payload, packed...)
	return c.deviceEmpty(protocol.CmdLuaDeployScript, payload)
}

// LuaScriptInfo describes the script currently deployed.
type LuaScriptInfo struct {
	Present bool
	Size    uint16
}

// GetLuaScriptInfo reads whether a script is deployed and its stored
// size.
func (c *Client) GetLuaScriptInfo() (LuaScriptInfo, error) {
	resp, err := c.device(protocol.CmdLuaGetScriptInfo, nil)
	if err != nil {
		return LuaScriptInfo{}, err
	}
	data, err := resp.Struct(3)
	if err != nil {
		return LuaScriptInfo{}, err
	}
	return LuaScriptInfo{
		Present: data[0] != 0,
		Size:    uint16(data[1]) | uint16(data[2])<<8,
	}, nil
}

// ClearLuaScript removes the deployed script.
func (c *Client) ClearLuaScript() error {
	return c.deviceEmpty(protocol.CmdLuaClearScript, nil)
}
