package qr

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/getyourway/scanpad-go/internal/protocol"
)

// Text frame markers.
const (
	cmdDevPrefix   = "$CMD:DEV:"
	cmdKeyPrefix   = "$CMD:KEY:"
	cmdSuffix      = "CMD$"
	batchPrefix    = "$BATCH:"
	luaPrefix      = "$LUA"
	luaFinalMarker = "X"
)

// FrameKind discriminates the parsed text frame variants.
type FrameKind int

const (
	KindFullConfig FrameKind = iota
	KindLuaFragment
	KindDeviceCommand
	KindKeyCommand
	KindBatch
)

func (k FrameKind) String() string {
	switch k {
	case KindFullConfig:
		return "full-config"
	case KindLuaFragment:
		return "lua-fragment"
	case KindDeviceCommand:
		return "device-command"
	case KindKeyCommand:
		return "key-command"
	case KindBatch:
		return "batch"
	}
	return "unknown"
}

// Frame is a parsed text frame. Only the field matching Kind is set.
type Frame struct {
	Kind FrameKind

	FullConfig FullConfig
	Fragment   Fragment
	Command    protocol.Command
	Batch      []protocol.Command
}

// DeviceCommandText renders a single device-domain command as an
// offline frame. The body is uppercase hex of the wire frame.
func DeviceCommandText(cmd protocol.Command) string {
	return cmdDevPrefix + hexUpper(cmd) + cmdSuffix
}

// KeyCommandText renders a single config-domain command as an offline
// frame.
func KeyCommandText(cmd protocol.Command) string {
	return cmdKeyPrefix + hexUpper(cmd) + cmdSuffix
}

func hexUpper(cmd protocol.Command) string {
	wire := protocol.EncodeCommand(cmd.ID, cmd.Payload)
	return strings.ToUpper(hex.EncodeToString(wire))
}

// BatchText renders a command batch as an offline frame.
func BatchText(cmds []protocol.Command) (string, error) {
	blob, err := protocol.BuildBatch(cmds)
	if err != nil {
		return "", err
	}
	return batchPrefix + base64.StdEncoding.EncodeToString(blob) + frameEnd, nil
}

// ParseFrame recognizes any of the offline frame forms and returns its
// structured content.
func ParseFrame(text string) (Frame, error) {
	switch {
	case strings.HasPrefix(text, fullPrefix):
		cfg, err := DecodeContainer(text)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Kind: KindFullConfig, FullConfig: cfg}, nil

	case strings.HasPrefix(text, cmdDevPrefix):
		cmd, err := parseHexCommand(text, cmdDevPrefix)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Kind: KindDeviceCommand, Command: cmd}, nil

	case strings.HasPrefix(text, cmdKeyPrefix):
		cmd, err := parseHexCommand(text, cmdKeyPrefix)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Kind: KindKeyCommand, Command: cmd}, nil

	case strings.HasPrefix(text, batchPrefix):
		cmds, err := parseBatchFrame(text)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Kind: KindBatch, Batch: cmds}, nil

	case strings.HasPrefix(text, luaPrefix):
		frag, err := ParseFragment(text)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Kind: KindLuaFragment, Fragment: frag}, nil
	}
	return Frame{}, fmt.Errorf("%w: %.16q", ErrBadFrame, text)
}

func parseHexCommand(text, prefix string) (protocol.Command, error) {
	body, _ := strings.CutPrefix(text, prefix)
	body, ok := strings.CutSuffix(body, cmdSuffix)
	if !ok {
		return protocol.Command{}, fmt.Errorf("missing %s terminator: %w", cmdSuffix, ErrBadFrame)
	}
	wire, err := hex.DecodeString(strings.ToLower(body))
	if err != nil {
		return protocol.Command{}, fmt.Errorf("%w: hex: %v", ErrBadFrame, err)
	}
	if len(wire) == 0 {
		return protocol.Command{}, fmt.Errorf("%w: empty command", ErrBadFrame)
	}
	cmd := protocol.Command{ID: wire[0]}
	if len(wire) > 1 {
		cmd.Payload = wire[1:]
	}
	return cmd, nil
}

func parseBatchFrame(text string) ([]protocol.Command, error) {
	body, _ := strings.CutPrefix(text, batchPrefix)
	body, ok := strings.CutSuffix(body, frameEnd)
	if !ok {
		return nil, fmt.Errorf("missing terminator: %w", ErrBadFrame)
	}
	blob, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrBadFrame, err)
	}
	return protocol.ParseBatch(blob)
}

// ParseFragment parses a $LUA<n>: or $LUAX: frame.
func ParseFragment(text string) (Fragment, error) {
	body, ok := strings.CutPrefix(text, luaPrefix)
	if !ok {
		return Fragment{}, fmt.Errorf("missing %s prefix: %w", luaPrefix, ErrBadFrame)
	}
	marker, body, ok := strings.Cut(body, ":")
	if !ok {
		return Fragment{}, fmt.Errorf("missing fragment separator: %w", ErrBadFrame)
	}
	body, ok = strings.CutSuffix(body, frameEnd)
	if !ok {
		return Fragment{}, fmt.Errorf("missing terminator: %w", ErrBadFrame)
	}
	if marker == luaFinalMarker {
		// The final marker erases the number; Reassemble only checks
		// that it arrives last.
		return Fragment{Final: true, Payload: body}, nil
	}
	number, err := strconv.Atoi(marker)
	if err != nil || number < 1 || number > MaxFragments {
		return Fragment{}, fmt.Errorf("fragment number %q: %w", marker, ErrBadFrame)
	}
	return Fragment{Number: number, Payload: body}, nil
}
