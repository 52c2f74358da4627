package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the codec and transport layers. Callers
// match them with errors.Is after unwrapping.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrTruncatedFrame   = errors.New("truncated frame")
	ErrShortFrame       = errors.New("response shorter than declared")
	ErrUnexpectedType   = errors.New("unexpected response type tag")
	ErrInvalidUTF8      = errors.New("invalid utf-8 in text action")
	ErrTextTooLong      = errors.New("text exceeds 8 utf-8 bytes")
	ErrTimeout          = errors.New("device did not respond")
	ErrConnectionLost   = errors.New("connection lost")
	ErrNotConnected     = errors.New("not connected")
	ErrBusy             = errors.New("request already in flight")
)

// DeviceError reports a non-zero status byte returned by the firmware.
type DeviceError struct {
	Status    byte
	CommandID byte
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device rejected command 0x%02X: status 0x%02X", e.CommandID, e.Status)
}
