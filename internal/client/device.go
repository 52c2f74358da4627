package client

import (
	"fmt"
	"time"

	"github.com/getyourway/scanpad-go/internal/protocol"
)

func validLED(id byte) error {
	if id < protocol.LEDFirst || id > protocol.LEDLast {
		return fmt.Errorf("led %d: %w", id, protocol.ErrInvalidParameter)
	}
	return nil
}

// SetLED switches one LED on or off.
func (c *Client) SetLED(id byte, on bool) error {
	if err := validLED(id); err != nil {
		return err
	}
	return c.deviceEmpty(protocol.CmdLEDSetState, []byte{id, boolByte(on)})
}

// LEDState reads whether an LED is currently lit.
func (c *Client) LEDState(id byte) (bool, error) {
	if err := validLED(id); err != nil {
		return false, err
	}
	resp, err := c.device(protocol.CmdLEDGetState, []byte{id})
	if err != nil {
		return false, err
	}
	v, err := resp.Uint8()
	return v != 0, err
}

// BlinkLED starts blinking an LED at the given frequency in Hz.
func (c *Client) BlinkLED(id byte, freqHz uint16) error {
	if err := validLED(id); err != nil {
		return err
	}
	if freqHz == 0 {
		return fmt.Errorf("blink frequency 0: %w", protocol.ErrInvalidParameter)
	}
	return c.deviceEmpty(protocol.CmdLEDStartBlink,
		[]byte{id, byte(freqHz & 0xFF), byte(freqHz >> 8)})
}

// StopBlink halts a blinking LED, leaving it off.
func (c *Client) StopBlink(id byte) error {
	if err := validLED(id); err != nil {
		return err
	}
	return c.deviceEmpty(protocol.CmdLEDStopBlink, []byte{id})
}

// AllLEDsOff extinguishes every LED.
func (c *Client) AllLEDsOff() error {
	return c.deviceEmpty(protocol.CmdLEDAllOff, nil)
}

// Beep plays a tone.
func (c *Client) Beep(duration time.Duration, freqHz uint16) error {
	ms := duration.Milliseconds()
	if ms <= 0 || ms > 0xFFFF {
		return fmt.Errorf("beep duration %v: %w", duration, protocol.ErrInvalidParameter)
	}
	return c.deviceEmpty(protocol.CmdBuzzerBeep, []byte{
		byte(ms & 0xFF), byte(ms >> 8),
		byte(freqHz & 0xFF), byte(freqHz >> 8),
	})
}

// PlayMelody plays one of the built-in melodies.
func (c *Client) PlayMelody(id byte) error {
	if id < protocol.MelodyFirst || id > protocol.MelodyLast {
		return fmt.Errorf("melody %d: %w", id, protocol.ErrInvalidParameter)
	}
	return c.deviceEmpty(protocol.CmdBuzzerMelody, []byte{id})
}

// SetBuzzer sets the buzzer enable flag and volume (0-100).
func (c *Client) SetBuzzer(enabled bool, volume byte) error {
	if volume > 100 {
		return fmt.Errorf("volume %d: %w", volume, protocol.ErrInvalidParameter)
	}
	return c.deviceEmpty(protocol.CmdBuzzerSetConfig, []byte{boolByte(enabled), volume})
}

// BuzzerConfig reads the enable flag and volume.
func (c *Client) BuzzerConfig() (enabled bool, volume byte, err error) {
	resp, err := c.device(protocol.CmdBuzzerGetConfig, nil)
	if err != nil {
		return false, 0, err
	}
	data, err := resp.Struct(2)
	if err != nil {
		return false, 0, err
	}
	return data[0] != 0, data[1], nil
}

// StopBuzzer silences any playing tone or melody.
func (c *Client) StopBuzzer() error {
	return c.deviceEmpty(protocol.CmdBuzzerStop, nil)
}

// SetOrientation rotates the key matrix mapping.
func (c *Client) SetOrientation(o byte) error {
	if o > protocol.OrientationLast {
		return fmt.Errorf("orientation %d: %w", o, protocol.ErrInvalidParameter)
	}
	return c.deviceEmpty(protocol.CmdSetOrientation, []byte{o})
}

// Orientation reads the current matrix orientation.
func (c *Client) Orientation() (byte, error) {
	resp, err := c.device(protocol.CmdGetOrientation, nil)
	if err != nil {
		return 0, err
	}
	return resp.Uint8()
}

// SetLayout selects the host keyboard layout the device types against.
func (c *Client) SetLayout(layout uint16) error {
	return c.deviceEmpty(protocol.CmdSetLanguage,
		[]byte{byte(layout & 0xFF), byte(layout >> 8)})
}

// Layout reads the active keyboard layout identifier.
func (c *Client) Layout() (uint16, error) {
	resp, err := c.device(protocol.CmdGetLanguage, nil)
	if err != nil {
		return 0, err
	}
	data, err := resp.Struct(2)
	if err != nil {
		return 0, err
	}
	return uint16(data[0]) | uint16(data[1])<<8, nil
}

// maxDeviceNameLen is the BLE advertising limit.
const maxDeviceNameLen = 31

// SetDeviceName changes the advertised name. Takes effect on the next
// restart.
func (c *Client) SetDeviceName(name string) error {
	if len(name) == 0 || len(name) > maxDeviceNameLen {
		return fmt.Errorf("name %q: %w", name, protocol.ErrInvalidParameter)
	}
	return c.deviceEmpty(protocol.CmdSetDeviceName, []byte(name))
}

// DeviceName reads the advertised name.
func (c *Client) DeviceName() (string, error) {
	resp, err := c.device(protocol.CmdGetDeviceName, nil)
	if err != nil {
		return "", err
	}
	return lengthPrefixedString(resp)
}
