package client

import (
	"time"

	"github.com/getyourway/scanpad-go/internal/protocol"
)

// AutoShutdown is the idle power policy: the device powers itself off
// after the given periods without a connection or without activity.
type AutoShutdown struct {
	Enabled      bool
	NoConnection time.Duration
	NoActivity   time.Duration
}

// SetAutoShutdown configures the idle power policy. Timeouts are sent
// in whole minutes.
func (c *Client) SetAutoShutdown(p AutoShutdown) error {
	conn := uint16(p.NoConnection / time.Minute)
	act := uint16(p.NoActivity / time.Minute)
	return c.deviceEmpty(protocol.CmdSetAutoShutdown, []byte{
		boolByte(p.Enabled),
		byte(conn & 0xFF), byte(conn >> 8),
		byte(act & 0xFF), byte(act >> 8),
	})
}

// GetAutoShutdown reads the idle power policy.
func (c *Client) GetAutoShutdown() (AutoShutdown, error) {
	resp, err := c.device(protocol.CmdGetAutoShutdown, nil)
	if err != nil {
		return AutoShutdown{}, err
	}
	data, err := resp.Struct(5)
	if err != nil {
		return AutoShutdown{}, err
	}
	return AutoShutdown{
		Enabled:      data[0] != 0,
		NoConnection: time.Duration(uint16(data[1])|uint16(data[2])<<8) * time.Minute,
		NoActivity:   time.Duration(uint16(data[3])|uint16(data[4])<<8) * time.Minute,
	}, nil
}

// BatteryLevel reads the charge percentage.
func (c *Client) BatteryLevel() (byte, error) {
	resp, err := c.device(protocol.CmdGetBatteryLevel, nil)
	if err != nil {
		return 0, err
	}
	return resp.Uint8()
}

// PowerStatus is the battery state snapshot.
type PowerStatus struct {
	Level    byte
	Charging bool
}

// GetPowerStatus reads the battery level and charger state together.
func (c *Client) GetPowerStatus() (PowerStatus, error) {
	resp, err := c.device(protocol.CmdGetPowerStatus, nil)
	if err != nil {
		return PowerStatus{}, err
	}
	data, err := resp.Struct(2)
	if err != nil {
		return PowerStatus{}, err
	}
	return PowerStatus{Level: data[0], Charging: data[1] != 0}, nil
}

// Restart reboots the device. The connection drops.
func (c *Client) Restart() error {
	return c.deviceEmpty(protocol.CmdSystemRestart, nil)
}

// Shutdown powers the device off. The connection drops.
func (c *Client) Shutdown() error {
	return c.deviceEmpty(protocol.CmdSystemShutdown, nil)
}

// DeviceInfo reads the firmware identification string.
func (c *Client) DeviceInfo() (string, error) {
	resp, err := c.device(protocol.CmdSystemGetInfo, nil)
	if err != nil {
		return "", err
	}
	return lengthPrefixedString(resp)
}

// Uptime reads how long the device has been running.
func (c *Client) Uptime() (time.Duration, error) {
	resp, err := c.device(protocol.CmdSystemUptime, nil)
	if err != nil {
		return 0, err
	}
	data, err := resp.Struct(4)
	if err != nil {
		return 0, err
	}
	secs := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	return time.Duration(secs) * time.Second, nil
}
