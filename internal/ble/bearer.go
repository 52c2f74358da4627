// Package ble connects to the ScanPad and moves protocol frames over
// its two command/response characteristic pairs.
package ble

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/getyourway/scanpad-go/internal/channel"
	"github.com/getyourway/scanpad-go/internal/config"
	"github.com/getyourway/scanpad-go/internal/protocol"
)

// ScanTimeout bounds how long Connect scans before giving up.
const ScanTimeout = 15 * time.Second

// Bearer is a connected device: one write and one notify characteristic
// per domain.
type Bearer struct {
	adapter *bluetooth.Adapter
	device  bluetooth.Device

	cmd  [2]*bluetooth.DeviceCharacteristic
	resp [2]*bluetooth.DeviceCharacteristic

	ch *channel.Channel
}

// Connect scans for a device advertising name, connects and discovers
// the command characteristics. An empty name scans for the default.
func Connect(name string) (*Bearer, error) {
	if name == "" {
		name = DefaultDeviceName
	}
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enable bluetooth: %w", err)
	}

	config.Debugf("ble: scanning for %q", name)
	var result bluetooth.ScanResult
	var once sync.Once
	found := make(chan struct{})
	go func() {
		time.Sleep(ScanTimeout)
		adapter.StopScan()
	}()
	err := adapter.Scan(func(a *bluetooth.Adapter, r bluetooth.ScanResult) {
		local := r.LocalName()
		if local != "" {
			config.Debugf("ble: saw %q (%s)", local, r.Address.String())
		}
		if strings.EqualFold(local, name) {
			once.Do(func() {
				result = r
				close(found)
			})
			a.StopScan()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	select {
	case <-found:
	default:
		return nil, fmt.Errorf("device %q not found: %w", name, protocol.ErrNotConnected)
	}

	config.Debugf("ble: connecting to %s", result.Address.String())
	device, err := adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	b := &Bearer{adapter: adapter, device: device}
	if err := b.discover(); err != nil {
		device.Disconnect()
		return nil, err
	}

	adapter.SetConnectHandler(func(d bluetooth.Device, connected bool) {
		if !connected && b.ch != nil {
			config.Debugf("ble: link lost")
			b.ch.HandleDisconnect()
		}
	})
	return b, nil
}

// discover finds the ScanPad service and binds the four characteristics.
func (b *Bearer) discover() error {
	services, err := b.device.DiscoverServices(nil)
	if err != nil {
		return fmt.Errorf("discover services: %w", err)
	}
	var svc *bluetooth.DeviceService
	for i := range services {
		if strings.EqualFold(services[i].UUID().String(), ServiceUUID) {
			svc = &services[i]
			break
		}
	}
	if svc == nil {
		return fmt.Errorf("scanpad service %s not found", ServiceUUID)
	}

	chars, err := svc.DiscoverCharacteristics(nil)
	if err != nil {
		return fmt.Errorf("discover characteristics: %w", err)
	}
	for i := range chars {
		uuid := chars[i].UUID().String()
		config.Debugf("ble: characteristic %s", uuid)
		switch {
		case strings.EqualFold(uuid, DeviceCommandUUID):
			b.cmd[protocol.DomainDevice] = &chars[i]
		case strings.EqualFold(uuid, DeviceResponseUUID):
			b.resp[protocol.DomainDevice] = &chars[i]
		case strings.EqualFold(uuid, ConfigCommandUUID):
			b.cmd[protocol.DomainConfig] = &chars[i]
		case strings.EqualFold(uuid, ConfigResponseUUID):
			b.resp[protocol.DomainConfig] = &chars[i]
		}
	}
	for _, d := range []protocol.Domain{protocol.DomainConfig, protocol.DomainDevice} {
		if b.cmd[d] == nil || b.resp[d] == nil {
			return fmt.Errorf("%s characteristics not found", d)
		}
	}
	return nil
}

// Attach enables response notifications and arms ch over this bearer.
func (b *Bearer) Attach(ch *channel.Channel) error {
	for _, d := range []protocol.Domain{protocol.DomainConfig, protocol.DomainDevice} {
		domain := d
		err := b.resp[d].EnableNotifications(func(buf []byte) {
			frame := make([]byte, len(buf))
			copy(frame, buf)
			ch.HandleNotify(domain, frame)
		})
		if err != nil {
			return fmt.Errorf("enable %s notifications: %w", d, err)
		}
	}
	b.ch = ch
	ch.Rearm()
	return nil
}

// Write sends one command frame on the domain's characteristic.
func (b *Bearer) Write(d protocol.Domain, frame []byte) error {
	if _, err := b.cmd[d].WriteWithoutResponse(frame); err != nil {
		return fmt.Errorf("%s write: %w", d, err)
	}
	return nil
}

// Disconnect drops the link. The connect handler informs the channel.
func (b *Bearer) Disconnect() error {
	if b.ch != nil {
		b.ch.HandleDisconnect()
	}
	return b.device.Disconnect()
}
