// Package channel serializes request/response traffic to the device.
// Each domain allows one outstanding command; the response arrives as a
// notification on the matching response characteristic and is correlated
// by the echoed command ID.
package channel

import (
	"fmt"
	"sync"
	"time"

	"github.com/getyourway/scanpad-go/internal/config"
	"github.com/getyourway/scanpad-go/internal/protocol"
)

// DefaultTimeout bounds how long Call waits for a response.
const DefaultTimeout = 5 * time.Second

// Bearer writes a command frame to the characteristic of the given
// domain. Implementations deliver response notifications back through
// HandleNotify and disconnects through HandleDisconnect.
type Bearer interface {
	Write(d protocol.Domain, frame []byte) error
}

// pending is the single in-flight slot of one domain. The response
// channel has capacity 1 so a late delivery never blocks the notify
// path.
type pending struct {
	cmdID byte
	resp  chan protocol.Response
}

// Channel multiplexes the two command domains over one bearer.
type Channel struct {
	bearer Bearer

	mu        sync.Mutex
	connected bool
	discon    chan struct{}
	slots     [2]*pending
}

// New returns a channel over b. It starts disarmed; call Rearm once the
// bearer is connected and notifications are enabled.
func New(b Bearer) *Channel {
	return &Channel{bearer: b}
}

// Rearm marks the channel connected and resets both domains to idle.
// Responses belonging to a previous connection can no longer match
// because the slots are dropped.
func (c *Channel) Rearm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	c.discon = make(chan struct{})
	c.slots = [2]*pending{}
}

// Connected reports whether the channel is armed.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// HandleDisconnect fails all waiting calls with ErrConnectionLost and
// disarms the channel. Safe to call more than once.
func (c *Channel) HandleDisconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}
	c.connected = false
	close(c.discon)
}

// HandleNotify delivers a response frame from the bearer. Frames that do
// not correlate with the in-flight command of their domain are dropped.
func (c *Channel) HandleNotify(d protocol.Domain, frame []byte) {
	resp, err := protocol.DecodeResponse(frame)
	if err != nil {
		config.Debugf("channel: %s: dropping malformed frame: %v", d, err)
		return
	}

	c.mu.Lock()
	p := c.slots[d]
	if p == nil || p.cmdID != resp.CommandID {
		c.mu.Unlock()
		if p == nil {
			config.Debugf("channel: %s: dropping unsolicited response for 0x%02X", d, resp.CommandID)
		} else {
			config.Debugf("channel: %s: dropping response for 0x%02X while awaiting 0x%02X",
				d, resp.CommandID, p.cmdID)
		}
		return
	}
	c.slots[d] = nil
	c.mu.Unlock()

	p.resp <- resp
}

// Call sends one command and waits for its response. A zero timeout
// means DefaultTimeout. While a call is in flight on a domain, further
// calls on that domain fail with ErrBusy.
func (c *Channel) Call(d protocol.Domain, cmdID byte, payload []byte, timeout time.Duration) (protocol.Response, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return protocol.Response{}, protocol.ErrNotConnected
	}
	if c.slots[d] != nil {
		c.mu.Unlock()
		return protocol.Response{}, fmt.Errorf("%s domain: %w", d, protocol.ErrBusy)
	}
	p := &pending{cmdID: cmdID, resp: make(chan protocol.Response, 1)}
	c.slots[d] = p
	discon := c.discon
	c.mu.Unlock()

	frame := protocol.EncodeCommand(cmdID, payload)
	config.Debugf("channel: %s: -> 0x%02X (%d bytes)", d, cmdID, len(frame))
	if err := c.bearer.Write(d, frame); err != nil {
		c.clear(d, p)
		return protocol.Response{}, fmt.Errorf("write command 0x%02X: %w", cmdID, err)
	}

	select {
	case resp := <-p.resp:
		config.Debugf("channel: %s: <- 0x%02X status 0x%02X", d, resp.CommandID, resp.Status)
		return resp, nil
	case <-time.After(timeout):
		c.clear(d, p)
		return protocol.Response{}, fmt.Errorf("command 0x%02X after %v: %w", cmdID, timeout, protocol.ErrTimeout)
	case <-discon:
		c.clear(d, p)
		return protocol.Response{}, fmt.Errorf("command 0x%02X: %w", cmdID, protocol.ErrConnectionLost)
	}
}

// clear releases the slot only if it still belongs to p, so a response
// that raced in for a newer call is never discarded here.
func (c *Channel) clear(d protocol.Domain, p *pending) {
	c.mu.Lock()
	if c.slots[d] == p {
		c.slots[d] = nil
	}
	c.mu.Unlock()
}
