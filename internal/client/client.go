// Package client is the typed surface over the wire protocol: every
// device capability as a method building the right payload and decoding
// the right reply shape.
package client

import (
	"fmt"
	"time"

	"github.com/getyourway/scanpad-go/internal/protocol"
)

// Transport issues one command on a domain and returns its response.
// channel.Channel satisfies this; tests substitute a fake.
type Transport interface {
	Call(d protocol.Domain, cmdID byte, payload []byte, timeout time.Duration) (protocol.Response, error)
}

// Client wraps a transport with typed device operations.
type Client struct {
	tr      Transport
	timeout time.Duration
}

// New builds a client. A zero timeout uses the transport's default.
func New(tr Transport, timeout time.Duration) *Client {
	return &Client{tr: tr, timeout: timeout}
}

// Transport exposes the underlying transport, for layers like the
// update session that issue their own commands.
func (c *Client) Transport() Transport {
	return c.tr
}

func (c *Client) config(cmdID byte, payload []byte) (protocol.Response, error) {
	return c.tr.Call(protocol.DomainConfig, cmdID, payload, c.timeout)
}

func (c *Client) device(cmdID byte, payload []byte) (protocol.Response, error) {
	return c.tr.Call(protocol.DomainDevice, cmdID, payload, c.timeout)
}

// deviceEmpty runs a device command that answers with status only.
func (c *Client) deviceEmpty(cmdID byte, payload []byte) error {
	resp, err := c.device(cmdID, payload)
	if err != nil {
		return err
	}
	return resp.Empty()
}

func (c *Client) configEmpty(cmdID byte, payload []byte) error {
	resp, err := c.config(cmdID, payload)
	if err != nil {
		return err
	}
	return resp.Empty()
}

// lengthPrefixedString decodes the [len][bytes] reply layout shared by
// the name, info and version reads.
func lengthPrefixedString(resp protocol.Response) (string, error) {
	body, err := resp.Payload()
	if err != nil {
		return "", err
	}
	if len(body) < 1 || len(body) < 1+int(body[0]) {
		return "", fmt.Errorf("string response: %w", protocol.ErrShortFrame)
	}
	return string(body[1 : 1+int(body[0])]), nil
}
