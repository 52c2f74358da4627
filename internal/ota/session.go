// Package ota drives a firmware update session: version check, update
// service start, image upload over the device's WiFi AP, and status
// polling until the install finishes.
package ota

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/getyourway/scanpad-go/internal/config"
	"github.com/getyourway/scanpad-go/internal/firmware"
	"github.com/getyourway/scanpad-go/internal/protocol"
)

// State of an update session, mirroring the status byte the device
// reports.
type State byte

const (
	StateIdle State = iota
	StateChecking
	StateDownloading
	StateInstalling
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateDownloading:
		return "downloading"
	case StateInstalling:
		return "installing"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state-%d", byte(s))
}

var (
	ErrDeviceNotReady      = errors.New("device not ready for update")
	ErrServiceStartFailed  = errors.New("update service failed to start")
	ErrCommunicationLost   = errors.New("lost contact with update service")
	ErrDeviceReportedError = errors.New("device reported update failure")
	ErrCancelled           = errors.New("update cancelled")
)

// DefaultUploadURL is the firmware endpoint on the device's own AP.
const DefaultUploadURL = "http://192.168.4.1/firmware"

const (
	defaultPollInterval = 2 * time.Second
	maxPollFailures     = 5
)

// Caller issues one device-domain command and returns its response.
// Satisfied by channel.Channel.
type Caller interface {
	Call(d protocol.Domain, cmdID byte, payload []byte, timeout time.Duration) (protocol.Response, error)
}

// Progress is one deduplicated progress report.
type Progress struct {
	State   State
	Percent int
}

// Session is a single firmware update attempt. Sessions are not
// reusable; build a new one per update.
type Session struct {
	caller     Caller
	onProgress func(Progress)

	// Overridable for tests.
	UploadURL    string
	PollInterval time.Duration
	HTTPClient   *http.Client

	mu          sync.Mutex
	lastPercent int
	cancelSent  bool
	cancelled   chan struct{}
	cancelOnce  sync.Once
}

// New builds a session over c. onProgress may be nil; when set it fires
// once per distinct percentage.
func New(c Caller, onProgress func(Progress)) *Session {
	return &Session{
		caller:       c,
		onProgress:   onProgress,
		UploadURL:    DefaultUploadURL,
		PollInterval: defaultPollInterval,
		HTTPClient:   http.DefaultClient,
		cancelled:    make(chan struct{}),
	}
}

// CheckVersion reads the firmware version currently installed. The
// reply uses a command-specific layout: [version_len][version bytes].
func (s *Session) CheckVersion() (string, error) {
	resp, err := s.caller.Call(protocol.DomainDevice, protocol.CmdOTACheckVersion, nil, 0)
	if err != nil {
		return "", fmt.Errorf("check version: %w", err)
	}
	body, err := resp.Payload()
	if err != nil {
		return "", fmt.Errorf("check version: %w", err)
	}
	if len(body) < 1 || len(body) < 1+int(body[0]) {
		return "", fmt.Errorf("check version: %w", protocol.ErrShortFrame)
	}
	return string(body[1 : 1+int(body[0])]), nil
}

// Start verifies the device answers and asks it to bring up the update
// service. On success the device opens its WiFi AP and waits for the
// image upload.
func (s *Session) Start() error {
	if _, err := s.CheckVersion(); err != nil {
		var devErr *protocol.DeviceError
		if errors.As(err, &devErr) {
			return fmt.Errorf("%w: status 0x%02X", ErrDeviceNotReady, devErr.Status)
		}
		return err
	}
	resp, err := s.caller.Call(protocol.DomainDevice, protocol.CmdOTAStart, nil, 0)
	if err != nil {
		return fmt.Errorf("start update service: %w", err)
	}
	if err := resp.Empty(); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceStartFailed, err)
	}
	s.report(StateChecking, 0)
	return nil
}

// Upload validates image and posts it to the device's firmware
// endpoint as a multipart form.
func (s *Session) Upload(image []byte) error {
	if err := firmware.ValidateImage(image); err != nil {
		return err
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("firmware", "firmware.bin")
	if err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.UploadURL, &body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	config.Debugf("ota: uploading %d bytes to %s", len(image), s.UploadURL)
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload firmware: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload firmware: unexpected status %s", resp.Status)
	}
	return nil
}

// Run polls the device until the update reaches a terminal state. Up to
// maxPollFailures consecutive poll errors are tolerated; the device is
// busy flashing and misses requests.
func (s *Session) Run() error {
	failures := 0
	for {
		select {
		case <-s.cancelled:
			// The command slot is free here, so a cancel command that
			// lost the race against an in-flight poll gets its retry.
			s.sendCancel()
			return ErrCancelled
		case <-time.After(s.PollInterval):
		}

		resp, err := s.caller.Call(protocol.DomainDevice, protocol.CmdOTAGetStatus, nil, 0)
		var data []byte
		if err == nil {
			data, err = resp.Struct(2)
		}
		if err != nil {
			failures++
			config.Debugf("ota: status poll failed (%d/%d): %v", failures, maxPollFailures, err)
			if failures > maxPollFailures {
				return fmt.Errorf("%w: %v", ErrCommunicationLost, err)
			}
			continue
		}
		failures = 0

		state := State(data[0])
		percent := int(data[1])
		s.report(state, percent)

		switch state {
		case StateSuccess:
			return nil
		case StateError:
			return ErrDeviceReportedError
		}
	}
}

// Update performs the whole flow: start the service, upload the image,
// monitor until done.
func (s *Session) Update(image []byte) error {
	if err := firmware.ValidateImage(image); err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}
	if err := s.Upload(image); err != nil {
		return err
	}
	return s.Run()
}

// Cancel aborts the session. The device is told to drop the update; if
// that command finds the slot occupied by an in-flight poll, Run
// reissues it on its way out. The command failing does not undo the
// cancel.
func (s *Session) Cancel() {
	s.cancelOnce.Do(func() {
		close(s.cancelled)
	})
	s.sendCancel()
}

// sendCancel issues OTA_CANCEL unless a previous attempt already went
// through. An ErrBusy attempt stays unsent so the next caller retries.
func (s *Session) sendCancel() {
	s.mu.Lock()
	sent := s.cancelSent
	s.mu.Unlock()
	if sent {
		return
	}
	_, err := s.caller.Call(protocol.DomainDevice, protocol.CmdOTACancel, nil, 0)
	if errors.Is(err, protocol.ErrBusy) {
		config.Debugf("ota: cancel command deferred: %v", err)
		return
	}
	if err != nil {
		config.Debugf("ota: cancel command failed: %v", err)
	}
	s.mu.Lock()
	s.cancelSent = true
	s.mu.Unlock()
}

// report forwards a progress sample to the callback, suppressing
// repeats of the same percentage.
func (s *Session) report(state State, percent int) {
	s.mu.Lock()
	skip := percent == s.lastPercent
	if !skip {
		s.lastPercent = percent
	}
	s.mu.Unlock()
	if skip || s.onProgress == nil {
		return
	}
	s.onProgress(Progress{State: state, Percent: percent})
}
