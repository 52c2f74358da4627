package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestBatchRoundTrip(t *testing.T) {
	cmds := []Command{
		{ID: CmdLEDSetState, Payload: []byte{LEDGreen1, 0x01}},
		{ID: CmdBuzzerMelody, Payload: []byte{MelodySuccess}},
		{ID: CmdLEDAllOff},
	}
	blob, err := BuildBatch(cmds)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x03,
		0x03, 0x10, 0x01, 0x01,
		0x02, 0x21, 0x09,
		0x01, 0x14,
	}
	if !bytes.Equal(blob, want) {
		t.Errorf("blob = % X\nwant   % X", blob, want)
	}
	got, err := ParseBatch(blob)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, cmds) {
		t.Errorf("round trip = %+v, want %+v", got, cmds)
	}
}

func TestBuildBatchLimits(t *testing.T) {
	if _, err := BuildBatch(nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("empty batch err = %v", err)
	}
	big := make([]Command, MaxBatchCommands+1)
	if _, err := BuildBatch(big); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("oversized batch err = %v", err)
	}
	if _, err := BuildBatch(make([]Command, MaxBatchCommands)); err != nil {
		t.Errorf("at the limit: %v", err)
	}
}

func TestParseBatchRejects(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
		want error
	}{
		{"empty", nil, ErrTruncatedFrame},
		{"zero count", []byte{0x00}, ErrInvalidParameter},
		{"missing command", []byte{0x01}, ErrTruncatedFrame},
		{"zero length entry", []byte{0x01, 0x00}, ErrInvalidParameter},
		{"short body", []byte{0x01, 0x03, 0x10}, ErrTruncatedFrame},
		{"trailing bytes", []byte{0x01, 0x01, 0x14, 0xFF}, ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBatch(tt.blob); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
