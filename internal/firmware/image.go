// Package firmware validates device images and fetches published
// releases.
package firmware

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ESP32 app image framing.
const (
	ImageMagic      = 0xE9
	imageHeaderSize = 24
)

// ErrInvalidImage marks data that is not an ESP32 app image.
var ErrInvalidImage = errors.New("not a valid firmware image")

// Header is the fixed-size prefix of an ESP32 app image. Enough fields
// are decoded to sanity-check an upload; the rest stay raw.
type Header struct {
	Magic        uint8
	SegmentCount uint8
	SPIMode      uint8
	SPISpeedSize uint8
	EntryAddr    uint32
	ChipID       uint16
	HashAppended bool
}

// ParseHeader decodes the image header from the front of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < imageHeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes, need %d header bytes", ErrInvalidImage, len(data), imageHeaderSize)
	}
	h := Header{
		Magic:        data[0],
		SegmentCount: data[1],
		SPIMode:      data[2],
		SPISpeedSize: data[3],
		EntryAddr:    binary.LittleEndian.Uint32(data[4:8]),
		ChipID:       binary.LittleEndian.Uint16(data[12:14]),
		HashAppended: data[23] == 1,
	}
	if h.Magic != ImageMagic {
		return Header{}, fmt.Errorf("%w: magic 0x%02X, want 0x%02X", ErrInvalidImage, h.Magic, ImageMagic)
	}
	if h.SegmentCount == 0 {
		return Header{}, fmt.Errorf("%w: no segments", ErrInvalidImage)
	}
	return h, nil
}

// ValidateImage checks that data can plausibly be flashed. The device
// refuses anything whose first byte is not the ESP32 magic, so catching
// it host-side saves a wasted upload.
func ValidateImage(data []byte) error {
	_, err := ParseHeader(data)
	return err
}
