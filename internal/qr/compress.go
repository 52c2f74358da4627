// Package qr implements the offline text frames the device accepts by
// scanning a barcode: full keyboard configurations, fragmented Lua
// scripts, single commands and command batches.
package qr

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// Codec errors.
var (
	ErrBadMagic                   = errors.New("bad container magic")
	ErrUnsupportedVersion         = errors.New("unsupported container version")
	ErrCorruptData                = errors.New("corrupt compressed data")
	ErrUnsupportedContainerAction = errors.New("action type not representable in container")
	ErrFragmentTooSmall           = errors.New("fragment capacity too small")
	ErrTooManyFragments           = errors.New("script needs too many fragments")
	ErrFragmentSequence           = errors.New("fragment sequence invalid")
	ErrBadFrame                   = errors.New("unrecognized text frame")
)

// DefaultCompressionLevel balances density against encode time for
// typical configs.
const DefaultCompressionLevel = 6

func compress(data []byte, level int) ([]byte, error) {
	if level < zlib.BestSpeed || level > zlib.BestCompression {
		return nil, fmt.Errorf("zlib level %d out of range", level)
	}
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(blob []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	return data, nil
}
