package qr

import (
	"encoding/base64"
	"fmt"
)

// MaxFragments caps a fragment series; a script needing more cannot be
// deployed over barcodes.
const MaxFragments = 99

// Fragment is one piece of a fragmented Lua script. Payload holds a
// slice of the base64 stream, not decoded bytes; only the reassembled
// series can be decoded.
type Fragment struct {
	Number  int
	Final   bool
	Payload string
}

// Text renders the fragment's frame. Intermediate fragments carry their
// 1-based number, the last fragment always uses the X marker.
func (f Fragment) Text() string {
	if f.Final {
		return "$LUAX:" + f.Payload + frameEnd
	}
	return fmt.Sprintf("$LUA%d:%s%s", f.Number, f.Payload, frameEnd)
}

// fragmentOverhead is the frame chrome around a fragment's payload:
// "$LUA<n>:" plus the trailing "$". One digit of n fits in 7 chars; two
// digits take 8. The final "$LUAX:" marker also fits in 7, but a series
// that reached double digits keeps the conservative figure so capacity
// never shrinks retroactively.
func fragmentOverhead(number int) int {
	if number <= 9 {
		return 7
	}
	return 8
}

// Split compresses script, base64-encodes it and cuts the stream into
// fragments whose rendered frames each fit in maxFrameLen characters.
func Split(script []byte, maxFrameLen, level int) ([]Fragment, error) {
	packed, err := compress(script, level)
	if err != nil {
		return nil, err
	}
	stream := base64.StdEncoding.EncodeToString(packed)

	if len(stream)+fragmentOverhead(1) <= maxFrameLen {
		return []Fragment{{Number: 1, Final: true, Payload: stream}}, nil
	}

	var frags []Fragment
	for number := 1; len(stream) > 0; number++ {
		if number > MaxFragments {
			return nil, fmt.Errorf("%w (limit %d)", ErrTooManyFragments, MaxFragments)
		}
		capacity := maxFrameLen - fragmentOverhead(number)
		if capacity <= 0 {
			return nil, fmt.Errorf("%w: frame length %d leaves no payload room", ErrFragmentTooSmall, maxFrameLen)
		}
		n := capacity
		if n > len(stream) {
			n = len(stream)
		}
		frags = append(frags, Fragment{
			Number:  number,
			Final:   n == len(stream),
			Payload: stream[:n],
		})
		stream = stream[n:]
	}
	return frags, nil
}

// Reassemble validates a fragment series and decodes the script it
// carries. Fragments must be numbered contiguously from 1 and exactly
// the last one must be final.
func Reassemble(frags []Fragment) ([]byte, error) {
	if len(frags) == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrFragmentSequence)
	}
	var stream string
	for i, f := range frags {
		// A parsed $LUAX: frame has no number; it is pinned by position
		// instead.
		if f.Number != i+1 && !(f.Final && f.Number == 0) {
			return nil, fmt.Errorf("%w: fragment %d at position %d", ErrFragmentSequence, f.Number, i)
		}
		last := i == len(frags)-1
		if f.Final != last {
			if f.Final {
				return nil, fmt.Errorf("%w: final fragment %d before end", ErrFragmentSequence, f.Number)
			}
			return nil, fmt.Errorf("%w: missing final marker", ErrFragmentSequence)
		}
		stream += f.Payload
	}
	packed, err := base64.StdEncoding.DecodeString(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrCorruptData, err)
	}
	return decompress(packed)
}
