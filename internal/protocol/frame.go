package protocol

import "fmt"

// Response type tags reported in the third byte of a structured
// response frame.
const (
	TypeUint8  byte = 0x01
	TypeStruct byte = 0x05
)

const responseHeaderLen = 4

// EncodeCommand builds the wire form of a command: the command ID
// followed by its payload verbatim.
func EncodeCommand(cmdID byte, payload []byte) []byte {
	frame := make([]byte, 0, 1+len(payload))
	frame = append(frame, cmdID)
	return append(frame, payload...)
}

// Response is a decoded device response. Raw always holds the complete
// frame, even for the raw-layout replies (key config reads, OTA version)
// whose bytes past the first two do not follow the [type][count] header.
type Response struct {
	Status    byte
	CommandID byte
	Raw       []byte
}

// DecodeResponse validates the two-byte prefix every response carries
// and captures the rest. Interpretation of the body is left to the
// typed accessors because not every command answers with the structured
// [type][count] layout.
func DecodeResponse(frame []byte) (Response, error) {
	if len(frame) < 2 {
		return Response{}, fmt.Errorf("response: %w (%d bytes)", ErrTruncatedFrame, len(frame))
	}
	return Response{Status: frame[0], CommandID: frame[1], Raw: frame}, nil
}

// Err converts a non-zero status into a DeviceError.
func (r Response) Err() error {
	if r.Status != StatusSuccess {
		return &DeviceError{Status: r.Status, CommandID: r.CommandID}
	}
	return nil
}

// Empty validates a response that carries no data beyond the status.
func (r Response) Empty() error {
	return r.Err()
}

// Uint8 extracts a single-byte value from a structured response.
func (r Response) Uint8() (byte, error) {
	if err := r.Err(); err != nil {
		return 0, err
	}
	if len(r.Raw) < responseHeaderLen+1 {
		return 0, fmt.Errorf("uint8 response: %w (%d bytes)", ErrShortFrame, len(r.Raw))
	}
	if r.Raw[2] != TypeUint8 {
		return 0, fmt.Errorf("uint8 response: tag 0x%02X: %w", r.Raw[2], ErrUnexpectedType)
	}
	return r.Raw[responseHeaderLen], nil
}

// Struct extracts exactly n data bytes from a structured response. The
// declared count must cover n and the frame must carry what the count
// declares.
func (r Response) Struct(n int) ([]byte, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	if len(r.Raw) < responseHeaderLen {
		return nil, fmt.Errorf("struct response: %w (%d bytes)", ErrShortFrame, len(r.Raw))
	}
	count := int(r.Raw[3])
	if count < n {
		return nil, fmt.Errorf("struct response: declared %d bytes, need %d: %w", count, n, ErrShortFrame)
	}
	if len(r.Raw) < responseHeaderLen+count {
		return nil, fmt.Errorf("struct response: declared %d bytes, frame has %d: %w",
			count, len(r.Raw)-responseHeaderLen, ErrShortFrame)
	}
	return r.Raw[responseHeaderLen : responseHeaderLen+n], nil
}

// Payload returns everything after the status and echoed command ID,
// for replies that use a command-specific layout.
func (r Response) Payload() ([]byte, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	return r.Raw[2:], nil
}
