package protocol

import "fmt"

// MaxBatchCommands caps how many commands one batch blob may carry.
const MaxBatchCommands = 50

// Command pairs a command ID with its payload, for batch blobs and the
// offline text frames.
type Command struct {
	ID      byte
	Payload []byte
}

// BuildBatch serializes commands into the batch wire form:
// [count]([len][cmd_id][payload])*. len covers the command ID byte.
func BuildBatch(cmds []Command) ([]byte, error) {
	if len(cmds) == 0 {
		return nil, fmt.Errorf("empty batch: %w", ErrInvalidParameter)
	}
	if len(cmds) > MaxBatchCommands {
		return nil, fmt.Errorf("%d commands exceeds batch limit %d: %w",
			len(cmds), MaxBatchCommands, ErrInvalidParameter)
	}
	blob := []byte{byte(len(cmds))}
	for i, c := range cmds {
		if len(c.Payload) > 0xFE {
			return nil, fmt.Errorf("batch command %d: payload %d bytes: %w",
				i, len(c.Payload), ErrInvalidParameter)
		}
		blob = append(blob, byte(1+len(c.Payload)), c.ID)
		blob = append(blob, c.Payload...)
	}
	return blob, nil
}

// ParseBatch decodes a batch blob back into its command list.
func ParseBatch(blob []byte) ([]Command, error) {
	if len(blob) < 1 {
		return nil, fmt.Errorf("batch: %w", ErrTruncatedFrame)
	}
	count := int(blob[0])
	if count == 0 || count > MaxBatchCommands {
		return nil, fmt.Errorf("batch count %d: %w", count, ErrInvalidParameter)
	}
	buf := blob[1:]
	cmds := make([]Command, 0, count)
	for i := 0; i < count; i++ {
		if len(buf) < 1 {
			return nil, fmt.Errorf("batch command %d length: %w", i, ErrTruncatedFrame)
		}
		clen := int(buf[0])
		buf = buf[1:]
		if clen < 1 {
			return nil, fmt.Errorf("batch command %d: zero length: %w", i, ErrInvalidParameter)
		}
		if len(buf) < clen {
			return nil, fmt.Errorf("batch command %d body: %w", i, ErrTruncatedFrame)
		}
		c := Command{ID: buf[0]}
		if clen > 1 {
			c.Payload = append([]byte(nil), buf[1:clen]...)
		}
		cmds = append(cmds, c)
		buf = buf[clen:]
	}
	if len(buf) != 0 {
		return nil, fmt.Errorf("batch: %d trailing bytes: %w", len(buf), ErrInvalidParameter)
	}
	return cmds, nil
}
