package proto

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// The wire format is a 4-byte big-endian length prefix followed by the
// envelope encoded as JSON. The prefix counts body bytes only; there is
// no magic or version byte. The frame boundary is the sole
// synchronization point.

const (
	prefixSize = 4

	// MaxFrameSize bounds a single body so a bad prefix cannot make the
	// reader allocate unbounded memory.
	MaxFrameSize = 8 << 20
)

// ErrMalformed reports a body that arrived whole but failed to decode.
// The stream remains framed and usable after this error.
var ErrMalformed = errors.New("malformed message body")

// WriteFrame encodes m and writes the prefix and body as one buffer.
func WriteFrame(w io.Writer, m *Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if len(body) > MaxFrameSize {
		return fmt.Errorf("message body %d bytes exceeds frame limit", len(body))
	}

	frame := make([]byte, prefixSize+len(body))
	binary.BigEndian.PutUint32(frame[:prefixSize], uint32(len(body)))
	copy(frame[prefixSize:], body)

	n, err := w.Write(frame)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("short frame write: %d of %d bytes", n, len(frame))
	}
	return nil
}

// ReadFrame reads one complete frame, retrying partial reads until the
// prefix and the declared body are both in hand. Returns io.EOF when the
// peer closed before a new frame began, io.ErrUnexpectedEOF when it
// closed mid-frame, and ErrMalformed when the body does not decode.
func ReadFrame(r io.Reader) (*Message, error) {
	var prefix [prefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame prefix: %w", err)
	}

	size := binary.BigEndian.Uint32(prefix[:])
	if size == 0 || size > MaxFrameSize {
		return nil, fmt.Errorf("frame size %d out of range", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}

	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &m, nil
}
