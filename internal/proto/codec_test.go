package proto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := &Message{
		MessageID:  "m1",
		SenderGUID: "c1",
		Command:    CommandEcho,
		Data:       []byte("hi"),
	}

	if err := WriteFrame(&buf, in); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	out, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if out.MessageID != "m1" || out.SenderGUID != "c1" || string(out.Data) != "hi" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestReadFrameSequential(t *testing.T) {
	var buf bytes.Buffer
	for _, id := range []string{"a", "b", "c"} {
		if err := WriteFrame(&buf, &Message{MessageID: id, Command: CommandEcho}); err != nil {
			t.Fatalf("write frame %s: %v", id, err)
		}
	}

	for _, id := range []string{"a", "b", "c"} {
		m, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("read frame %s: %v", id, err)
		}
		if m.MessageID != id {
			t.Fatalf("got %q, want %q", m.MessageID, id)
		}
	}
	if _, err := ReadFrame(&buf); err != io.EOF {
		t.Fatalf("expected EOF after last frame, got %v", err)
	}
}

func TestReadFrameMalformedBodyKeepsStreamFramed(t *testing.T) {
	var buf bytes.Buffer

	// A complete frame whose body is not a valid envelope.
	bad := []byte("{this is not json")
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(bad)))
	buf.Write(prefix[:])
	buf.Write(bad)

	if err := WriteFrame(&buf, &Message{MessageID: "after", Command: CommandEcho}); err != nil {
		t.Fatalf("write good frame: %v", err)
	}

	_, err := ReadFrame(&buf)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}

	// The stream stays synchronized: the next frame reads cleanly.
	m, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read frame after malformed: %v", err)
	}
	if m.MessageID != "after" {
		t.Fatalf("stream out of sync, got %+v", m)
	}
}

func TestReadFrameTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], 100)
	buf.Write(prefix[:])
	buf.WriteString("short")

	if _, err := ReadFrame(&buf); err == nil {
		t.Fatal("expected error for truncated body")
	}
}

func TestReadFrameRejectsOversizedPrefix(t *testing.T) {
	var buf bytes.Buffer
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], MaxFrameSize+1)
	buf.Write(prefix[:])

	if _, err := ReadFrame(&buf); err == nil {
		t.Fatal("expected error for oversized frame")
	}
}

func TestReadFrameEmptyStream(t *testing.T) {
	if _, err := ReadFrame(bytes.NewReader(nil)); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
