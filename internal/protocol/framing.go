package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single frame's payload length; anything larger is
// treated as invalid data rather than an attempt to allocate unbounded
// memory for a corrupt or hostile length prefix.
const MaxFrameSize = 1 << 20

// WriteFrame writes a uint32_le length prefix followed by payload.
func WriteFrame(w io.Writer, payload []byte) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame, enforcing an exact-length
// read: a short read on a known length is reported as invalid data
// rather than silently truncated.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint32(hdr[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("protocol: frame of %d bytes exceeds max %d", length, MaxFrameSize)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("protocol: short read on %d-byte frame: %w", length, err)
	}
	return payload, nil
}

// WriteClientMessage frames and writes m.
func WriteClientMessage(w io.Writer, m ClientMessage) error {
	b, err := m.MarshalMsg(nil)
	if err != nil {
		return err
	}
	return WriteFrame(w, b)
}

// ReadClientMessage reads and decodes one framed ClientMessage.
func ReadClientMessage(r io.Reader) (ClientMessage, error) {
	var m ClientMessage
	payload, err := ReadFrame(r)
	if err != nil {
		return m, err
	}
	_, err = m.UnmarshalMsg(payload)
	return m, err
}

// WriteServerMessage frames and writes m.
func WriteServerMessage(w io.Writer, m ServerMessage) error {
	b, err := m.MarshalMsg(nil)
	if err != nil {
		return err
	}
	return WriteFrame(w, b)
}

// ReadServerMessage reads and decodes one framed ServerMessage.
func ReadServerMessage(r io.Reader) (ServerMessage, error) {
	var m ServerMessage
	payload, err := ReadFrame(r)
	if err != nil {
		return m, err
	}
	_, err = m.UnmarshalMsg(payload)
	return m, err
}
