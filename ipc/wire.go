package ipc

import (
	"encoding/binary"
	"errors"
	"io"
)

// Wire framing: [u32 length][body], repeated. Keeps the payload opaque to
// this package while still letting Call enforce a read deadline per-frame.

func writeFrame(w io.Writer, body []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func readFrame(r io.Reader, maxLen uint32) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxLen {
		return nil, errors.New("ipc: frame exceeds max length")
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// encodeCommand packs a Command into its wire body:
// [u8 type][u8 flags (visible|hasOutput<<1)][payload...]
func encodeCommand(c Command) []byte {
	flags := byte(0)
	if c.Visible {
		flags |= 1
	}
	if c.HasOutput {
		flags |= 2
	}
	body := make([]byte, 2+len(c.Payload))
	body[0] = byte(c.Type)
	body[1] = flags
	copy(body[2:], c.Payload)
	return body
}

func decodeCommand(body []byte) (Command, error) {
	if len(body) < 2 {
		return Command{}, errors.New("ipc: command frame truncated")
	}
	return Command{
		Type:      CommandType(body[0]),
		Visible:   body[1]&1 != 0,
		HasOutput: body[1]&2 != 0,
		Payload:   body[2:],
	}, nil
}

const maxFrameLen = 1 << 20 // 1 MiB, generous for a candidate-window update payload
