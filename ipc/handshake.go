package ipc

import (
	"encoding/binary"
	"io"
)

// hello is sent by the server immediately after accept, once, so the client
// can populate ServerProtocolVersion/ServerProductVersion before any Call.
type hello struct {
	ProtocolVersion int
	ProductVersion  string
}

func writeHello(w io.Writer, h hello) error {
	body := make([]byte, 4+2+len(h.ProductVersion))
	binary.LittleEndian.PutUint32(body[0:4], uint32(h.ProtocolVersion))
	binary.LittleEndian.PutUint16(body[4:6], uint16(len(h.ProductVersion)))
	copy(body[6:], h.ProductVersion)
	return writeFrame(w, body)
}

func readHello(r io.Reader) (hello, error) {
	body, err := readFrame(r, maxFrameLen)
	if err != nil {
		return hello{}, err
	}
	if len(body) < 6 {
		return hello{}, io.ErrUnexpectedEOF
	}
	protoVersion := int(binary.LittleEndian.Uint32(body[0:4]))
	strLen := int(binary.LittleEndian.Uint16(body[4:6]))
	if len(body) < 6+strLen {
		return hello{}, io.ErrUnexpectedEOF
	}
	return hello{
		ProtocolVersion: protoVersion,
		ProductVersion:  string(body[6 : 6+strLen]),
	}, nil
}
