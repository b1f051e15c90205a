package pos

import (
	"encoding/binary"
	"fmt"
)

// StringPool is a sorted, append-only sequence of byte strings indexed by a
// 16-bit ordinal. It is a non-owning view over the serialized-string-array
// convention: a u32 count N, N+1 ascending u32 offsets, then a UTF-8 blob.
// offsets[i+1]-offsets[i] gives entry i's byte length; offsets[N] is the
// blob's total length, which doubles as this region's trailer size.
type StringPool struct {
	data    []byte // the blob, sliced to its own region
	offsets []uint32
}

const stringPoolHeaderSize = 4

// parseStringPool parses a StringPool from the head of buf and returns it
// together with the number of bytes it occupies, so the caller can locate
// whatever region follows it (here, the token array).
func parseStringPool(buf []byte) (StringPool, int, error) {
	if len(buf) < stringPoolHeaderSize {
		return StringPool{}, 0, fmt.Errorf("%w: string pool header truncated", ErrMalformedData)
	}
	count := binary.LittleEndian.Uint32(buf[0:4])
	offsetsStart := stringPoolHeaderSize
	offsetsBytes := 4 * (int(count) + 1)
	if len(buf) < offsetsStart+offsetsBytes {
		return StringPool{}, 0, fmt.Errorf("%w: string pool offsets truncated", ErrMalformedData)
	}

	offsets := make([]uint32, count+1)
	for i := range offsets {
		off := offsetsStart + 4*i
		offsets[i] = binary.LittleEndian.Uint32(buf[off : off+4])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return StringPool{}, 0, fmt.Errorf("%w: string pool offsets not ascending", ErrMalformedData)
		}
	}

	blobStart := offsetsStart + offsetsBytes
	blobLen := int(offsets[count])
	if len(buf) < blobStart+blobLen {
		return StringPool{}, 0, fmt.Errorf("%w: string pool blob truncated", ErrMalformedData)
	}

	pool := StringPool{
		data:    buf[blobStart : blobStart+blobLen : blobStart+blobLen],
		offsets: offsets,
	}
	return pool, blobStart + blobLen, nil
}

// Len returns the number of entries in the pool.
func (p StringPool) Len() int {
	if len(p.offsets) == 0 {
		return 0
	}
	return len(p.offsets) - 1
}

// Get returns the string at the given ordinal, or an error if it is out of range.
func (p StringPool) Get(ordinal uint16) (string, error) {
	if int(ordinal) >= p.Len() {
		return "", fmt.Errorf("%w: string pool ordinal %d out of range (len=%d)", ErrMalformedData, ordinal, p.Len())
	}
	lo, hi := p.offsets[ordinal], p.offsets[ordinal+1]
	return string(p.data[lo:hi]), nil
}
