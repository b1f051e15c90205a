package pos

import (
	"encoding/binary"
	"fmt"
)

// recordSize is the packed, little-endian width of one TokenRecord.
const recordSize = 8

// TokenRecord is one packed entry of a TokenArray, decoded from its 8-byte
// little-endian on-disk form.
type TokenRecord struct {
	PosIndex         uint16
	ValueSuffixIndex uint16
	KeySuffixIndex   uint16
	ConjugationID    uint16
}

// TokenArray is a contiguous, non-owning view over 8-byte packed
// TokenRecords, sorted ascending by PosIndex. It never allocates per record:
// At performs explicit unaligned little-endian loads over the borrowed bytes.
type TokenArray struct {
	raw []byte
}

// newTokenArray validates raw's length and wraps it. It does not validate
// ordinals — that is the caller's job, since it needs the StringPool.
func newTokenArray(raw []byte) (TokenArray, error) {
	if len(raw)%recordSize != 0 {
		return TokenArray{}, fmt.Errorf("%w: token array length %d not a multiple of %d", ErrMalformedData, len(raw), recordSize)
	}
	return TokenArray{raw: raw}, nil
}

// Len returns the number of records.
func (a TokenArray) Len() int {
	return len(a.raw) / recordSize
}

// At decodes and returns the i-th record. i must be in [0, Len()).
func (a TokenArray) At(i int) TokenRecord {
	b := a.raw[i*recordSize : (i+1)*recordSize]
	return TokenRecord{
		PosIndex:         binary.LittleEndian.Uint16(b[0:2]),
		ValueSuffixIndex: binary.LittleEndian.Uint16(b[2:4]),
		KeySuffixIndex:   binary.LittleEndian.Uint16(b[4:6]),
		ConjugationID:    binary.LittleEndian.Uint16(b[6:8]),
	}
}
