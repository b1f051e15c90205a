// Package pos implements a zero-copy, read-only lookup table over a user
// dictionary's packed POS (part-of-speech) token array.
package pos

import (
	"fmt"
	"sort"
	"strings"
)

// LookupTable is an immutable, thread-safe-for-reads view over a TokenArray
// and its StringPool. The backing byte slices must outlive it; LookupTable
// never copies or owns them beyond the slice headers.
type LookupTable struct {
	tokens TokenArray
	pool   StringPool

	posList         []string
	posIndexOf      map[string]uint16
	defaultPosIndex int
}

// New builds a LookupTable from a token array and a string pool, both
// supplied as immutable byte views by an external data manager. It fails
// with ErrMalformedData if the token array's length isn't a multiple of 8,
// the string pool header is invalid, or any ordinal referenced by a token
// record is out of range.
func New(tokenBytes, stringPoolBytes []byte) (*LookupTable, error) {
	pool, _, err := parseStringPool(stringPoolBytes)
	if err != nil {
		return nil, err
	}

	tokens, err := newTokenArray(tokenBytes)
	if err != nil {
		return nil, err
	}

	posList := make([]string, 0)
	posIndexOf := make(map[string]uint16)
	seen := make(map[uint16]bool)

	n := tokens.Len()
	for i := 0; i < n; i++ {
		rec := tokens.At(i)
		for _, ord := range [...]uint16{rec.PosIndex, rec.ValueSuffixIndex, rec.KeySuffixIndex} {
			if int(ord) >= pool.Len() {
				return nil, fmt.Errorf("%w: token %d references out-of-range ordinal %d", ErrMalformedData, i, ord)
			}
		}
		if !seen[rec.PosIndex] {
			seen[rec.PosIndex] = true
			name, err := pool.Get(rec.PosIndex)
			if err != nil {
				return nil, err
			}
			posIndexOf[name] = rec.PosIndex
			posList = append(posList, name)
		}
	}

	defaultPosIndex := 0
	if marker, err := pool.Get(0); err == nil {
		for i, name := range posList {
			if name == marker {
				defaultPosIndex = i
				break
			}
		}
	}

	return &LookupTable{
		tokens:          tokens,
		pool:            pool,
		posList:         posList,
		posIndexOf:      posIndexOf,
		defaultPosIndex: defaultPosIndex,
	}, nil
}

// PosList returns the distinct POS names in first-encounter order.
func (t *LookupTable) PosList() []string {
	out := make([]string, len(t.posList))
	copy(out, t.posList)
	return out
}

// DefaultPosIndex returns the index into PosList() of the preselected POS.
func (t *LookupTable) DefaultPosIndex() int {
	return t.defaultPosIndex
}

// IsValidPos reports whether name is a known POS name.
func (t *LookupTable) IsValidPos(name string) bool {
	_, ok := t.posIndexOf[name]
	return ok
}

// PosIndexOf returns a copy of the name -> pos_index mapping, for tooling
// that wants to dump the table's full pos list deterministically.
func (t *LookupTable) PosIndexOf() map[string]uint16 {
	out := make(map[string]uint16, len(t.posIndexOf))
	for k, v := range t.posIndexOf {
		out[k] = v
	}
	return out
}

// PosID returns the pos_index ordinal for name, or ErrUnknownPos.
func (t *LookupTable) PosID(name string) (uint16, error) {
	id, ok := t.posIndexOf[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPos, name)
	}
	return id, nil
}

// GetTokens resolves posName to its pos_index, then returns every token in
// the matching range, with key/value formed by suffix-concatenation and
// NonJaLocale set when locale is non-empty and not "ja"-prefixed.
func (t *LookupTable) GetTokens(key, value, posName, locale string) ([]UserToken, error) {
	target, err := t.PosID(posName)
	if err != nil {
		return nil, err
	}

	n := t.tokens.Len()
	lo := sort.Search(n, func(i int) bool { return t.tokens.At(i).PosIndex >= target })
	hi := sort.Search(n, func(i int) bool { return t.tokens.At(i).PosIndex > target })

	nonJa := locale != "" && !strings.HasPrefix(strings.ToLower(locale), "ja")

	out := make([]UserToken, 0, hi-lo)
	for i := lo; i < hi; i++ {
		rec := t.tokens.At(i)
		keySuffix, err := t.pool.Get(rec.KeySuffixIndex)
		if err != nil {
			return nil, err
		}
		valueSuffix, err := t.pool.Get(rec.ValueSuffixIndex)
		if err != nil {
			return nil, err
		}

		tok := UserToken{
			Key:   key + keySuffix,
			Value: value + valueSuffix,
			ID:    rec.ConjugationID,
		}
		if nonJa {
			tok.Attributes = tok.Attributes.Or(NonJaLocale)
		}
		out = append(out, tok)
	}
	return out, nil
}
