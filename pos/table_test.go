package pos

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStringPool(entries []string) []byte {
	blob := make([]byte, 0)
	offsets := make([]uint32, len(entries)+1)
	offsets[0] = 0
	for i, s := range entries {
		blob = append(blob, s...)
		offsets[i+1] = uint32(len(blob))
	}

	buf := make([]byte, 4+4*len(offsets))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(entries)))
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(buf[4+4*i:8+4*i], off)
	}
	return append(buf, blob...)
}

func buildTokenArray(records []TokenRecord) []byte {
	buf := make([]byte, 8*len(records))
	for i, r := range records {
		b := buf[8*i : 8*i+8]
		binary.LittleEndian.PutUint16(b[0:2], r.PosIndex)
		binary.LittleEndian.PutUint16(b[2:4], r.ValueSuffixIndex)
		binary.LittleEndian.PutUint16(b[4:6], r.KeySuffixIndex)
		binary.LittleEndian.PutUint16(b[6:8], r.ConjugationID)
	}
	return buf
}

// singleNounTokenTable builds a minimal table with one noun token:
// StringPool = ["", "い", "た", "名詞"]; one record {pos=3, value_suffix=0, key_suffix=1, conj=7}.
func singleNounTokenTable(t *testing.T) *LookupTable {
	t.Helper()
	sp := buildStringPool([]string{"", "い", "た", "名詞"})
	ta := buildTokenArray([]TokenRecord{
		{PosIndex: 3, ValueSuffixIndex: 0, KeySuffixIndex: 1, ConjugationID: 7},
	})
	table, err := New(ta, sp)
	require.NoError(t, err)
	return table
}

func TestGetTokensJoinsKeyAndValueSuffixes(t *testing.T) {
	table := singleNounTokenTable(t)

	assert.Equal(t, []string{"名詞"}, table.PosList())

	tokens, err := table.GetTokens("歩", "歩", "名詞", "ja")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, UserToken{Key: "歩い", Value: "歩", ID: 7, Attributes: 0, Comment: ""}, tokens[0])
}

func TestGetTokensSetsNonJaLocaleForNonJapaneseLocale(t *testing.T) {
	table := singleNounTokenTable(t)

	tokens, err := table.GetTokens("歩", "歩", "名詞", "en")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, NonJaLocale, tokens[0].Attributes)
}

func TestGetTokensReturnsUnknownPosForUnregisteredName(t *testing.T) {
	table := singleNounTokenTable(t)

	_, err := table.GetTokens("x", "y", "動詞", "")
	assert.ErrorIs(t, err, ErrUnknownPos)
}

func TestConstructionRejectsMisalignedTokenArray(t *testing.T) {
	sp := buildStringPool([]string{"a"})
	_, err := New([]byte{1, 2, 3}, sp)
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestConstructionRejectsOutOfRangeOrdinal(t *testing.T) {
	sp := buildStringPool([]string{"a"})
	ta := buildTokenArray([]TokenRecord{{PosIndex: 5, ValueSuffixIndex: 0, KeySuffixIndex: 0, ConjugationID: 0}})
	_, err := New(ta, sp)
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestGetTokensPreservesEncounterOrderAndSuffixJoin(t *testing.T) {
	sp := buildStringPool([]string{"", "a", "b", "noun", "verb"})
	ta := buildTokenArray([]TokenRecord{
		{PosIndex: 3, ValueSuffixIndex: 1, KeySuffixIndex: 2, ConjugationID: 1},
		{PosIndex: 3, ValueSuffixIndex: 2, KeySuffixIndex: 1, ConjugationID: 3},
		{PosIndex: 4, ValueSuffixIndex: 0, KeySuffixIndex: 0, ConjugationID: 2},
	})
	table, err := New(ta, sp)
	require.NoError(t, err)

	assert.Equal(t, []string{"noun", "verb"}, table.PosList())

	tokens, err := table.GetTokens("k", "v", "noun", "")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "kb", tokens[0].Key)
	assert.Equal(t, "va", tokens[0].Value)
	assert.Equal(t, uint16(1), tokens[0].ID)
	assert.Equal(t, "ka", tokens[1].Key)
	assert.Equal(t, "vb", tokens[1].Value)
	assert.Equal(t, uint16(3), tokens[1].ID)
}

func TestLocaleAttributeRule(t *testing.T) {
	table := singleNounTokenTable(t)

	for _, locale := range []string{"ja", "ja-JP", "JA"} {
		tokens, err := table.GetTokens("歩", "歩", "名詞", locale)
		require.NoError(t, err)
		assert.False(t, tokens[0].Attributes.Has(NonJaLocale), "locale %q", locale)
	}

	tokens, err := table.GetTokens("歩", "歩", "名詞", "en-US")
	require.NoError(t, err)
	assert.True(t, tokens[0].Attributes.Has(NonJaLocale))

	tokens, err = table.GetTokens("歩", "歩", "名詞", "")
	require.NoError(t, err)
	assert.False(t, tokens[0].Attributes.Has(NonJaLocale))
}

func TestPosIDPresentIffValid(t *testing.T) {
	table := singleNounTokenTable(t)

	assert.True(t, table.IsValidPos("名詞"))
	id, err := table.PosID("名詞")
	require.NoError(t, err)
	assert.Equal(t, uint16(3), id)

	assert.False(t, table.IsValidPos("動詞"))
	_, err = table.PosID("動詞")
	assert.True(t, errors.Is(err, ErrUnknownPos))

	posList := table.PosList()
	assert.True(t, table.IsValidPos(posList[table.DefaultPosIndex()]))
}

func TestEmptyTokenArrayYieldsEmptyPosList(t *testing.T) {
	sp := buildStringPool([]string{"", "noun"})
	table, err := New(nil, sp)
	require.NoError(t, err)
	assert.Empty(t, table.PosList())

	_, err = table.GetTokens("k", "v", "noun", "")
	assert.ErrorIs(t, err, ErrUnknownPos)
}

func TestEmptyKeyAndValueAreLegal(t *testing.T) {
	table := singleNounTokenTable(t)
	tokens, err := table.GetTokens("", "", "名詞", "ja")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "い", tokens[0].Key)
	assert.Equal(t, "", tokens[0].Value)
}
