package pos

import "errors"

// ErrMalformedData is returned by New/Open when the token array or string
// pool bytes don't satisfy the expected binary layout.
var ErrMalformedData = errors.New("pos: malformed data")

// ErrUnknownPos is returned by PosID and GetTokens when the given POS name
// is not present in the table's pos list.
var ErrUnknownPos = errors.New("pos: unknown pos")
