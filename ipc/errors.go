package ipc

import "errors"

// ErrTimeout is reported by Client.LastError() when Call did not complete
// within its deadline.
var ErrTimeout = errors.New("ipc: call timed out")

// ErrNotConnected is returned by Call when the client has no live connection
// to a server and no implicit dial is appropriate.
var ErrNotConnected = errors.New("ipc: not connected")
