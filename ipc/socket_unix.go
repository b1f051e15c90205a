//go:build !windows

package ipc

import (
	"os"
	"path/filepath"
)

// socketPath derives a per-service unix-domain socket path in the system
// temp directory, the same place sqldef's own DummyUnixSocket test double
// rendezvouses its listener and dialer.
func socketPath(serviceName string) string {
	return filepath.Join(os.TempDir(), "ime-renderer-"+serviceName+".sock")
}
