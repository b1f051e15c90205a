package renderer

import (
	"log/slog"
	"sync/atomic"

	"github.com/nozomi-ime/ime-core/ipc"
)

// Launcher owns the actual child-process spawn and the operator-facing
// error surfacing that goes with it. This package has no GUI layer of its
// own, so ShowFatalDialog logs instead of popping a window; an embedding
// process with a GUI can supply its own Launcher.
type Launcher interface {
	Spawn(path, extraArg string) (pid int, err error)
	SetSuppressErrorDialog(bool)
	ShowFatalDialog(reason FatalReason)
}

// DefaultLauncher wraps an ipc.Spawner and gates ShowFatalDialog on a
// suppress flag set via SetSuppressErrorDialog.
type DefaultLauncher struct {
	spawner   ipc.Spawner
	suppressed atomic.Bool
}

func NewDefaultLauncher(spawner ipc.Spawner) *DefaultLauncher {
	return &DefaultLauncher{spawner: spawner}
}

func (l *DefaultLauncher) Spawn(path, extraArg string) (int, error) {
	return l.spawner.Spawn(path, extraArg)
}

func (l *DefaultLauncher) SetSuppressErrorDialog(b bool) {
	l.suppressed.Store(b)
}

func (l *DefaultLauncher) ShowFatalDialog(reason FatalReason) {
	if l.suppressed.Load() {
		slog.Debug("renderer: fatal error dialog suppressed", "reason", reason)
		return
	}
	slog.Error("renderer: fatal error", "reason", reason)
}
