//go:build !linux

package ipc

import (
	"log/slog"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

// OSSpawner spawns the renderer with os/exec. Linux additionally sets
// Pdeathsig (see spawn_linux.go); other platforms rely on their own process
// group / launchd conventions, which this package does not implement.
type OSSpawner struct{}

func (OSSpawner) Spawn(path string, extraArg string) (int, error) {
	args := []string{}
	if extraArg != "" {
		args = append(args, extraArg)
	}
	cmd := exec.Command(path, args...)

	slog.Debug("ipc: spawning renderer", "argv", shellquote.Join(append([]string{path}, args...)...))

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	return cmd.Process.Pid, nil
}
