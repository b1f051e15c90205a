//go:build linux

package ipc

import (
	"log/slog"
	"os/exec"
	"syscall"

	"github.com/kballard/go-shellquote"
	"golang.org/x/sys/unix"
)

// OSSpawner spawns the renderer with os/exec, setting Pdeathsig on Linux so
// a killed parent doesn't orphan the renderer.
type OSSpawner struct{}

func (OSSpawner) Spawn(path string, extraArg string) (int, error) {
	args := []string{}
	if extraArg != "" {
		args = append(args, extraArg)
	}
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: unix.SIGTERM}

	slog.Debug("ipc: spawning renderer", "argv", shellquote.Join(append([]string{path}, args...)...))

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	return cmd.Process.Pid, nil
}
