//go:build !windows

package ipc

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTerminateServerKillsTheProcess is the real-effect check the bare
// "remove the socket file" version of TerminateServer never had: it spawns
// an actual long-lived child, asks TerminateServer to kill it by pid, and
// asserts the process is actually gone rather than just asserting a return
// value.
func TestTerminateServerKillsTheProcess(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid
	// Reap in the background: a killed but unreaped child lingers as a
	// zombie, which PidExists still reports as present.
	go cmd.Wait()

	running, err := process.PidExists(int32(pid))
	require.NoError(t, err)
	require.True(t, running, "precondition: child must be alive before terminate")

	serviceName := "test-terminate"
	ok := TerminateServer(serviceName, pid)
	assert.True(t, ok)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		alive, _ := process.PidExists(int32(pid))
		if !alive {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	alive, err := process.PidExists(int32(pid))
	require.NoError(t, err)
	assert.False(t, alive, "TerminateServer must actually kill the process, not just report success")
}

// TestTerminateServerWithNoPIDStillCleansUpSocket covers the "no known
// renderer process yet" case: pid <= 0 must skip the kill step but still
// remove the service socket and report success.
func TestTerminateServerWithNoPIDStillCleansUpSocket(t *testing.T) {
	path := socketPath("test-terminate-no-pid")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	assert.True(t, TerminateServer("test-terminate-no-pid", 0))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "socket file must be removed")
}
