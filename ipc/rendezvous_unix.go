//go:build !windows

package ipc

import (
	"net"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

func rendezvousPath(serviceName string) string {
	return socketPath(serviceName) + ".rendezvous"
}

// UnixListener is a rendezvous Listener backed by a unix-domain socket: any
// connection (from the renderer signaling readiness, or from a Notifier) is
// treated as EVENT_SIGNALED.
type UnixListener struct {
	ln net.Listener
}

// NewUnixListener binds the rendezvous socket for serviceName. If binding
// fails, IsAvailable reports false and the caller falls back to the fixed
// post-spawn sleep.
func NewUnixListener(serviceName string) *UnixListener {
	ln, err := net.Listen("unix", rendezvousPath(serviceName))
	if err != nil {
		return &UnixListener{}
	}
	return &UnixListener{ln: ln}
}

func (l *UnixListener) IsAvailable() bool { return l.ln != nil }

func (l *UnixListener) WaitEventOrProcess(timeout time.Duration, pid int) RendezvousOutcome {
	if l.ln == nil {
		return OTHER
	}

	signaled := make(chan struct{}, 1)
	go func() {
		conn, err := l.ln.Accept()
		if err != nil {
			return
		}
		conn.Close()
		signaled <- struct{}{}
	}()

	deadline := time.After(timeout)
	poll := time.NewTicker(200 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-signaled:
			return EVENT_SIGNALED
		case <-deadline:
			return TIMEOUT
		case <-poll.C:
			if pid > 0 && !processRunning(pid) {
				return PROCESS_SIGNALED
			}
		}
	}
}

func (l *UnixListener) Close() error {
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}

func processRunning(pid int) bool {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := p.IsRunning()
	return err == nil && running
}

// UnixNotifier signals a UnixListener's rendezvous socket, used at
// supervisor destruction to unblock a worker's WaitEventOrProcess.
type UnixNotifier struct {
	serviceName string
}

func NewUnixNotifier(serviceName string) *UnixNotifier {
	return &UnixNotifier{serviceName: serviceName}
}

func (n *UnixNotifier) Notify() error {
	conn, err := net.DialTimeout("unix", rendezvousPath(n.serviceName), 100*time.Millisecond)
	if err != nil {
		return err
	}
	return conn.Close()
}
