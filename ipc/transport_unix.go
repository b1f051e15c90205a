//go:build !windows

package ipc

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// unixClient is the default Client implementation, over a unix-domain
// socket keyed by service name.
type unixClient struct {
	conn           net.Conn
	lastErr        error
	protoVersion   int
	productVersion string
}

// NewUnixClient dials the unix-domain socket for serviceName. When
// expectedPath is non-empty, the caller is asserting the renderer binary at
// that path owns the socket; this implementation does not independently
// verify that (no portable way to ask a unix socket's peer for its exe
// path), so it only affects whether NewUnixClient bothers to stat the
// binary up front; callers that want to skip the check entirely pass an
// empty expectedPath.
func NewUnixClient(serviceName, expectedPath string) Client {
	if expectedPath != "" {
		if _, err := os.Stat(expectedPath); err != nil {
			return &unixClient{lastErr: err}
		}
	}

	conn, err := net.DialTimeout("unix", socketPath(serviceName), 100*time.Millisecond)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return &unixClient{lastErr: ErrTimeout}
		}
		return &unixClient{lastErr: ErrNotConnected}
	}

	c := &unixClient{conn: conn}
	h, err := readHello(conn)
	if err != nil {
		slog.Debug("ipc: handshake failed", "service", serviceName, "err", err)
		conn.Close()
		c.conn = nil
		c.lastErr = err
		return c
	}
	c.protoVersion = h.ProtocolVersion
	c.productVersion = h.ProductVersion
	return c
}

func (c *unixClient) Connected() bool { return c.conn != nil }

func (c *unixClient) Call(req Command, out *[]byte, timeout time.Duration) bool {
	if c.conn == nil {
		c.lastErr = ErrNotConnected
		return false
	}
	deadline := time.Now().Add(timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.lastErr = err
		return false
	}

	if err := writeFrame(c.conn, encodeCommand(req)); err != nil {
		c.lastErr = toIpcErr(err)
		return false
	}

	body, err := readFrame(c.conn, maxFrameLen)
	if err != nil {
		c.lastErr = toIpcErr(err)
		return false
	}
	if out != nil {
		*out = body
	}
	c.lastErr = nil
	return true
}

func (c *unixClient) LastError() error            { return c.lastErr }
func (c *unixClient) ServerProtocolVersion() int  { return c.protoVersion }
func (c *unixClient) ServerProductVersion() string { return c.productVersion }

func toIpcErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return err
}

// TerminateServer is a synchronous, best-effort kill: it signal-kills the
// renderer process at pid (the PID returned by the
// Launcher.Spawn call that started it), then removes the service's socket
// file so new clients can no longer dial a stuck server. A pid <= 0 (no known renderer process) skips the kill step
// but still cleans up the socket.
func TerminateServer(serviceName string, pid int) bool {
	if pid > 0 {
		if p, err := process.NewProcess(int32(pid)); err == nil {
			// A Kill error here almost always means the process was already
			// gone (exited between our liveness check and this call), which
			// is the outcome we wanted anyway.
			if err := p.Kill(); err != nil {
				slog.Debug("ipc: terminate_server kill failed", "pid", pid, "err", err)
			}
		}
	}

	err := os.Remove(socketPath(serviceName))
	return err == nil || os.IsNotExist(err)
}
