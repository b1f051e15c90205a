package renderer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/nozomi-ime/ime-core/ipc"
)

const (
	ipcCallTimeout        = 100 * time.Millisecond
	rendezvousTimeout     = 30 * time.Second
	postSpawnFallbackWait = 10 * time.Second
	retryCooldown         = 30 * time.Second
	maxErrorStreak        = 5
	maxVersionMismatch    = 3
)

// ListenerFactory creates the rendezvous Listener for a launch attempt.
type ListenerFactory func(serviceName string) ipc.Listener

// NotifierFactory creates the rendezvous Notifier used to unblock a worker
// at supervisor destruction.
type NotifierFactory func(serviceName string) ipc.Notifier

// Supervisor owns one renderer child process's lifecycle: spawning it,
// watching for readiness, and relaying commands once it is reachable. It
// must be constructed with NewSupervisor.
type Supervisor struct {
	// own build identity, compared against what the server reports.
	ProtocolVersion int
	ProductVersion  string

	serviceName      string
	rendererPath     string
	disablePathCheck bool

	ipcFactory      ipc.Factory
	launcher        Launcher
	listenerFactory ListenerFactory
	notifierFactory NotifierFactory
	onFatal         func(FatalReason)
	metrics         *Metrics

	mu             sync.Mutex
	status         Status
	errorStreak    int
	lastLaunchTime time.Time
	pendingCommand *ipc.Command
	cancelWorker   context.CancelFunc
	lastPID        int // PID returned by the most recent successful Launcher.Spawn

	versionMismatchCount int // single-writer: caller's goroutine only
	windowVisible        bool

	launchGroup singleflight.Group
	workerWG    sync.WaitGroup
}

// NewSupervisor builds a Supervisor for one renderer child process.
// listenerFactory/notifierFactory default to ipc's unix-domain
// implementations when nil.
func NewSupervisor(cfg Config, ipcFactory ipc.Factory, launcher Launcher, listenerFactory ListenerFactory, notifierFactory NotifierFactory, onFatal func(FatalReason)) *Supervisor {
	if listenerFactory == nil {
		listenerFactory = func(name string) ipc.Listener { return ipc.NewUnixListener(name) }
	}
	if notifierFactory == nil {
		notifierFactory = func(name string) ipc.Notifier { return ipc.NewUnixNotifier(name) }
	}
	if cfg.SuppressErrorDialog {
		launcher.SetSuppressErrorDialog(true)
	}
	return &Supervisor{
		ProtocolVersion:  cfg.ProtocolVersion,
		ProductVersion:   cfg.ProductVersion,
		serviceName:      ipc.ServiceName(cfg.DesktopName),
		rendererPath:     cfg.RendererPath,
		disablePathCheck: cfg.DisablePathCheck,
		ipcFactory:       ipcFactory,
		launcher:         launcher,
		listenerFactory:  listenerFactory,
		notifierFactory:  notifierFactory,
		onFatal:          onFatal,
	}
}

// SetMetrics attaches a Metrics sink. Call before first use; not safe to
// change concurrently with Supervisor operations.
func (s *Supervisor) SetMetrics(m *Metrics) { s.metrics = m }

// Status returns the current lifecycle status.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// DisablePathCheck sets the flag that skips renderer-path verification on
// subsequently constructed IPC clients.
func (s *Supervisor) DisablePathCheck() { s.disablePathCheck = true }

// SetSuppressErrorDialog forwards to the launcher.
func (s *Supervisor) SetSuppressErrorDialog(b bool) { s.launcher.SetSuppressErrorDialog(b) }

func (s *Supervisor) effectiveRendererPath() string {
	if s.disablePathCheck {
		return ""
	}
	return s.rendererPath
}

// canConnectLocked implements the can-connect gate. Caller must hold s.mu.
func (s *Supervisor) canConnectLocked() bool {
	switch s.status {
	case Unknown, Ready:
		return true
	case Launching:
		return false
	case Timeout, Terminated:
		return s.errorStreak <= maxErrorStreak && time.Since(s.lastLaunchTime) >= retryCooldown
	case Fatal:
		return false
	default:
		return false
	}
}

func (s *Supervisor) canConnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canConnectLocked()
}

// currentPID returns the PID of the renderer process from the most recent
// successful launch, or 0 if none has ever launched.
func (s *Supervisor) currentPID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPID
}

// setPendingCommand overwrites the single pending-command slot. Non-UPDATE
// commands are ignored.
func (s *Supervisor) setPendingCommand(c ipc.Command) {
	if c.Type != ipc.UPDATE {
		return
	}
	s.mu.Lock()
	cmd := c
	s.pendingCommand = &cmd
	s.mu.Unlock()
}

// PendingCommand returns a copy of the currently buffered command, if any.
func (s *Supervisor) PendingCommand() (ipc.Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingCommand == nil {
		return ipc.Command{}, false
	}
	return *s.pendingCommand, true
}

// Activate is a no-op success when already Ready, otherwise it issues a
// NOOP exec_command.
func (s *Supervisor) Activate() bool {
	if s.Status() == Ready {
		return true
	}
	return s.ExecCommand(ipc.Command{Type: ipc.NOOP})
}

// Start transitions to Launching and spawns the one-shot launch worker,
// unless a launch is already in flight.
func (s *Supervisor) Start() {
	s.mu.Lock()
	if s.status == Launching {
		s.mu.Unlock()
		return
	}
	s.status = Launching
	s.lastLaunchTime = time.Now()
	s.metrics.observeStatus(Launching)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelWorker = cancel
	s.mu.Unlock()

	s.workerWG.Add(1)
	launchID := uuid.NewString()
	go func() {
		defer s.workerWG.Done()
		// DoChan collapses overlapping launches into a single worker body,
		// belt-and-braces alongside the status check above, which already
		// guarantees at most one in-flight launch.
		<-s.launchGroup.DoChan("launch", func() (any, error) {
			s.run(ctx, launchID)
			return nil, nil
		})
	}()
}

// run is the one-shot launch worker body. It never returns an error: every
// outcome is folded into a status transition.
func (s *Supervisor) run(ctx context.Context, launchID string) {
	log := slog.With("launch_id", launchID, "service", s.serviceName)

	pid, err := s.launcher.Spawn(s.rendererPath, s.sandboxArg())
	if err != nil {
		log.Error("renderer: spawn failed", "err", err)
		s.transitionTo(Fatal)
		s.triggerFatal(RendererFatal)
		return
	}
	s.mu.Lock()
	s.lastPID = pid
	s.mu.Unlock()

	listener := s.listenerFactory(s.serviceName)
	defer listener.Close()

	var outcome ipc.RendezvousOutcome
	if listener.IsAvailable() {
		outcome = listener.WaitEventOrProcess(rendezvousTimeout, pid)
	} else {
		time.Sleep(postSpawnFallbackWait)
		outcome = ipc.EVENT_SIGNALED
	}

	if ctx.Err() != nil {
		log.Debug("renderer: worker cancelled, discarding outcome", "outcome", outcome)
		return
	}

	switch outcome {
	case ipc.EVENT_SIGNALED:
		s.onReady(log)
	case ipc.TIMEOUT:
		log.Warn("renderer: rendezvous timed out")
		s.transitionWithErrorStreak(Timeout)
	case ipc.PROCESS_SIGNALED:
		log.Warn("renderer: child exited before signaling")
		s.transitionWithErrorStreak(Terminated)
	default:
		log.Error("renderer: unknown rendezvous outcome")
		s.transitionWithErrorStreak(Fatal)
	}
}

// sandboxArg returns the optional "--restricted" argument passed to a
// sandboxed renderer; this implementation never runs inside a job object,
// so it is always empty.
func (s *Supervisor) sandboxArg() string { return "" }

func (s *Supervisor) transitionTo(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.metrics.observeStatus(status)
}

func (s *Supervisor) transitionWithErrorStreak(status Status) {
	s.mu.Lock()
	s.status = status
	s.errorStreak++
	streak := s.errorStreak
	s.mu.Unlock()
	s.metrics.observeStatus(status)
	s.metrics.observeErrorStreak(streak)
}

// onReady performs the Launching -> Ready transition and flushes the
// pending command, all under the single mutex.
func (s *Supervisor) onReady(log *slog.Logger) {
	s.mu.Lock()
	pending := s.pendingCommand
	s.pendingCommand = nil
	factory := s.ipcFactory
	serviceName := s.serviceName
	path := s.effectiveRendererPath()

	if pending != nil && factory != nil {
		client := factory(serviceName, path)
		if client != nil {
			if !client.Call(*pending, nil, ipcCallTimeout) {
				log.Debug("renderer: flush of pending command failed", "err", client.LastError())
			}
		}
	}

	s.status = Ready
	s.errorStreak = 0
	s.mu.Unlock()

	s.metrics.observeStatus(Ready)
	s.metrics.observeErrorStreak(0)
}

func (s *Supervisor) triggerFatal(reason FatalReason) {
	if reason == RendererVersionMismatch {
		s.mu.Lock()
		s.status = Fatal
		s.mu.Unlock()
		s.metrics.observeStatus(Fatal)
	}
	s.launcher.ShowFatalDialog(reason)
	if s.onFatal != nil {
		s.onFatal(reason)
	}
}

// ExecCommand dispatches a command: sending it now if the renderer is
// reachable, or pending it for delivery on the next successful launch.
func (s *Supervisor) ExecCommand(c ipc.Command) bool {
	if !s.canConnect() {
		s.setPendingCommand(c)
		if !s.canConnect() {
			return true
		}
	}

	if s.versionMismatchCount >= maxVersionMismatch {
		return true
	}

	client := s.ipcFactory(s.serviceName, s.effectiveRendererPath())
	if client != nil && client.LastError() == ipc.ErrTimeout {
		return false
	}

	s.windowVisible = c.Visible

	if client == nil || !client.Connected() {
		if c.Type == ipc.UPDATE && (!c.Visible || !c.HasOutput) {
			return true
		}
		s.setPendingCommand(c)
		s.Start()
		return true
	}

	if s.ProtocolVersion > client.ServerProtocolVersion() {
		ipc.TerminateServer(s.serviceName, s.currentPID())
		s.versionMismatchCount++
		s.metrics.incVersionMismatch()
		s.setPendingCommand(c)
		return true
	}
	if s.ProtocolVersion < client.ServerProtocolVersion() {
		s.versionMismatchCount = maxVersionMismatch
		s.metrics.incVersionMismatch()
		s.triggerFatal(RendererVersionMismatch)
		return true
	}

	if compareProductVersions(client.ServerProductVersion(), s.ProductVersion) < 0 {
		s.setPendingCommand(c)
		client.Call(ipc.Command{Type: ipc.SHUTDOWN}, nil, ipcCallTimeout)
		s.versionMismatchCount++
		s.metrics.incVersionMismatch()
		return true
	}

	var resp []byte
	if !client.Call(c, &resp, ipcCallTimeout) {
		slog.Debug("renderer: ipc call failed", "err", client.LastError())
	}
	return true
}

// Shutdown tears down the renderer, forcibly killing the server process
// when force is set or sending a graceful SHUTDOWN command otherwise.
func (s *Supervisor) Shutdown(force bool) bool {
	if s.Status() != Ready {
		return true
	}
	if force {
		return ipc.TerminateServer(s.serviceName, s.currentPID())
	}
	client := s.ipcFactory(s.serviceName, s.effectiveRendererPath())
	if client != nil {
		client.Call(ipc.Command{Type: ipc.SHUTDOWN}, nil, ipcCallTimeout)
	}
	return true
}

// Close performs a final hide if Ready and visible, then unblocks and
// joins any running launch worker.
func (s *Supervisor) Close() error {
	if s.Status() == Ready && s.windowVisible {
		s.ExecCommand(ipc.Command{Type: ipc.UPDATE, Visible: false})
	}

	s.mu.Lock()
	cancel := s.cancelWorker
	s.mu.Unlock()

	if cancel != nil {
		_ = s.notifierFactory(s.serviceName).Notify()
		cancel()
	}
	s.workerWG.Wait()
	return nil
}
