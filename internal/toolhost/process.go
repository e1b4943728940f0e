package toolhost

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"syscall"
	"time"
)

// Process is a managed tool-host child process. It owns the subprocess from
// spawn to release: Stop must run on every exit path, and after Stop returns
// the child is guaranteed to be gone (terminate first, kill if it lingers).
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	logger *slog.Logger
	done   chan error
}

// stopGrace is how long Stop waits for the host to exit after SIGTERM
// before killing it.
const stopGrace = 3 * time.Second

// StartProcess launches the tool host and wires up its standard streams.
// The caller must Stop the returned process.
func StartProcess(logger *slog.Logger, command string, args ...string) (*Process, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start tool host %q: %w", command, err)
	}

	p := &Process{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		logger: logger,
		done:   make(chan error, 1),
	}
	go func() { p.done <- cmd.Wait() }()

	logger.Info("tool host started", "command", command, "pid", cmd.Process.Pid)
	return p, nil
}

// Stdin returns the write side of the host's standard input.
func (p *Process) Stdin() io.Writer { return p.stdin }

// Stdout returns the read side of the host's standard output.
func (p *Process) Stdout() io.Reader { return p.stdout }

// Stop releases the child process. It closes stdin so a well-behaved host
// exits on its own, escalates to SIGTERM after the grace period, and kills
// as a last resort. Safe to call even if the host already exited.
func (p *Process) Stop() error {
	p.stdin.Close()

	select {
	case err := <-p.done:
		return p.exited(err)
	case <-time.After(stopGrace):
	}

	p.logger.Warn("tool host did not exit, terminating", "pid", p.cmd.Process.Pid)
	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Signal delivery failed (already dead or not signalable); force kill.
		_ = p.cmd.Process.Kill()
	}

	select {
	case err := <-p.done:
		return p.exited(err)
	case <-time.After(stopGrace):
	}

	p.logger.Warn("tool host ignored terminate, killing", "pid", p.cmd.Process.Pid)
	_ = p.cmd.Process.Kill()
	return p.exited(<-p.done)
}

func (p *Process) exited(err error) error {
	if err != nil {
		p.logger.Debug("tool host exited", "error", err)
		return nil // expected for a terminated child
	}
	p.logger.Debug("tool host exited cleanly")
	return nil
}
