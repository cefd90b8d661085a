package worker

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ljmurray/squircle/internal/protocol"
)

// Process is the host-side handle to a running worker child process.
// Requests go down the child's stdin and responses come back on its stdout,
// both as framed protocol messages. At most one Process exists per engine.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	logger *slog.Logger

	writeMu sync.Mutex
	closed  atomic.Bool
	done    chan struct{}
}

// Spawn starts the worker binary and wires its stdio pipes. onResponse is
// invoked from the read loop for every response frame. onFailure is invoked
// at most once if the process or its frame stream fails while the Process
// is still open; an intentional Close never reports a failure.
func Spawn(bin string, logger *slog.Logger, onResponse func(protocol.Response), onFailure func(error)) (*Process, error) {
	cmd := exec.Command(bin)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker %s: %w", bin, err)
	}

	p := &Process{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		logger: logger,
		done:   make(chan struct{}),
	}

	logger.Info("worker started", "bin", bin, "pid", cmd.Process.Pid)
	go p.run(onResponse, onFailure)

	return p, nil
}

// Send writes one request frame to the worker. Safe for concurrent use.
// The write happens on the caller's goroutine; a frame is a few hundred
// bytes, far below the pipe buffer, so it only blocks if the worker has
// stopped draining stdin entirely. In that state the read side goes quiet
// too and pending requests conclude by timeout.
func (p *Process) Send(req protocol.Request) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if p.closed.Load() {
		return errors.New("worker process is closed")
	}
	if err := protocol.WriteMessage(p.stdin, &req); err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	return nil
}

// Close terminates the worker process and reaps it. Idempotent.
func (p *Process) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.stdin.Close()
	p.cmd.Process.Kill()
	<-p.done
	return nil
}

// run reads response frames until the stream breaks, then reaps the child.
// The frame stream cannot be resynchronized after a read error, so any
// break tears the whole process down.
func (p *Process) run(onResponse func(protocol.Response), onFailure func(error)) {
	readErr := p.readLoop(onResponse)
	p.cmd.Process.Kill()
	waitErr := p.cmd.Wait()
	close(p.done)

	// Whoever flips closed first decides whether this was an intentional
	// Close or a failure worth reporting.
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	err := readErr
	if waitErr != nil {
		err = fmt.Errorf("worker exited: %v: %w", waitErr, readErr)
	}
	p.logger.Error("worker process failed", "error", err)
	onFailure(err)
}

func (p *Process) readLoop(onResponse func(protocol.Response)) error {
	for {
		var resp protocol.Response
		if err := protocol.ReadMessage(p.stdout, &resp); err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		onResponse(resp)
	}
}

// LocateBinary resolves the worker binary path. A name containing a path
// separator is used as-is. Otherwise a sibling of the current executable is
// preferred (the usual deployment layout), falling back to PATH lookup.
func LocateBinary(name string) string {
	if strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), name)
		if _, err := os.Stat(sibling); err == nil {
			return sibling
		}
	}
	return name
}
