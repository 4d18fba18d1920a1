// Package launch starts builds as child processes and tracks them.
package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/albertocavalcante/go-blendlaunch/internal/logging"
	"github.com/albertocavalcante/go-blendlaunch/library"
)

// ErrNoBuild is returned when Start is called without a build.
var ErrNoBuild = errors.New("no build to launch")

// Launcher starts builds.
type Launcher struct {
	// Args are extra arguments passed before the file, using shell quoting
	// rules. $VAR references are expanded from Env.
	Args string
	// Env is the child environment. Nil inherits the current environment.
	Env []string
	// Stdout and Stderr receive the child's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
	// Observer, if set, tracks every started process.
	Observer *Observer
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
	// GOOS selects the executable layout. Empty means the running system.
	GOOS string
}

// Argv returns the command line Start would run.
func (l *Launcher) Argv(build *library.BuildRecord, file string) ([]string, error) {
	if build == nil {
		return nil, ErrNoBuild
	}
	goos := l.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	extra, err := shell.Fields(l.Args, l.lookupEnv)
	if err != nil {
		return nil, fmt.Errorf("parse launch args %q: %w", l.Args, err)
	}

	argv := make([]string, 0, len(extra)+2)
	argv = append(argv, build.Executable(goos))
	argv = append(argv, extra...)
	if file != "" {
		argv = append(argv, file)
	}
	return argv, nil
}

func (l *Launcher) lookupEnv(name string) string {
	if l.Env == nil {
		return os.Getenv(name)
	}
	prefix := name + "="
	// Later entries win, as in exec.Cmd.
	for i := len(l.Env) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix(l.Env[i], prefix); ok {
			return v
		}
	}
	return ""
}

// Start runs build, opening file if it is not empty.
//
// ctx only guards the start: a cancelled ctx prevents the launch, but a
// started build keeps running after ctx is done.
func (l *Launcher) Start(ctx context.Context, build *library.BuildRecord, file string) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	argv, err := l.Argv(build, file)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = build.Path
	cmd.Env = l.Env
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", build.Version, err)
	}

	logger := logging.OrDiscard(l.Logger)
	logger.Info("launched build", "version", build.Version.String(), "pid", cmd.Process.Pid, "file", file)

	p := &Process{
		Build: build,
		File:  file,
		cmd:   cmd,
		done:  make(chan struct{}),
	}
	go func() {
		p.err = cmd.Wait()
		logger.Debug("build exited", "pid", cmd.Process.Pid, "error", p.err)
		close(p.done)
	}()

	if l.Observer != nil {
		l.Observer.Track(p)
	}
	return p, nil
}

// Process is a started build.
type Process struct {
	Build *library.BuildRecord
	File  string

	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Args returns the command line the process was started with.
func (p *Process) Args() []string {
	return p.cmd.Args
}

// Done is closed when the process exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits and returns its exit error.
func (p *Process) Wait() error {
	<-p.done
	return p.err
}

// Kill terminates the process.
func (p *Process) Kill() error {
	return p.cmd.Process.Kill()
}
