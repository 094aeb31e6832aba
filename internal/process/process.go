package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// outputTail is how much suppressed output is kept for error reports.
const outputTail = 4 * 1024

// Command describes a single external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Quiet suppresses the child's output instead of streaming it.
	Quiet bool
	// Secrets are masked whenever the command line is displayed.
	Secrets []string
}

// Validate rejects commands that cannot be passed to the OS verbatim.
func (c Command) Validate() error {
	if c.Name == "" {
		return errors.New("empty command name")
	}
	for _, arg := range append([]string{c.Name}, c.Args...) {
		if strings.ContainsRune(arg, 0) {
			return fmt.Errorf("argument of %s contains a NUL byte", c.Name)
		}
	}
	return nil
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ProcessError reports an external command that could not be started or
// exited with a non-zero status.
type ProcessError struct {
	Command  string
	Dir      string
	ExitCode int
	Output   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s (in %s) exited with status %d", e.Command, e.Dir, e.ExitCode)
	if e.ExitCode < 0 && e.Err != nil {
		msg = fmt.Sprintf("%s (in %s): %v", e.Command, e.Dir, e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Stdout and Stderr can be set for testing; defaults to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger
}

// Run starts cmd and waits for it to exit. The context is only consulted
// before the child starts; a running child is never killed.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return &ProcessError{Command: cmd.String(), Dir: cmd.Dir, ExitCode: -1, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &ProcessError{Command: cmd.String(), Dir: cmd.Dir, ExitCode: -1, Err: err}
	}

	bin, err := exec.LookPath(cmd.Name)
	if err != nil {
		return &ProcessError{Command: cmd.String(), Dir: cmd.Dir, ExitCode: -1, Err: err}
	}

	if r.Logger != nil {
		r.Logger.Debug("exec", "cmd", cmd.String(), "dir", cmd.Dir, "quiet", cmd.Quiet)
	}

	c := exec.Command(bin, cmd.Args...)
	c.Dir = cmd.Dir

	tail := &tailBuffer{max: outputTail}
	if cmd.Quiet {
		c.Stdout = tail
		c.Stderr = tail
	} else {
		stdout := r.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		stderr := r.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		c.Stdout = stdout
		c.Stderr = io.MultiWriter(stderr, tail)
	}

	err = c.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ProcessError{
			Command:  cmd.String(),
			Dir:      cmd.Dir,
			ExitCode: exitErr.ExitCode(),
			Output:   tail.String(),
			Err:      err,
		}
	}
	return &ProcessError{Command: cmd.String(), Dir: cmd.Dir, ExitCode: -1, Err: err}
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return n, nil
}

func (t *tailBuffer) String() string { return t.buf.String() }
