package build

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sys/execabs"

	"github.com/kipr/kipr-scratch/internal/log"
)

// Command is one child process invocation.
type Command struct {
	Stage string
	Name  string
	Args  []string
	Dir   string
	Env   []string // appended to the parent environment
}

// Runner starts child processes. The orchestrator only talks to the outside
// world through it.
type Runner interface {
	LookPath(name string) (string, error)
	// Run blocks until the command exits and returns its exit code. A non-nil
	// error means the process could not be started or waited for.
	Run(ctx context.Context, cmd Command) (int, error)
}

// ExecRunner runs commands with execabs and streams their output through a
// process logger.
//
// os/exec refuses relative PATH matches itself since Go 1.19. execabs stays
// to make that guarantee visible here, because the bundle stage prepends
// node_modules/.bin of the checkout to PATH.
type ExecRunner struct {
	Logs log.ProcessLogger
}

func NewExecRunner(logs log.ProcessLogger) *ExecRunner {
	return &ExecRunner{Logs: logs}
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return execabs.LookPath(name)
}

func (r *ExecRunner) Run(ctx context.Context, c Command) (int, error) {
	cmd := execabs.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)

	stdout := r.Logs.Writer(c.Stage, "stdout")
	stderr := r.Logs.Writer(c.Stage, "stderr")
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	defer stdout.Flush()
	defer stderr.Flush()

	err := cmd.Run()
	var exitErr *execabs.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}
