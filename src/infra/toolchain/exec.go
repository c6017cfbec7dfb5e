package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/interrobot/taskrunner/src/features/building"
)

// Exec runs external tools as subprocesses with inherited output.
type Exec struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec creates a runner that writes tool output to the process stdout and stderr
func NewExec() building.CommandRunner {
	return &Exec{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run runs name with args and waits for it. There is no timeout.
func (e *Exec) Run(ctx context.Context, name string, args ...string) error {
	slog.Debug("Executing command", "command", name, "args", args)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &building.ExitStatusError{Tool: name, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}
