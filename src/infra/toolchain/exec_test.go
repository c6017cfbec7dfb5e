package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/interrobot/taskrunner/src/features/building"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExec_RunSuccess(t *testing.T) {
	requireShell(t)
	var stdout bytes.Buffer
	runner := &Exec{Stdout: &stdout, Stderr: &stdout}

	if err := runner.Run(context.Background(), "sh", "-c", "echo bundled"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "bundled" {
		t.Errorf("expected tool output to be forwarded, got %q", stdout.String())
	}
}

func TestExec_NonZeroExit(t *testing.T) {
	requireShell(t)
	runner := &Exec{}

	err := runner.Run(context.Background(), "sh", "-c", "exit 3")
	var exitErr *building.ExitStatusError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitStatusError, got %v", err)
	}
	if exitErr.Code != 3 || exitErr.Tool != "sh" {
		t.Errorf("unexpected exit error %+v", exitErr)
	}
}

func TestExec_MissingTool(t *testing.T) {
	runner := &Exec{}

	err := runner.Run(context.Background(), "taskrunner-no-such-tool")
	if err == nil {
		t.Fatal("expected an error")
	}
	var exitErr *building.ExitStatusError
	if errors.As(err, &exitErr) {
		t.Fatalf("expected a start failure, not an exit status: %v", err)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("expected exec.ErrNotFound in chain, got %v", err)
	}
}

func TestRequire(t *testing.T) {
	requireShell(t)

	if err := Require(Requirement{Name: "sh", Hint: "part of the base system"}); err != nil {
		t.Fatalf("expected sh to be found, got %v", err)
	}

	err := Require(
		Requirement{Name: "sh"},
		Requirement{Name: "taskrunner-no-such-tool-a", Hint: "npm install -g a"},
		Requirement{Name: "taskrunner-no-such-tool-b", Hint: "npm install -g b"},
	)
	if err == nil {
		t.Fatal("expected an error for missing tools")
	}
	for _, name := range []string{"taskrunner-no-such-tool-a", "taskrunner-no-such-tool-b", "npm install -g a"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("expected error to mention %q, got %v", name, err)
		}
	}
	if strings.Contains(err.Error(), "sh not found") {
		t.Errorf("did not expect sh in error: %v", err)
	}
}
