// Package building turns file change events into compiler and bundler runs.
package building

import (
	"context"
	"fmt"
	"time"

	"github.com/interrobot/taskrunner/src/features/metrics"
)

// Domains label the two watched source trees in logs and metrics.
const (
	DomainStyle  = "style"
	DomainScript = "script"
)

// FileEventType represents the type of file system event
type FileEventType string

const (
	FileCreated  FileEventType = "created"
	FileModified FileEventType = "modified"
	FileRemoved  FileEventType = "removed"
	FileRenamed  FileEventType = "renamed"
)

// IsWrite reports whether the event leaves new content at its path.
// Editors that save by rename produce a create instead of a write.
func (t FileEventType) IsWrite() bool {
	return t == FileCreated || t == FileModified
}

// FileEvent represents a file system event
type FileEvent struct {
	// Path uses forward slashes regardless of platform.
	Path      string
	IsDir     bool
	Type      FileEventType
	Timestamp time.Time
}

// Handler reacts to the events of one watch session. Calls for a session are serialised.
type Handler interface {
	HandleChange(ctx context.Context, event FileEvent)
}

// Builder runs a full rebuild of one domain.
type Builder interface {
	Build(ctx context.Context) (BuildReport, error)
}

// StyleCompiler compiles one stylesheet source to compressed CSS.
type StyleCompiler interface {
	CompileFile(path string) (string, error)
}

// CommandRunner runs an external tool to completion. A tool that started and exited
// non-zero is reported as *ExitStatusError; any other error means it never ran.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExitStatusError reports a tool that ran but exited with a non-zero status.
type ExitStatusError struct {
	Tool string
	Code int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.Code)
}

// BuildReport lists the outputs of one build pass.
type BuildReport struct {
	ID       string
	Compiled []string
	Failed   []string
}

func (r BuildReport) result() string {
	switch {
	case len(r.Failed) == 0:
		return metrics.ResultSuccess
	case len(r.Compiled) == 0:
		return metrics.ResultFailure
	default:
		return metrics.ResultPartial
	}
}
