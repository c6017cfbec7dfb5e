package building

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/interrobot/taskrunner/src/features/config"
	"github.com/interrobot/taskrunner/src/features/metrics"
)

const (
	scriptSourceExt = ".ts"
	scriptOutputExt = ".js"
	minifiedExt     = ".min.js"
)

// ScriptDispatcher runs the type-checking compiler over the project, then bundles
// every compiled file twice: plain and minified.
type ScriptDispatcher struct {
	cfg       config.Script
	runner    CommandRunner
	debouncer *Debouncer
	metrics   *metrics.BuildMetrics
}

// NewScriptDispatcher creates a dispatcher for cfg. m may be nil.
func NewScriptDispatcher(cfg config.Script, runner CommandRunner, m *metrics.BuildMetrics) *ScriptDispatcher {
	return &ScriptDispatcher{
		cfg:       cfg,
		runner:    runner,
		debouncer: NewDebouncer(cfg.Cooldown, time.Now()),
		metrics:   m,
	}
}

// HandleChange filters and debounces event, then compiles and bundles.
func (d *ScriptDispatcher) HandleChange(ctx context.Context, event FileEvent) {
	if event.IsDir || !event.Type.IsWrite() || !strings.HasSuffix(filepath.Base(event.Path), scriptSourceExt) {
		slog.Info("File changed", "path", event.Path, "op", event.Type)
		d.metrics.ObserveIgnored(DomainScript, metrics.ReasonFiltered)
		return
	}

	if !d.debouncer.Accept(event.Timestamp) {
		slog.Info("Change ignored during cooldown", "path", event.Path, "cooldown", d.debouncer.Cooldown())
		d.metrics.ObserveIgnored(DomainScript, metrics.ReasonDebounced)
		return
	}
	slog.Info("Script modified, compiling", "path", event.Path)

	if _, err := d.Build(ctx); err != nil {
		slog.Error("Script build failed", "path", event.Path, "error", err)
	}
}

// Build compiles the project and bundles all non-minified outputs of the build glob.
func (d *ScriptDispatcher) Build(ctx context.Context) (BuildReport, error) {
	start := time.Now()
	report := BuildReport{ID: uuid.NewString()}

	if _, err := d.invoke(ctx, d.cfg.Compiler, "--project", d.cfg.Project); err != nil {
		d.metrics.ObserveBuild(DomainScript, metrics.ResultFailure, time.Since(start))
		return report, err
	}

	built, err := filepath.Glob(d.cfg.BuildGlob)
	if err != nil {
		d.metrics.ObserveBuild(DomainScript, metrics.ResultFailure, time.Since(start))
		return report, fmt.Errorf("invalid build glob %q: %w", d.cfg.BuildGlob, err)
	}
	slog.Debug("Compiled scripts found", "glob", d.cfg.BuildGlob, "count", len(built))

	for _, file := range built {
		name := filepath.Base(file)
		if strings.HasSuffix(name, minifiedExt) {
			continue
		}

		stdPath := filepath.Join(d.cfg.OutputDir, name)
		minPath := filepath.Join(d.cfg.OutputDir, strings.TrimSuffix(name, scriptOutputExt)+minifiedExt)

		bundles := []struct {
			out  string
			args []string
		}{
			{stdPath, []string{file, "--outfile=" + stdPath, "--bundle"}},
			{minPath, []string{file, "--outfile=" + minPath, "--bundle", "--minify"}},
		}
		for _, bundle := range bundles {
			ok, err := d.invoke(ctx, d.cfg.Bundler, bundle.args...)
			if err != nil {
				d.metrics.ObserveBuild(DomainScript, metrics.ResultFailure, time.Since(start))
				return report, err
			}
			if !ok {
				report.Failed = append(report.Failed, bundle.out)
				continue
			}
			report.Compiled = append(report.Compiled, bundle.out)
			d.metrics.ObserveOutput(DomainScript)
		}
	}

	d.metrics.ObserveBuild(DomainScript, report.result(), time.Since(start))
	slog.Info("Script build finished", "build", report.ID, "bundled", len(report.Compiled), "failed", len(report.Failed), "duration", time.Since(start).String())
	return report, nil
}

// invoke runs a tool. A non-zero exit is logged and returns false with no error,
// so the pass carries on; only a tool that could not run stops it.
func (d *ScriptDispatcher) invoke(ctx context.Context, name string, args ...string) (bool, error) {
	err := d.runner.Run(ctx, name, args...)
	if err == nil {
		return true, nil
	}

	var exitErr *ExitStatusError
	if errors.As(err, &exitErr) {
		slog.Warn("Tool exited with non-zero status", "tool", name, "code", exitErr.Code, "args", args)
		return false, nil
	}
	return false, fmt.Errorf("failed to run %s: %w", name, err)
}
