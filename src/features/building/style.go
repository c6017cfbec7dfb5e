package building

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/interrobot/taskrunner/src/features/config"
	"github.com/interrobot/taskrunner/src/features/metrics"
)

const (
	styleSourceExt = ".scss"
	styleOutputExt = ".css"
)

// StyleDispatcher recompiles every stylesheet in the source directory when one changes.
type StyleDispatcher struct {
	cfg       config.Style
	compiler  StyleCompiler
	debouncer *Debouncer
	metrics   *metrics.BuildMetrics
	sleep     func(time.Duration)
}

// NewStyleDispatcher creates a dispatcher for cfg. m may be nil.
func NewStyleDispatcher(cfg config.Style, compiler StyleCompiler, m *metrics.BuildMetrics) *StyleDispatcher {
	return &StyleDispatcher{
		cfg:       cfg,
		compiler:  compiler,
		debouncer: NewDebouncer(cfg.Cooldown, time.Now()),
		metrics:   m,
		sleep:     time.Sleep,
	}
}

// HandleChange filters and debounces event, then rebuilds all stylesheets.
func (d *StyleDispatcher) HandleChange(ctx context.Context, event FileEvent) {
	if event.IsDir || !event.Type.IsWrite() || !strings.HasSuffix(event.Path, styleSourceExt) {
		slog.Info("File changed", "path", event.Path, "op", event.Type)
		d.metrics.ObserveIgnored(DomainStyle, metrics.ReasonFiltered)
		return
	}

	if !d.debouncer.Accept(event.Timestamp) {
		slog.Info("Change ignored during cooldown", "path", event.Path, "cooldown", d.debouncer.Cooldown())
		d.metrics.ObserveIgnored(DomainStyle, metrics.ReasonDebounced)
		return
	}
	slog.Info("Stylesheet modified, compiling", "path", event.Path)

	// The watcher fires before the editor is done writing; there is no completion signal.
	d.sleep(d.cfg.SettleDelay)

	if _, err := d.Build(ctx); err != nil {
		slog.Error("Style build failed", "path", event.Path, "error", err)
	}
}

// Build compiles every top-level source file. A file that fails to compile is logged
// and skipped; the error return is for failures that stop the whole pass.
func (d *StyleDispatcher) Build(ctx context.Context) (BuildReport, error) {
	start := time.Now()
	report := BuildReport{ID: uuid.NewString()}

	sources, err := filepath.Glob(filepath.Join(d.cfg.SourceDir, "*"+styleSourceExt))
	if err != nil {
		d.metrics.ObserveBuild(DomainStyle, metrics.ResultFailure, time.Since(start))
		return report, fmt.Errorf("failed to list stylesheets in %s: %w", d.cfg.SourceDir, err)
	}
	if err := os.MkdirAll(d.cfg.OutputDir, 0755); err != nil {
		d.metrics.ObserveBuild(DomainStyle, metrics.ResultFailure, time.Since(start))
		return report, fmt.Errorf("failed to create style output directory %s: %w", d.cfg.OutputDir, err)
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			d.metrics.ObserveBuild(DomainStyle, metrics.ResultFailure, time.Since(start))
			slog.Warn("Style build cancelled", "build", report.ID, "compiled", len(report.Compiled), "error", err)
			return report, err
		}

		name := filepath.Base(source)
		if d.cfg.IgnorePartials && strings.HasPrefix(name, "_") {
			slog.Debug("Skipping partial", "file", source)
			continue
		}

		css, err := d.compiler.CompileFile(source)
		if err != nil {
			slog.Error("Stylesheet failed to compile", "file", source, "build", report.ID)
			slog.Info("Compiler output", "file", source, "error", err)
			report.Failed = append(report.Failed, source)
			continue
		}

		outPath := filepath.Join(d.cfg.OutputDir, strings.TrimSuffix(name, styleSourceExt)+styleOutputExt)
		if err := os.WriteFile(outPath, []byte(css), 0644); err != nil {
			slog.Error("Failed to write stylesheet", "file", outPath, "error", err)
			report.Failed = append(report.Failed, source)
			continue
		}
		slog.Debug("Stylesheet written", "source", source, "output", outPath)
		report.Compiled = append(report.Compiled, outPath)
		d.metrics.ObserveOutput(DomainStyle)
	}

	d.metrics.ObserveBuild(DomainStyle, report.result(), time.Since(start))
	slog.Info("Style build finished", "build", report.ID, "compiled", len(report.Compiled), "failed", len(report.Failed), "duration", time.Since(start).String())
	return report, nil
}
