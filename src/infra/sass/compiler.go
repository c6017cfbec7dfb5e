package sass

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/bep/godartsass/v2"
	"github.com/interrobot/taskrunner/src/features/building"
)

// Compiler compiles SCSS through a long-running Dart Sass process in embedded mode.
type Compiler struct {
	transpiler *godartsass.Transpiler
}

var _ building.StyleCompiler = (*Compiler)(nil)

// NewCompiler starts the Dart Sass executable found on PATH under binary.
func NewCompiler(binary string) (*Compiler, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%s not found. Please install Dart Sass (npm install -g sass): %w", binary, err)
	}

	transpiler, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: path,
		LogEventHandler: func(event godartsass.LogEvent) {
			slog.Warn("Sass", "message", event.Message)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", path, err)
	}

	slog.Debug("Sass compiler started", "binary", path)
	return &Compiler{transpiler: transpiler}, nil
}

// CompileFile compiles path with compressed output. Imports resolve relative to its directory.
func (c *Compiler) CompileFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	source, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	result, err := c.transpiler.Execute(godartsass.Args{
		Source:       string(source),
		URL:          (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
		OutputStyle:  godartsass.OutputStyleCompressed,
		SourceSyntax: godartsass.SourceSyntaxSCSS,
		IncludePaths: []string{filepath.Dir(abs)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to compile %s: %w", path, err)
	}
	return result.CSS, nil
}

// Close stops the Dart Sass process.
func (c *Compiler) Close() error {
	return c.transpiler.Close()
}
