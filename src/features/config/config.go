package config

import "time"

// Config holds the application configuration.
type Config struct {
	Logger         Logger   `yaml:"logger"`
	Style          Style    `yaml:"style"`
	Script         Script   `yaml:"script"`
	Servers        []Server `yaml:"servers" validate:"dive"`
	BuildOnStart   bool     `yaml:"build_on_start"`
	CheckToolchain bool     `yaml:"check_toolchain"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json logfmt"`
}

// Style holds the configuration for the stylesheet watcher and compiler.
type Style struct {
	SourceDir      string        `yaml:"source_dir" validate:"required"`
	OutputDir      string        `yaml:"output_dir" validate:"required"`
	Cooldown       time.Duration `yaml:"cooldown" validate:"gte=0"`
	SettleDelay    time.Duration `yaml:"settle_delay" validate:"gte=0"`
	IgnorePartials bool          `yaml:"ignore_partials"`
	// Compiler is the Dart Sass executable driven over the embedded protocol.
	Compiler string `yaml:"compiler" validate:"required"`
}

// Script holds the configuration for the script watcher, compiler and bundler.
type Script struct {
	SourceDir string        `yaml:"source_dir" validate:"required"`
	OutputDir string        `yaml:"output_dir" validate:"required"`
	Cooldown  time.Duration `yaml:"cooldown" validate:"gte=0"`
	// Project is passed to the compiler as --project. Its outDir must match BuildGlob.
	Project   string `yaml:"project" validate:"required"`
	BuildGlob string `yaml:"build_glob" validate:"required"`
	Compiler  string `yaml:"compiler" validate:"required"`
	Bundler   string `yaml:"bundler" validate:"required"`
}

// Server holds the configuration for one static file server
type Server struct {
	Name    string `yaml:"name" validate:"required"`
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    uint32 `yaml:"port" validate:"required,max=65535"`
	Root    string `yaml:"root" validate:"required"`
	NoCache bool   `yaml:"no_cache"`
	Metrics bool   `yaml:"metrics"`
}
