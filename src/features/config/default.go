package config

import "time"

// createDefaultConfig creates a new Config with the fixed layout of the vanillats examples.
func createDefaultConfig() *Config {
	return &Config{
		Logger: Logger{
			Level:  "info",
			Format: "text",
		},
		Style: Style{
			SourceDir:      "./examples/vanillats/scss/",
			OutputDir:      "./examples/vanillats/css/",
			Cooldown:       100 * time.Millisecond,
			SettleDelay:    50 * time.Millisecond,
			IgnorePartials: true,
			Compiler:       "sass",
		},
		Script: Script{
			SourceDir: "./examples/vanillats/ts/",
			OutputDir: "./examples/vanillats/js/",
			Cooldown:  50 * time.Millisecond,
			Project:   "./tsconfig.examples.json",
			// the vanillats examples build to <outDir>/examples/vanillats/ts/
			BuildGlob: "./examples/vanillats/js/build/examples/vanillats/ts/*.js",
			Compiler:  "tsc",
			Bundler:   "esbuild",
		},
		Servers: []Server{
			{
				Name:    "examples",
				Enabled: true,
				Host:    "127.0.0.1",
				Port:    8084,
				Root:    "./examples",
			},
			{
				Name:    "examples-nocache",
				Enabled: false,
				Host:    "127.0.0.1",
				Port:    8085,
				Root:    "./examples",
				NoCache: true,
				Metrics: true,
			},
		},
		BuildOnStart:   false,
		CheckToolchain: true,
	}
}
