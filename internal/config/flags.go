package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagCoords = flag.String("coords", "", "Coordinate convention: native or zup")
	flagOut    = flag.String("out", "", "Output directory for exported scenes")
	flagStrict = flag.Bool("strict", false, "Fail a file on any mesh decode error")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags(args []string) {
	_ = flag.CommandLine.Parse(args)
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagCoords != "" {
		cfg.Import.Coordinates = *flagCoords
	}
	if *flagOut != "" {
		cfg.Export.OutputDir = *flagOut
	}
	if *flagStrict {
		cfg.Import.Strict = true
	}
}
