// Package config handles importer configuration loading and management.
package config

// Config holds all importer settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig holds decode and reconstruction settings.
type ImportConfig struct {
	// Coordinates selects the axis convention: "native" (Y-up) or
	// "zup" (swap to Z-up).
	Coordinates string `yaml:"coordinates"`

	// NormalizeWeights rescales vertex skin weights to sum to one.
	NormalizeWeights bool `yaml:"normalize_weights"`

	// Strict fails a file on per-mesh data errors instead of skipping
	// the offending mesh.
	Strict bool `yaml:"strict"`
}

// ExportConfig holds scene output settings.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`

	// FlipUV mirrors the V coordinate for hosts with top-left UV
	// origins (glTF, Blender).
	FlipUV bool `yaml:"flip_uv"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Coordinates:      "zup",
			NormalizeWeights: true,
			Strict:           false,
		},
		Export: ExportConfig{
			OutputDir: ".",
			FlipUV:    true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
