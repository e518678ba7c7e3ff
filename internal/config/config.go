// Package config loads pcgc settings from defaults, a YAML file and flags.
package config

// Config holds all settings.
type Config struct {
	Compile  CompileConfig  `yaml:"compile"`
	Textures TexturesConfig `yaml:"textures"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CompileConfig holds compiler options.
type CompileConfig struct {
	Interleaved bool   `yaml:"interleaved"` // Vertex-major attribute layout
	Generator   string `yaml:"generator"`   // asset.generator value
	Jobs        int    `yaml:"jobs"`        // Concurrent compiles, 0 = one per CPU
}

// TexturesConfig holds texture lookup settings.
type TexturesConfig struct {
	SearchPaths []string `yaml:"search_paths"`
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // Empty writes next to the input
	Binary bool   `yaml:"binary"` // .glb instead of .gltf
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Compile: CompileConfig{
			Generator: "pcgc",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
