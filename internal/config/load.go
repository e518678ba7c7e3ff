package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Flags are the command line overrides. Zero values leave the loaded
// configuration unchanged.
type Flags struct {
	Config      string
	Debug       bool
	Interleaved bool
	Binary      bool
	OutputDir   string
	Textures    string
	Jobs        int
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Interleaved, "interleaved", false, "Interleave vertex attributes")
	fs.BoolVar(&f.Binary, "glb", false, "Write binary .glb files")
	fs.StringVar(&f.OutputDir, "o", "", "Output directory")
	fs.StringVar(&f.Textures, "textures", "", "Texture search paths, separated by "+string(os.PathListSeparator))
	fs.IntVar(&f.Jobs, "j", 0, "Number of concurrent compiles")
}

// Load loads configuration with priority: defaults < file < flags.
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	configPath := flags.Config
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	flags.apply(cfg)
	return cfg, nil
}

func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Interleaved {
		cfg.Compile.Interleaved = true
	}
	if f.Binary {
		cfg.Output.Binary = true
	}
	if f.OutputDir != "" {
		cfg.Output.Dir = f.OutputDir
	}
	if f.Textures != "" {
		cfg.Textures.SearchPaths = filepath.SplitList(f.Textures)
	}
	if f.Jobs > 0 {
		cfg.Compile.Jobs = f.Jobs
	}
}

// findConfigFile looks for pcgc.yaml in the working directory, then in
// ConfigDir.
func findConfigFile() string {
	candidates := []string{
		"./pcgc.yaml",
		UserFile(),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	home, err := homedir.Dir()
	if err != nil {
		home = os.TempDir()
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "pcgc")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "pcgc")
		}
		return filepath.Join(home, "AppData", "Roaming", "pcgc")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "pcgc")
		}
		return filepath.Join(home, ".config", "pcgc")
	}
}

// loadFromFile merges a YAML file into cfg. Search paths starting with ~
// are expanded.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	for i, p := range cfg.Textures.SearchPaths {
		if !strings.HasPrefix(p, "~") {
			continue
		}
		expanded, err := homedir.Expand(p)
		if err != nil {
			return fmt.Errorf("texture search path %q: %w", p, err)
		}
		cfg.Textures.SearchPaths[i] = expanded
	}
	return nil
}
