package pbxpatch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config names the manifest to edit and the files to register in it.
type Config struct {
	Project   string   `yaml:"project"`
	MainGroup string   `yaml:"mainGroup"`
	Files     []string `yaml:"files"`
}

func DefaultConfig() Config {
	return Config{
		Project:   "DockTile.xcodeproj/project.pbxproj",
		MainGroup: "DockTile",
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("project path is required")
	}
	if len(c.Files) == 0 {
		return fmt.Errorf("no files to register")
	}
	return nil
}
