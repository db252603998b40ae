package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// LoadFromPath reads a sweep config (YAML or JSON), applies defaults and
// validates. Format is detected by extension (.yaml/.yml → YAML,
// .json → JSON) or by content (first non-whitespace char).
func LoadFromPath(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses a sweep config from bytes. ext is the file extension for
// the format hint; empty = detect from content.
func Load(data []byte, ext string) (*Sweep, error) {
	s, err := parse(data, ext)
	if err != nil {
		return nil, err
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep config: %w", err)
	}
	return s, nil
}

func parse(data []byte, ext string) (*Sweep, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	switch ext {
	case ".yaml":
		return parseYAML(data)
	case ".json":
		return parseJSON(data)
	}
	// Detect: JSON starts with {, everything else is YAML.
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		return parseJSON(data)
	}
	return parseYAML(data)
}

func parseYAML(data []byte) (*Sweep, error) {
	var s Sweep
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse sweep yaml: %w", err)
	}
	return &s, nil
}

func parseJSON(data []byte) (*Sweep, error) {
	var s Sweep
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse sweep json: %w", err)
	}
	return &s, nil
}
