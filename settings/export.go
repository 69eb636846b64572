package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrUnknownSetting    = errors.New("unknown setting")
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
	FormatTOML ExportFormat = "toml"
)

const exportVersion = "1.0"

// Export is the on-disk layout of exported preferences
type Export struct {
	Version    string                            `json:"version" yaml:"version" toml:"version"`
	ExportedAt string                            `json:"exported_at" yaml:"exported_at" toml:"exported_at"`
	Settings   map[string]map[string]interface{} `json:"settings" yaml:"settings" toml:"settings"`
}

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (ExportFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Snapshot returns the current value of every known or stored setting, grouped
func (s *Service) Snapshot() (map[string]map[string]interface{}, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]interface{})
	for _, key := range keys {
		v, err := s.Value(key.Group, key.Name)
		if err != nil {
			return nil, err
		}
		if !v.IsValid() {
			continue
		}
		if out[key.Group] == nil {
			out[key.Group] = make(map[string]interface{})
		}
		out[key.Group][key.Name] = v.Interface()
	}
	return out, nil
}

// ExportTo writes all settings to path, format chosen by extension
func (s *Service) ExportTo(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	snapshot, err := s.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to collect settings: %w", err)
	}

	export := Export{
		Version:    exportVersion,
		ExportedAt: time.Now().Format(time.RFC3339),
		Settings:   snapshot,
	}

	data, err := marshalExport(format, &export)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	s.logger.Info("Exported %d setting groups to %s", len(snapshot), path)
	return nil
}

// ImportFrom reads settings written by ExportTo and stores them. It returns
// the number of values written. Values of an unsupported type abort the import
// before anything is written.
func (s *Service) ImportFrom(path string) (int, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read import file: %w", err)
	}

	var export Export
	if err := unmarshalExport(format, data, &export); err != nil {
		return 0, fmt.Errorf("failed to parse import file: %w", err)
	}

	type pending struct {
		key   Key
		value Value
	}
	var writes []pending

	groups := make([]string, 0, len(export.Settings))
	for g := range export.Settings {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, g := range groups {
		names := make([]string, 0, len(export.Settings[g]))
		for n := range export.Settings[g] {
			names = append(names, n)
		}
		sort.Strings(names)

		for _, n := range names {
			v, err := FromInterface(export.Settings[g][n])
			if err != nil {
				return 0, fmt.Errorf("setting %s/%s: %w", g, n, err)
			}
			if !v.IsValid() {
				continue
			}
			writes = append(writes, pending{key: NewKey(g, n), value: v})
		}
	}

	for i, w := range writes {
		if err := s.SetValue(w.key.Group, w.key.Name, w.value); err != nil {
			return i, err
		}
	}

	s.logger.Info("Imported %d settings from %s", len(writes), path)
	return len(writes), nil
}

func marshalExport(format ExportFormat, export *Export) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(export, "", "  ")
	case FormatYAML:
		return yaml.Marshal(export)
	case FormatTOML:
		return toml.Marshal(export)
	}
	return nil, ErrUnsupportedFormat
}

func unmarshalExport(format ExportFormat, data []byte, export *Export) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, export)
	case FormatYAML:
		return yaml.Unmarshal(data, export)
	case FormatTOML:
		return toml.Unmarshal(data, export)
	}
	return ErrUnsupportedFormat
}
