package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/survey-reachability/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// LoadCatalog читает каталог сценариев и источников.
// Пустой path - встроенный каталог.
func LoadCatalog(path string) (*domain.Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
		}
		data = b
	}

	return ParseCatalog(data)
}

// ParseCatalog декодирует и проверяет YAML каталога
func ParseCatalog(data []byte) (*domain.Catalog, error) {
	var catalog domain.Catalog

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if err := validateCatalog(&catalog); err != nil {
		return nil, err
	}

	return &catalog, nil
}

func validateCatalog(c *domain.Catalog) error {
	if !c.DefaultOrigin.IsValid() {
		return fmt.Errorf("catalog: invalid default origin %s", c.DefaultOrigin)
	}
	if c.WalkBuffer.RadiusMeters() <= 0 {
		return fmt.Errorf("catalog: walk buffer radius must be positive")
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("catalog: no scenarios defined")
	}

	names := make(map[string]struct{}, len(c.Scenarios))
	for _, s := range c.Scenarios {
		if s.Name == "" {
			return fmt.Errorf("catalog: scenario without name")
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("catalog: duplicate scenario %q", s.Name)
		}
		if s.RadiusMeters <= 0 {
			return fmt.Errorf("catalog: scenario %q has non-positive radius", s.Name)
		}
		names[s.Name] = struct{}{}
	}

	ids := make(map[string]struct{}, len(c.Sources))
	for _, s := range c.Sources {
		if s.ID == "" || s.URL == "" {
			return fmt.Errorf("catalog: source %q requires id and url", s.Label)
		}
		if _, dup := ids[s.ID]; dup {
			return fmt.Errorf("catalog: duplicate source %q", s.ID)
		}
		ids[s.ID] = struct{}{}
	}

	return nil
}
