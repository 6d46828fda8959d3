package appearance

import (
	"errors"
	"fmt"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

type manifestDocument struct {
	Name      string                     `yaml:"name"`
	Version   string                     `yaml:"version"`
	Tokens    map[string]string          `yaml:"tokens"`
	Templates map[string]string          `yaml:"templates"`
	Assets    assetsDocument             `yaml:"assets"`
	Variants  map[string]variantDocument `yaml:"variants"`
}

type assetsDocument struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type variantDocument struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    assetsDocument    `yaml:"assets"`
}

// LoadManifest parses a theme manifest written in YAML or JSON.
func LoadManifest(data []byte) (*theme.Manifest, error) {
	var doc manifestDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("appearance: parse manifest: %w", err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, errors.New("appearance: manifest name is required")
	}

	manifest := &theme.Manifest{
		Name:      doc.Name,
		Version:   doc.Version,
		Tokens:    doc.Tokens,
		Templates: doc.Templates,
		Assets:    theme.Assets{Prefix: doc.Assets.Prefix, Files: doc.Assets.Files},
	}
	if len(doc.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(doc.Variants))
		for name, variant := range doc.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    variant.Tokens,
				Templates: variant.Templates,
				Assets:    theme.Assets{Prefix: variant.Assets.Prefix, Files: variant.Assets.Files},
			}
		}
	}
	return manifest, nil
}

// LoadManifestFile reads a manifest from disk.
func LoadManifestFile(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("appearance: read manifest %s: %w", path, err)
	}
	return LoadManifest(data)
}
