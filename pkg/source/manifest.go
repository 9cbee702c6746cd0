// Package source loads the installed apps and models of a Django project,
// either from a saved manifest file or by introspecting the project.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/autoapi/pkg/model"
)

const contribPrefix = "django.contrib"

// Manifest is the raw app registry snapshot of a project.
type Manifest struct {
	Apps []RawApp `json:"apps" yaml:"apps"`
}

// RawApp is one installed app as reported by the registry.
type RawApp struct {
	Label  string     `json:"label" yaml:"label"`
	Name   string     `json:"name" yaml:"name"`
	Path   string     `json:"path" yaml:"path"`
	Models []RawModel `json:"models" yaml:"models"`
}

// RawModel is one model class and all of its fields.
type RawModel struct {
	Name   string     `json:"name" yaml:"name"`
	Fields []RawField `json:"fields" yaml:"fields"`
}

// RawField is one entry of a model's field list, including reverse relations.
type RawField struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	AutoCreated bool   `json:"auto_created,omitempty" yaml:"auto_created,omitempty"`
	Concrete    bool   `json:"concrete" yaml:"concrete"`
}

// reverse reports whether the field is an auto-created reverse relation.
func (f RawField) reverse() bool {
	return f.AutoCreated && !f.Concrete
}

// LoadManifest reads a manifest from a YAML or JSON file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	// JSON documents are valid YAML, so one decoder serves both formats.
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	for i, app := range m.Apps {
		if app.Label == "" {
			return nil, fmt.Errorf("manifest %s: app #%d has no label", path, i+1)
		}
	}
	return &m, nil
}

// WriteManifest saves m as YAML, creating parent directories.
func WriteManifest(path string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

// Descriptors converts the manifest into app descriptors. Apps from
// django.contrib are dropped unless includeContrib is set, and reverse
// relations are removed from every model's fields.
func (m *Manifest) Descriptors(includeContrib bool) []model.AppDescriptor {
	apps := make([]model.AppDescriptor, 0, len(m.Apps))
	for _, raw := range m.Apps {
		if !includeContrib && strings.HasPrefix(raw.Name, contribPrefix) {
			continue
		}

		app := model.AppDescriptor{
			Label:  raw.Label,
			Name:   raw.Name,
			Path:   raw.Path,
			Models: make([]model.ModelDescriptor, 0, len(raw.Models)),
		}
		for _, rm := range raw.Models {
			md := model.ModelDescriptor{Name: rm.Name}
			for _, f := range rm.Fields {
				if f.reverse() {
					continue
				}
				md.Fields = append(md.Fields, model.FieldDescriptor{Name: f.Name, Type: f.Type})
			}
			app.Models = append(app.Models, md)
		}
		apps = append(apps, app)
	}
	return apps
}

// ModelCount returns the number of models across all apps.
func (m *Manifest) ModelCount() int {
	n := 0
	for _, app := range m.Apps {
		n += len(app.Models)
	}
	return n
}
