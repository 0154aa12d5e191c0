// Package seed provides the starter data given to new accounts.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// TemplateSpec describes one starter template.
type TemplateSpec struct {
	Title      string `yaml:"title"`
	Quadrant   string `yaml:"quadrant"`
	OrderIndex int    `yaml:"order_index"`
}

type templateFile struct {
	Templates []TemplateSpec `yaml:"templates"`
}

// DefaultTemplates returns the embedded starter templates.
func DefaultTemplates() ([]TemplateSpec, error) {
	return ParseTemplates(defaultTemplates)
}

// ParseTemplates decodes a templates document. Unknown keys are rejected.
func ParseTemplates(data []byte) ([]TemplateSpec, error) {
	var f templateFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed templates: %w", err)
	}
	for i, spec := range f.Templates {
		if _, err := domain.ParseQuadrant(spec.Quadrant); err != nil {
			return nil, fmt.Errorf("seed template %d (%q): %w", i, spec.Title, err)
		}
	}
	return f.Templates, nil
}

// BuildTemplates instantiates specs as active templates owned by userID.
func BuildTemplates(userID uuid.UUID, specs []TemplateSpec) ([]*domain.TaskTemplate, error) {
	out := make([]*domain.TaskTemplate, 0, len(specs))
	for _, spec := range specs {
		q, err := domain.ParseQuadrant(spec.Quadrant)
		if err != nil {
			return nil, err
		}
		tpl, err := domain.NewTaskTemplate(userID, spec.Title, q, spec.OrderIndex)
		if err != nil {
			return nil, fmt.Errorf("seed template %q: %w", spec.Title, err)
		}
		out = append(out, tpl)
	}
	return out, nil
}
