package filetree

import (
	_ "embed"
	"fmt"

	"github.com/yaguaretech/builder/models"
	"gopkg.in/yaml.v3"
)

//go:embed baseline.yaml
var defaultBaselineYAML []byte

// Baseline names accepted by LoadBaseline
const (
	BaselineDefault = "default"
	BaselineNone    = "none"
)

type baselineFile struct {
	Name  string   `yaml:"name"`
	Files []string `yaml:"files"`
}

// ParseBaseline builds a forest from a YAML document listing file paths
func ParseBaseline(data []byte) ([]models.FileNode, error) {
	var doc baselineFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse baseline: %w", err)
	}

	changes := make([]models.FileChange, 0, len(doc.Files))
	for _, p := range doc.Files {
		if _, err := models.NormalizePath(p); err != nil {
			return nil, fmt.Errorf("baseline %q: %w", doc.Name, err)
		}
		changes = append(changes, models.FileChange{Path: p, Action: models.ActionCreate})
	}
	return Project(nil, changes).Nodes, nil
}

// LoadBaseline returns the baseline tree selected by name
func LoadBaseline(name string) ([]models.FileNode, error) {
	switch name {
	case "", BaselineDefault:
		return ParseBaseline(defaultBaselineYAML)
	case BaselineNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown tree baseline %q", name)
	}
}
