// Package tables loads the configuration tables (source registry, keyword
// table) that may replace the built-in ones.
package tables

import (
	"errors"
	"fmt"
	"os"

	"regwatch/models/entities"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoSources = errors.New("sources file declares no source")
	ErrNoRules   = errors.New("topics file declares no rule")
)

type sourcesFile struct {
	Sources []entities.FeedSource `yaml:"sources"`
}

// LoadSources reads a YAML registry. Positions follow declaration order.
func LoadSources(path string) ([]entities.FeedSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file: %w", err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing sources file %s: %w", path, err)
	}
	if len(f.Sources) == 0 {
		return nil, ErrNoSources
	}

	seen := make(map[string]struct{}, len(f.Sources))
	for i := range f.Sources {
		s := &f.Sources[i]
		if s.Key == "" || s.URL == "" {
			return nil, fmt.Errorf("source #%d: key and url are required", i+1)
		}
		if _, ok := seen[s.Key]; ok {
			return nil, fmt.Errorf("source %q declared twice", s.Key)
		}
		seen[s.Key] = struct{}{}
		if s.Label == "" {
			s.Label = s.Key
		}
		s.Position = i
	}
	return f.Sources, nil
}

// LoadTopics reads a YAML keyword table.
func LoadTopics(path string) (entities.TopicTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.TopicTable{}, fmt.Errorf("reading topics file: %w", err)
	}

	var table entities.TopicTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return entities.TopicTable{}, fmt.Errorf("parsing topics file %s: %w", path, err)
	}
	if len(table.Rules) == 0 {
		return entities.TopicTable{}, ErrNoRules
	}
	return table, nil
}
