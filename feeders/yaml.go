package feeders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YamlFeeder reads config sections from a YAML file whose top-level keys are
// section names.
type YamlFeeder struct {
	Path string
}

// NewYamlFeeder creates a new YamlFeeder that reads from the specified YAML file
func NewYamlFeeder(filePath string) YamlFeeder {
	return YamlFeeder{Path: filePath}
}

// FeedKey decodes the section stored under key into target. A missing key is
// not an error.
func (y YamlFeeder) FeedKey(key string, target any) error {
	data, err := os.ReadFile(y.Path)
	if err != nil {
		return wrapFileError("yaml", y.Path, err)
	}

	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("failed to parse YAML %s: %w", y.Path, err)
	}

	node, ok := sections[key]
	if !ok {
		return nil
	}
	if err := node.Decode(target); err != nil {
		return fmt.Errorf("failed to decode YAML section %q: %w", key, err)
	}
	return nil
}
