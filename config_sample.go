package initorder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// GenerateSampleConfig renders a config file holding the default value of
// every field of every section. sections maps a section name to a pointer
// to its config struct; the structs are not modified. format is "yaml",
// "toml" or "json".
func GenerateSampleConfig(sections map[string]any, format string) ([]byte, error) {
	format = strings.ToLower(format)
	if format != "yaml" && format != "toml" && format != "json" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormatType, format)
	}

	doc := make(map[string]map[string]any, len(sections))
	for name, cfg := range sections {
		if cfg == nil {
			return nil, fmt.Errorf("section %s: %w", name, ErrConfigNil)
		}
		sample := reflect.New(reflect.TypeOf(cfg).Elem()).Interface()
		if err := ProcessConfigDefaults(sample); err != nil {
			return nil, fmt.Errorf("section %s: %w", name, err)
		}
		doc[name] = sampleFields(sample, format)
	}

	switch format {
	case "yaml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		return data, nil
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal to JSON: %w", err)
		}
		return data, nil
	default:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to marshal to TOML: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// SaveSampleConfig writes GenerateSampleConfig's output to filePath.
func SaveSampleConfig(sections map[string]any, format, filePath string) error {
	data, err := GenerateSampleConfig(sections, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file to %s: %w", filePath, err)
	}
	return nil
}

// sampleFields maps a config struct to its keys under the given format's
// struct tag. Durations are written in their string form, which every
// feeder accepts.
func sampleFields(cfg any, format string) map[string]any {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		key := f.Name
		if tag, ok := f.Tag.Lookup(format); ok {
			name := strings.Split(tag, ",")[0]
			if name == "-" {
				continue
			}
			if name != "" {
				key = name
			}
		}

		value := v.Field(i).Interface()
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		if s, ok := value.([]string); ok && s == nil {
			value = []string{}
		}
		out[key] = value
	}
	return out
}

// SectionNames returns the keys of sections in sorted order.
func SectionNames(sections map[string]any) []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
