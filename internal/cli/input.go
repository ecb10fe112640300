package cli

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadContext reads a YAML or JSON context file (when path is not empty) and
// applies the key=value overrides in sets on top of it.
func LoadContext(path string, sets []string) (map[string]any, error) {
	data := map[string]any{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read context: %w", err)
		}
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parse context %s: %w", path, err)
		}
		if data == nil {
			data = map[string]any{}
		}
	}
	for _, set := range sets {
		key, value, err := ParseSet(set)
		if err != nil {
			return nil, err
		}
		data[key] = value
	}
	return data, nil
}

// ParseSet splits key=value. The value is read as a YAML scalar, so numbers
// and booleans keep their type; an empty value is nil.
func ParseSet(s string) (string, any, error) {
	key, raw, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("invalid --set %q (want key=value)", s)
	}
	if raw == "" {
		return key, nil, nil
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		// not YAML, keep the text
		return key, raw, nil
	}
	return key, value, nil
}
