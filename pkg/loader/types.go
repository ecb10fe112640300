package loader

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a flow definition.
type File struct {
	Name       string            `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"description=Flow name used in logs and metrics"`
	Conditions map[string]string `yaml:"conditions,omitempty" json:"conditions,omitempty" jsonschema:"description=Named expr-lang boolean expressions"`
	States     []State           `yaml:"states" json:"states" jsonschema:"required,minItems=1"`
}

// State is an entry (id set) or a fork (fork set).
type State struct {
	ID     string          `yaml:"id,omitempty" json:"id,omitempty"`
	IsDone []ConditionSpec `yaml:"is_done,omitempty" json:"is_done,omitempty"`
	Data   map[string]any  `yaml:"data,omitempty" json:"data,omitempty"`

	Fork         string          `yaml:"fork,omitempty" json:"fork,omitempty"`
	ChartGroup   string          `yaml:"chart_group,omitempty" json:"chart_group,omitempty"`
	Requirements []ConditionSpec `yaml:"requirements,omitempty" json:"requirements,omitempty"`
	States       []State         `yaml:"states,omitempty" json:"states,omitempty"`
}

// JSONSchemaExtend requires exactly one of id and fork.
func (State) JSONSchemaExtend(s *jsonschema.Schema) {
	s.OneOf = []*jsonschema.Schema{
		{Required: []string{"id"}},
		{Required: []string{"fork"}},
	}
}

// ConditionSpec is a condition item: a reference to a named condition, or an
// inline expression with an optional display name.
type ConditionSpec struct {
	Ref  string `yaml:"-" json:"-"`
	Expr string `yaml:"expr" json:"expr"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// UnmarshalYAML accepts a scalar reference or an {expr, name} mapping.
func (c *ConditionSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*c = ConditionSpec{Ref: node.Value}
		return nil
	case yaml.MappingNode:
		for i := 0; i < len(node.Content); i += 2 {
			switch key := node.Content[i].Value; key {
			case "expr", "name":
			default:
				return fmt.Errorf("line %d: field %s not found in condition", node.Content[i].Line, key)
			}
		}
		type plain ConditionSpec
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		if p.Expr == "" {
			return fmt.Errorf("line %d: condition has no expr", node.Line)
		}
		*c = ConditionSpec(p)
		return nil
	default:
		return fmt.Errorf("line %d: condition must be a name or an {expr, name} mapping", node.Line)
	}
}

// MarshalYAML writes references back as scalars.
func (c ConditionSpec) MarshalYAML() (any, error) {
	if c.Ref != "" {
		return c.Ref, nil
	}
	type plain ConditionSpec
	return plain(c), nil
}

// JSONSchema describes the two accepted forms.
func (ConditionSpec) JSONSchema() *jsonschema.Schema {
	inline := &jsonschema.Schema{
		Type:                 "object",
		Properties:           jsonschema.NewProperties(),
		Required:             []string{"expr"},
		AdditionalProperties: jsonschema.FalseSchema,
	}
	inline.Properties.Set("expr", &jsonschema.Schema{Type: "string", MinLength: ptr(uint64(1))})
	inline.Properties.Set("name", &jsonschema.Schema{Type: "string"})

	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", MinLength: ptr(uint64(1))},
			inline,
		},
	}
}

func ptr[T any](v T) *T { return &v }
