package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the flow file schema.
const SchemaID = "https://github.com/aretw0/machi/schemas/flow.json"

// Schema returns the JSON Schema (draft 2020-12) of flow files.
func Schema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&File{})
	s.ID = SchemaID
	s.Title = "machi flow"
	s.Description = "Declarative flow definition resolved by machi"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

var compiled = sync.OnceValues(func() (*sjsonschema.Schema, error) {
	raw, err := Schema()
	if err != nil {
		return nil, err
	}
	doc, err := sjsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource(SchemaID, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(SchemaID)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return sch, nil
})

// Validate checks a YAML or JSON document against Schema. Structural problems
// are returned as an *AggregateError.
func Validate(raw []byte) error {
	sch, err := compiled()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("parse: %v", err)}
	}
	// The validator only understands JSON values.
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("convert to json: %v", err)}
	}
	value, err := sjsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("convert to json: %v", err)}
	}

	err = sch.Validate(value)
	if err == nil {
		return nil
	}
	var ve *sjsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Reason: err.Error()}
	}
	p := message.NewPrinter(language.English)
	var errs []error
	for _, cause := range leaves(ve) {
		errs = append(errs, &ValidationError{
			Path:   strings.Join(cause.InstanceLocation, "/"),
			Reason: cause.ErrorKind.LocalizedString(p),
		})
	}
	return problems(errs)
}

func leaves(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, leaves(cause)...)
	}
	return flat
}
