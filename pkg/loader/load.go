package loader

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/aretw0/machi"
	"github.com/aretw0/machi/pkg/domain"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"
)

// Context is the context type of loaded flows: the untyped session data.
type Context = map[string]any

// Definition is a compiled flow file.
type Definition[D any] struct {
	Name       string
	Tree       []domain.Node[Context, D]
	Conditions domain.ConditionsMap[Context]
}

// Machine builds a machine for the definition, named after it unless opts
// say otherwise.
func (d *Definition[D]) Machine(opts ...machi.Option) (*machi.Machine[Context, D], error) {
	if d.Name != "" {
		opts = append([]machi.Option{machi.WithName(d.Name)}, opts...)
	}
	return machi.New(d.Tree, d.Conditions, opts...)
}

// LoadFile reads, validates and compiles a flow file.
func LoadFile[D any](path string) (*Definition[D], error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow: %w", err)
	}
	def, err := Load[D](raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Load validates raw against Schema, decodes it and compiles it.
//
// Every named condition is evaluated on each resolution, before any state is
// visited, and a failing expression aborts the call. Missing keys evaluate
// to nil, so comparisons must be guarded: "age != nil && age >= 18" rather
// than "age >= 18", which fails on a context without age.
func Load[D any](raw []byte) (*Definition[D], error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	f, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Compile[D](f)
}

// Decode parses raw into a File, rejecting unknown fields.
func Decode(raw []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("decode flow: %v", err)}
	}
	return &f, nil
}

// Compile turns a decoded file into a tree and its conditions. Every problem
// found is reported in the returned *AggregateError.
func Compile[D any](f *File) (*Definition[D], error) {
	c := &compilation[D]{conditions: domain.ConditionsMap[Context]{}, declared: f.Conditions}

	names := make([]string, 0, len(f.Conditions))
	for name := range f.Conditions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pred, err := compileExpr(f.Conditions[name])
		if err != nil {
			c.fail("conditions/"+name, err.Error())
			continue
		}
		c.conditions[name] = pred
	}

	if len(f.States) == 0 {
		c.fail("states", "flow has no states")
	}
	tree := c.states("states", f.States)

	if err := problems(c.errs); err != nil {
		return nil, err
	}
	return &Definition[D]{Name: f.Name, Tree: tree, Conditions: c.conditions}, nil
}

type compilation[D any] struct {
	conditions domain.ConditionsMap[Context]
	declared   map[string]string
	errs       []error
}

func (c *compilation[D]) fail(path, reason string) {
	c.errs = append(c.errs, &ValidationError{Path: path, Reason: reason})
}

func (c *compilation[D]) states(path string, states []State) []domain.Node[Context, D] {
	nodes := make([]domain.Node[Context, D], 0, len(states))
	for i, s := range states {
		if n := c.state(path+"/"+strconv.Itoa(i), s); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (c *compilation[D]) state(path string, s State) domain.Node[Context, D] {
	switch {
	case s.ID != "" && s.Fork != "":
		c.fail(path, "state has both id and fork")
		return nil
	case s.ID != "":
		if s.ChartGroup != "" || len(s.Requirements) > 0 || len(s.States) > 0 {
			c.fail(path, "entry "+strconv.Quote(s.ID)+" has fork fields")
		}
		e := &domain.Entry[Context, D]{ID: s.ID, IsDone: c.conds(path+"/is_done", s.IsDone)}
		if len(s.Data) > 0 {
			data, err := machi.DecodeContext[D](s.Data)
			if err != nil {
				c.fail(path+"/data", err.Error())
			}
			e.Data = data
		}
		return e
	case s.Fork != "":
		if len(s.IsDone) > 0 || len(s.Data) > 0 {
			c.fail(path, "fork "+strconv.Quote(s.Fork)+" has entry fields")
		}
		if len(s.States) == 0 {
			c.fail(path, "fork "+strconv.Quote(s.Fork)+" has no states")
		}
		return &domain.Fork[Context, D]{
			Name:         s.Fork,
			ChartGroup:   s.ChartGroup,
			Requirements: c.conds(path+"/requirements", s.Requirements),
			Children:     c.states(path+"/states", s.States),
		}
	default:
		c.fail(path, "state needs an id or a fork")
		return nil
	}
}

func (c *compilation[D]) conds(path string, specs []ConditionSpec) []domain.Condition[Context] {
	out := make([]domain.Condition[Context], 0, len(specs))
	for i, spec := range specs {
		at := path + "/" + strconv.Itoa(i)
		if spec.Ref != "" {
			if _, ok := c.declared[spec.Ref]; !ok {
				c.fail(at, "unknown condition "+strconv.Quote(spec.Ref))
				continue
			}
			out = append(out, domain.Ref[Context](spec.Ref))
			continue
		}
		pred, err := compileExpr(spec.Expr)
		if err != nil {
			c.fail(at, err.Error())
			continue
		}
		label := spec.Name
		if label == "" {
			label = spec.Expr
		}
		out = append(out, domain.Inline(pred).Named(label))
	}
	return out
}

func compileExpr(src string) (domain.Predicate[Context], error) {
	program, err := expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return predicate(src, program), nil
}

func predicate(src string, program *vm.Program) domain.Predicate[Context] {
	return func(ctx Context) (bool, error) {
		if ctx == nil {
			ctx = Context{}
		}
		out, err := expr.Run(program, ctx)
		if err != nil {
			return false, err
		}
		ok, isBool := out.(bool)
		if !isBool {
			return false, fmt.Errorf("expression %q returned %T, not bool", src, out)
		}
		return ok, nil
	}
}
