package machi

import (
	"context"
	"fmt"

	"github.com/aretw0/machi/pkg/domain"
	"github.com/aretw0/machi/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// DecodeFunc turns a stored, untyped context into the context of a flow.
type DecodeFunc[C any] func(data map[string]any) (C, error)

// Resolver adapts the machine to ports.Resolver for session managers and
// transports. A nil decode uses DecodeContext.
func (m *Machine[C, D]) Resolver(decode DecodeFunc[C]) ports.Resolver {
	if decode == nil {
		decode = DecodeContext[C]
	}
	return ports.ResolverFunc(func(ctx context.Context, data map[string]any, current string) (*domain.Outcome, error) {
		c, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode context: %w", err)
		}
		res, err := m.ExecuteContext(ctx, c, current)
		if err != nil {
			return nil, err
		}
		return res.Outcome(), nil
	})
}

// DecodeContext passes data through when C is map[string]any and otherwise
// decodes it into C with mapstructure, matching fields by their json tag and
// converting weakly typed input such as float64 into int.
func DecodeContext[C any](data map[string]any) (C, error) {
	var c C
	if v, ok := any(data).(C); ok {
		return v, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return c, err
	}
	if err := dec.Decode(data); err != nil {
		return c, err
	}
	return c, nil
}
