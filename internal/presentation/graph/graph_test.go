package graph_test

import (
	"testing"

	"github.com/aretw0/machi/internal/compiler"
	"github.com/aretw0/machi/pkg/domain"
	"github.com/stretchr/testify/require"
)

type ctx struct{}

func entry(id string, isDone ...string) domain.Node[ctx, any] {
	return domain.NewEntry[ctx, any](id, isDone...)
}

func fork(name string, reqs []string, children ...domain.Node[ctx, any]) domain.Node[ctx, any] {
	return domain.NewFork[ctx, any](name, reqs, children...)
}

func normalize(t *testing.T, tree ...domain.Node[ctx, any]) []*compiler.Node[ctx, any] {
	t.Helper()
	nodes, err := compiler.Normalize(tree)
	require.NoError(t, err)
	return nodes
}

// idOf returns the internal id of the first node labelled label.
func idOf(t *testing.T, nodes []*compiler.Node[ctx, any], label string) string {
	t.Helper()
	for _, n := range compiler.Flatten(nodes) {
		if n.Label() == label {
			return n.InternalID
		}
	}
	t.Fatalf("no node labelled %q", label)
	return ""
}

func beer(t *testing.T) []*compiler.Node[ctx, any] {
	return normalize(t,
		entry("Age?", "hasEnteredAge"),
		fork("is of legal age?", []string{"isOfLegalAge"},
			entry("Name?", "hasEnteredName"),
			entry("Postcode?", "hasEnteredPostcode"),
		),
		fork("is too young?", []string{"isTooYoung"},
			entry("Too young", "acknowledged"),
		),
	)
}

// exclusive has two variants of F1 and a nested fork.
func exclusive(t *testing.T) []*compiler.Node[ctx, any] {
	return normalize(t,
		entry("E1", "d"),
		fork("F1", []string{"a"},
			entry("E2", "d"),
			fork("F2", []string{"c"},
				entry("E7"),
			),
			entry("E3", "d"),
		),
		fork("F1", []string{"b"},
			entry("E4", "d"),
			entry("E5", "d"),
		),
		entry("E6", "d"),
	)
}
