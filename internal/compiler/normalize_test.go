package compiler_test

import (
	"testing"

	"github.com/aretw0/machi/internal/compiler"
	"github.com/aretw0/machi/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	node  = domain.Node[any, any]
	entry = domain.Entry[any, any]
	fork  = domain.Fork[any, any]
)

func ids(nodes []*compiler.Node[any, any]) []string {
	var out []string
	for _, n := range compiler.Flatten(nodes) {
		out = append(out, n.InternalID)
	}
	return out
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"How old are you?":  "how_old_are_you_",
		"What's your name?": "what_s_your_name_",
		"E1":                "e1",
		"already_safe_123":  "already_safe_123",
		"path/to:file.md":   "path_to_file_md",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, compiler.Sanitize(in), in)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	tree := []node{
		&entry{ID: "E1"},
		&fork{Name: "F1", Children: []node{&entry{ID: "E2"}, &fork{Name: "F2", Children: []node{&entry{ID: "E3"}}}}},
	}

	first, err := compiler.Normalize(tree)
	require.NoError(t, err)
	second, err := compiler.Normalize(tree)
	require.NoError(t, err)

	assert.Equal(t, ids(first), ids(second))
	assert.Len(t, ids(first), 5)
}

func TestNormalize_SameLabelDifferentPositions(t *testing.T) {
	shared := &entry{ID: "E1"}
	tree := []node{
		shared,
		&fork{Name: "F1", Children: []node{shared}},
		&fork{Name: "F1", Children: []node{shared}},
		&fork{Name: "E1", Children: []node{shared}},
		shared,
	}

	nodes, err := compiler.Normalize(tree)
	require.NoError(t, err)

	all := ids(nodes)
	seen := map[string]bool{}
	for _, id := range all {
		assert.False(t, seen[id], "duplicate internal id %s", id)
		seen[id] = true
	}
	assert.Len(t, all, 8)

	// Same reference, different positions.
	assert.NotEqual(t, nodes[0].InternalID, nodes[4].InternalID)
	assert.NotEqual(t, nodes[1].Children[0].InternalID, nodes[2].Children[0].InternalID)
	// A fork never shares an id with an entry of the same label.
	assert.NotEqual(t, nodes[0].InternalID, nodes[3].InternalID)
}

func TestNormalize_VariantIDs(t *testing.T) {
	tree := []node{
		&entry{ID: "Age?"},
		&fork{Name: "Old enough to drink?", Children: []node{&entry{ID: "Beer"}}},
		&fork{Name: "Other", Children: []node{&entry{ID: "X"}}},
		&fork{Name: "Old enough to drink?", Children: []node{&entry{ID: "Juice"}}},
	}

	nodes, err := compiler.Normalize(tree)
	require.NoError(t, err)

	assert.Equal(t, "", nodes[0].VariantID)
	assert.Equal(t, "0", nodes[1].VariantID)
	assert.Equal(t, "0", nodes[2].VariantID)
	assert.Equal(t, "1", nodes[3].VariantID)
	assert.Equal(t, 1, nodes[1].Children[0].Depth)
}

func TestNormalize_IDsPrefixedBySanitizedLabel(t *testing.T) {
	nodes, err := compiler.Normalize([]node{&entry{ID: "How old are you?"}})
	require.NoError(t, err)
	assert.Regexp(t, `^how_old_are_you__[0-9a-f]{16}$`, nodes[0].InternalID)
}

func TestNormalize_Errors(t *testing.T) {
	t.Run("EmptyFork", func(t *testing.T) {
		_, err := compiler.Normalize([]node{&entry{ID: "a"}, &fork{Name: "F"}})
		assert.ErrorIs(t, err, domain.ErrEmptyFork)
	})

	t.Run("NestedEmptyFork", func(t *testing.T) {
		_, err := compiler.Normalize([]node{&fork{Name: "F", Children: []node{&fork{Name: "G"}}}})
		assert.ErrorIs(t, err, domain.ErrEmptyFork)
		assert.Contains(t, err.Error(), `"G"`)
	})

	t.Run("NilNode", func(t *testing.T) {
		var missing *entry
		_, err := compiler.Normalize([]node{missing})
		assert.ErrorIs(t, err, domain.ErrNilNode)
	})
}

func TestIndexAndConditions(t *testing.T) {
	tree := []node{
		&entry{ID: "a", IsDone: domain.Refs[any]("x", "y")},
		&fork{Name: "F", Requirements: domain.Refs[any]("z"), Children: []node{&entry{ID: "b"}}},
	}
	nodes, err := compiler.Normalize(tree)
	require.NoError(t, err)

	idx := compiler.Index(nodes)
	assert.Len(t, idx, 3)
	assert.Same(t, nodes[1].Children[0], idx[nodes[1].Children[0].InternalID])

	var keys []string
	compiler.Conditions(nodes, func(n *compiler.Node[any, any], c domain.Condition[any]) {
		keys = append(keys, n.Label()+":"+c.Key())
	})
	assert.Equal(t, []string{"a:x", "a:y", "F:z"}, keys)
}
