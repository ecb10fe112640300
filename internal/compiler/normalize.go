// Package compiler turns an authored flow tree into the normalized tree the
// runtime and the chart generators walk.
package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/machi/pkg/domain"
	"github.com/cespare/xxhash/v2"
)

// Node is a normalized tree node.
type Node[C, D any] struct {
	domain.Step[C, D]

	// Path is the structural key the internal id is derived from.
	Path string
	// Depth is 0 for top level nodes.
	Depth int
	// Children holds the normalized children of a fork.
	Children []*Node[C, D]
}

// Normalize assigns every node of the tree an internal id derived from its
// label and its position: the same position always yields the same id and
// no two positions share one, whatever the labels. The input is not
// modified.
func Normalize[C, D any](tree []domain.Node[C, D]) ([]*Node[C, D], error) {
	return normalizeLevel(tree, "", 0)
}

func normalizeLevel[C, D any](nodes []domain.Node[C, D], parentPath string, depth int) ([]*Node[C, D], error) {
	seen := make(map[string]int, len(nodes))
	out := make([]*Node[C, D], 0, len(nodes))

	for i, n := range nodes {
		if isNil[C, D](n) {
			return nil, fmt.Errorf("position %d under %q: %w", i, displayPath(parentPath), domain.ErrNilNode)
		}

		kind := n.Kind()
		label := n.Label()
		slot := string(kind) + "\x00" + label
		ordinal := seen[slot]
		seen[slot]++

		path := Segment(parentPath, kind, label, ordinal)
		node := &Node[C, D]{
			Step: domain.Step[C, D]{
				Node:       n,
				InternalID: InternalID(label, path),
			},
			Path:  path,
			Depth: depth,
		}

		if fork, ok := n.(*domain.Fork[C, D]); ok {
			if len(fork.Children) == 0 {
				return nil, fmt.Errorf("fork %q at %q: %w", fork.Name, displayPath(path), domain.ErrEmptyFork)
			}
			node.VariantID = strconv.Itoa(ordinal)
			children, err := normalizeLevel(fork.Children, path, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}

		out = append(out, node)
	}

	return out, nil
}

func isNil[C, D any](n domain.Node[C, D]) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *domain.Entry[C, D]:
		return v == nil
	case *domain.Fork[C, D]:
		return v == nil
	}
	return false
}

// Segment appends one level to a structural path. The label is quoted so
// that separators inside labels cannot produce ambiguous paths.
func Segment(parent string, kind domain.NodeKind, label string, ordinal int) string {
	marker := "e"
	if kind == domain.KindFork {
		marker = "f"
	}
	return parent + "/" + marker + ":" + strconv.Quote(label) + "#" + strconv.Itoa(ordinal)
}

// InternalID derives the id of a node from its label and structural path.
func InternalID(label, path string) string {
	return fmt.Sprintf("%s_%016x", Sanitize(label), xxhash.Sum64String(path))
}

// Sanitize replaces every character outside [a-zA-Z0-9] with an underscore
// and lowercases the rest, producing a string safe for chart ids.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func displayPath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
