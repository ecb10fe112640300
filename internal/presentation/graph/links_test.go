package graph_test

import (
	"testing"

	"github.com/aretw0/machi/internal/presentation/graph"
	"github.com/aretw0/machi/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type edge struct {
	From, To string
	Reason   graph.Reason
}

func edges(links []graph.Link) []edge {
	out := make([]edge, 0, len(links))
	for _, l := range links {
		if l.IsGroup() {
			out = append(out, edge{From: l.Group, Reason: l.Reason})
			continue
		}
		out = append(out, edge{From: l.From.Label, To: l.To.Label, Reason: l.Reason})
	}
	return out
}

func TestLinks_Beer(t *testing.T) {
	links := graph.Links(beer(t))

	assert.Equal(t, []edge{
		{"Age?", "is of legal age?", graph.EntryDone},
		{"is of legal age?", "Name?", graph.ForkEntered},
		{"Name?", "Postcode?", graph.EntryDone},
		{"Postcode?", "is too young?", graph.EntryDone},
		{"is of legal age?", "is too young?", graph.ForkSkipped},
		{"is too young?", "Too young", graph.ForkEntered},
	}, edges(links))
}

func TestLinks_MergesSkippedVariants(t *testing.T) {
	nodes := exclusive(t)
	links := graph.Links(nodes)

	assert.Equal(t, []edge{
		{"E1", "F1", graph.EntryDone},
		{"F1", "E2", graph.ForkEntered},
		{"E2", "F2", graph.EntryDone},
		{"F2", "E7", graph.ForkEntered},
		{"F2", "E3", graph.ForkSkipped},
		{"E3", "E6", graph.EntryDone},
		{"F1", "E4", graph.ForkEntered},
		{"F1", "E6", graph.ForkSkipped},
		{"E4", "E5", graph.EntryDone},
		{"E5", "E6", graph.EntryDone},
	}, edges(links))

	var skipped graph.Link
	for _, l := range links {
		if l.Reason == graph.ForkSkipped && l.From.Label == "F1" {
			skipped = l
		}
	}
	assert.Equal(t, []string{"a", "b"}, skipped.From.Conditions)
	assert.Equal(t, idOf(t, nodes, "F1"), skipped.From.ID)
}

func TestLinks_EntryWithoutConditionsHasNoOutgoingLink(t *testing.T) {
	links := graph.Links(normalize(t,
		entry("Landing"),
		entry("Next", "x"),
	))
	assert.Empty(t, links)
}

func TestLinks_Groups(t *testing.T) {
	links := graph.Links(normalize(t,
		entry("Start", "s"),
		&domain.Fork[ctx, any]{
			Name:         "Applicant",
			ChartGroup:   "Details",
			Requirements: domain.Refs[ctx]("adult"),
			Children:     []domain.Node[ctx, any]{entry("Name?", "n")},
		},
		entry("Done"),
	))

	assert.Equal(t, []edge{
		{"Start", "Applicant", graph.EntryDone},
		{"Applicant", "Name?", graph.ForkEntered},
		{"Details", "", graph.GroupStart},
		{"Name?", "Done", graph.EntryDone},
		{"Details", "", graph.GroupEnd},
		{"Applicant", "Done", graph.ForkSkipped},
	}, edges(links))
}

func TestLinks_Deterministic(t *testing.T) {
	require.Equal(t, graph.Links(exclusive(t)), graph.Links(exclusive(t)))
}
