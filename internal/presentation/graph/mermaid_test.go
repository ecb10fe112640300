package graph_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/machi/internal/presentation/graph"
	"github.com/aretw0/machi/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMermaid_Beer(t *testing.T) {
	nodes := beer(t)
	out := graph.Mermaid(graph.Links(nodes))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	age := idOf(t, nodes, "Age?")
	adult := idOf(t, nodes, "is of legal age?")
	name := idOf(t, nodes, "Name?")
	young := idOf(t, nodes, "is too young?")

	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], `%%{init: {"theme":"base","themeVariables":{"darkMode":true,`))
	assert.True(t, strings.HasSuffix(lines[0], "}}%%"))
	assert.Equal(t, "graph TD", lines[1])
	assert.Equal(t, fmt.Sprintf(`%s["Age?"] --> |"hasEnteredAge is true"| %s{"is of legal age?"}`, age, adult), lines[2])
	assert.Equal(t, fmt.Sprintf(`%s{"is of legal age?"} --> |"isOfLegalAge is true"| %s["Name?"]`, adult, name), lines[3])
	assert.Equal(t, fmt.Sprintf(`%s{"is of legal age?"} -.-> |"isOfLegalAge is false"| %s{"is too young?"}`, adult, young), lines[6])
}

func TestMermaid_Options(t *testing.T) {
	links := graph.Links(beer(t))

	tests := []struct {
		name     string
		opts     []graph.Option
		contains []string
	}{
		{
			name:     "horizontal",
			opts:     []graph.Option{graph.WithDirection(graph.Horizontal)},
			contains: []string{"\ngraph LR\n"},
		},
		{
			name:     "light theme",
			opts:     []graph.Option{graph.WithTheme(graph.LightTheme)},
			contains: []string{`"darkMode":false`, `"background":"#ffffff"`},
		},
		{
			name: "overlay",
			opts: []graph.Option{graph.WithOverlay(&graph.Overlay{Visited: []string{"a", "a", "b"}, Current: "b"})},
			contains: []string{
				"classDef visited",
				"class a visited;",
				"class b current;",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.Mermaid(links, tt.opts...)
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
		})
	}
}

func TestMermaid_MultipleConditionsAndGroups(t *testing.T) {
	links := graph.Links(normalize(t,
		entry("Start", "s", "t"),
		&domain.Fork[ctx, any]{
			Name:         "Applicant",
			ChartGroup:   "Your details",
			Requirements: domain.Refs[ctx]("adult"),
			Children:     []domain.Node[ctx, any]{entry("Name?", "n")},
		},
		entry("Done"),
	))
	out := graph.Mermaid(links)

	assert.Contains(t, out, `|"s and t are true"|`)
	assert.Contains(t, out, "\nsubgraph your_details [\"Your details\"]\n")
	assert.Contains(t, out, "\nend\n")
}

func TestMermaidPathways_SuffixesIDs(t *testing.T) {
	nodes := exclusive(t)
	pathways := graph.Pathways("E6", graph.Links(nodes))
	out := graph.MermaidPathways(pathways)

	e1 := idOf(t, nodes, "E1")
	for i := range pathways {
		assert.Contains(t, out, fmt.Sprintf("%s_%d[\"E1\"]", e1, i))
	}
	assert.NotContains(t, out, "classDef")
}

func TestNewOverlay(t *testing.T) {
	nodes := exclusive(t)
	res := &domain.Result[ctx, any]{
		History: []domain.Step[ctx, any]{nodes[0].Step, nodes[2].Step},
		Entry:   &nodes[2].Children[0].Step,
	}

	ov := graph.NewOverlay(nodes, res)
	// the second F1 variant is drawn as the first one
	assert.Equal(t, []string{nodes[0].InternalID, nodes[1].InternalID}, ov.Visited)
	assert.Equal(t, nodes[2].Children[0].InternalID, ov.Current)
}

func TestParse(t *testing.T) {
	theme, err := graph.ParseTheme("light")
	require.NoError(t, err)
	assert.Equal(t, graph.LightTheme, theme)
	_, err = graph.ParseTheme("neon")
	assert.Error(t, err)

	dir, err := graph.ParseDirection("horizontal")
	require.NoError(t, err)
	assert.Equal(t, graph.Horizontal, dir)
	_, err = graph.ParseDirection("diagonal")
	assert.Error(t, err)
}
