package machi

import (
	"github.com/aretw0/machi/internal/presentation/graph"
	"github.com/aretw0/machi/pkg/domain"
)

type (
	// Link is a transition between two states of the chart.
	Link = graph.Link
	// ChartOption configures Mermaid output.
	ChartOption = graph.Option
	// Theme holds Mermaid theme variables.
	Theme = graph.Theme
	// Direction is the chart layout.
	Direction = graph.Direction
)

const (
	Vertical   = graph.Vertical
	Horizontal = graph.Horizontal
)

var (
	DarkTheme  = graph.DarkTheme
	LightTheme = graph.LightTheme
)

// ParseTheme maps "dark" or "light" to a theme.
func ParseTheme(name string) (Theme, error) { return graph.ParseTheme(name) }

// ParseDirection maps "vertical" or "horizontal" to a direction.
func ParseDirection(name string) (Direction, error) { return graph.ParseDirection(name) }

// WithChartTheme sets the chart theme.
func WithChartTheme(t Theme) ChartOption { return graph.WithTheme(t) }

// WithChartDirection sets the chart layout.
func WithChartDirection(d Direction) ChartOption { return graph.WithDirection(d) }

// Links lists the transitions between the states of the flow.
func (m *Machine[C, D]) Links() []Link {
	return graph.Links(m.nodes)
}

// Mermaid renders the flow as a Mermaid flowchart.
func (m *Machine[C, D]) Mermaid(opts ...ChartOption) string {
	return graph.Mermaid(m.Links(), opts...)
}

// Highlight marks the history and current entry of res on the chart.
func (m *Machine[C, D]) Highlight(res *domain.Result[C, D]) ChartOption {
	return graph.WithOverlay(graph.NewOverlay(m.nodes, res))
}

// Pathways lists every route to the entries or forks labelled name,
// shortest first.
func (m *Machine[C, D]) Pathways(name string) [][]Link {
	return graph.Pathways(name, m.Links())
}

// MermaidPathways renders the routes to name in one chart.
func (m *Machine[C, D]) MermaidPathways(name string, opts ...ChartOption) string {
	return graph.MermaidPathways(m.Pathways(name), opts...)
}
