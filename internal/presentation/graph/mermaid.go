package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/machi/internal/compiler"
	"github.com/aretw0/machi/pkg/domain"
)

// Theme holds the Mermaid theme variables.
type Theme struct {
	DarkMode            bool   `json:"darkMode"`
	Background          string `json:"background"`
	PrimaryColor        string `json:"primaryColor"`
	SecondaryColor      string `json:"secondaryColor"`
	TertiaryColor       string `json:"tertiaryColor"`
	NoteBkgColor        string `json:"noteBkgColor"`
	MainBkg             string `json:"mainBkg"`
	LineColor           string `json:"lineColor"`
	EdgeLabelBackground string `json:"edgeLabelBackground"`
}

var (
	DarkTheme = Theme{
		DarkMode:            true,
		Background:          "#000000",
		PrimaryColor:        "#444444",
		SecondaryColor:      "#888888",
		TertiaryColor:       "#111111",
		NoteBkgColor:        "transparent",
		MainBkg:             "#222222",
		LineColor:           "#666666",
		EdgeLabelBackground: "transparent",
	}
	LightTheme = Theme{
		Background:          "#ffffff",
		PrimaryColor:        "#aaaaaa",
		SecondaryColor:      "#999999",
		TertiaryColor:       "#f8f8f8",
		NoteBkgColor:        "transparent",
		MainBkg:             "#eeeeee",
		LineColor:           "#555555",
		EdgeLabelBackground: "transparent",
	}
)

// ParseTheme accepts "dark" and "light".
func ParseTheme(name string) (Theme, error) {
	switch name {
	case "", "dark":
		return DarkTheme, nil
	case "light":
		return LightTheme, nil
	}
	return Theme{}, fmt.Errorf("unknown theme %q (want dark or light)", name)
}

// Direction is the layout direction of the chart.
type Direction string

const (
	Vertical   Direction = "vertical"
	Horizontal Direction = "horizontal"
)

// ParseDirection accepts "vertical" and "horizontal".
func ParseDirection(name string) (Direction, error) {
	switch Direction(name) {
	case "", Vertical:
		return Vertical, nil
	case Horizontal:
		return Horizontal, nil
	}
	return "", fmt.Errorf("unknown direction %q (want vertical or horizontal)", name)
}

// Overlay highlights a resolution on the chart. Ids are chart node ids.
type Overlay struct {
	Visited []string
	Current string
}

// NewOverlay marks the history and the current entry of res.
func NewOverlay[C, D any](nodes []*compiler.Node[C, D], res *domain.Result[C, D]) *Overlay {
	if res == nil {
		return &Overlay{}
	}
	ids := ChartIDs(nodes)
	o := &Overlay{}
	for _, s := range res.History {
		o.Visited = append(o.Visited, ids[s.InternalID])
	}
	if res.Entry != nil {
		o.Current = ids[res.Entry.InternalID]
	}
	return o
}

type options struct {
	theme     Theme
	direction Direction
	overlay   *Overlay
}

// Option configures chart rendering.
type Option func(*options)

// WithTheme sets the theme variables. Default DarkTheme.
func WithTheme(t Theme) Option {
	return func(o *options) { o.theme = t }
}

// WithDirection sets the layout. Default Vertical.
func WithDirection(d Direction) Option {
	return func(o *options) { o.direction = d }
}

// WithOverlay styles visited and current states.
func WithOverlay(ov *Overlay) Option {
	return func(o *options) { o.overlay = ov }
}

func newOptions(opts []Option) options {
	o := options{theme: DarkTheme, direction: Vertical}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Mermaid renders links as a Mermaid flowchart.
func Mermaid(links []Link, opts ...Option) string {
	o := newOptions(opts)

	var sb strings.Builder
	writeHeader(&sb, o)
	for _, line := range linkLines(links, "") {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	writeOverlay(&sb, o.overlay)
	return sb.String()
}

// MermaidPathways renders every pathway in one chart. Node ids are suffixed
// with the index of their pathway so that pathways do not merge.
func MermaidPathways(pathways [][]Link, opts ...Option) string {
	o := newOptions(opts)

	var sb strings.Builder
	writeHeader(&sb, o)
	for i, links := range pathways {
		for _, line := range linkLines(links, fmt.Sprintf("_%d", i)) {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func writeHeader(sb *strings.Builder, o options) {
	init, _ := json.Marshal(struct {
		Theme          string `json:"theme"`
		ThemeVariables Theme  `json:"themeVariables"`
	}{"base", o.theme})

	dir := "TD"
	if o.direction == Horizontal {
		dir = "LR"
	}
	fmt.Fprintf(sb, "%%%%{init: %s}%%%%\n", init)
	fmt.Fprintf(sb, "graph %s\n", dir)
}

func writeOverlay(sb *strings.Builder, ov *Overlay) {
	if ov == nil {
		return
	}
	sb.WriteString("classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	seen := make(map[string]bool)
	for _, id := range ov.Visited {
		if id == "" || seen[id] || id == ov.Current {
			continue
		}
		seen[id] = true
		fmt.Fprintf(sb, "class %s visited;\n", id)
	}
	if ov.Current != "" {
		fmt.Fprintf(sb, "class %s current;\n", ov.Current)
	}
}

func linkLines(links []Link, suffix string) []string {
	lines := make([]string, 0, len(links))
	for _, link := range links {
		switch {
		case link.Reason == GroupStart:
			lines = append(lines, fmt.Sprintf("subgraph %s [%s]", groupID(link.Group), quote(link.Group)))
		case link.Reason == GroupEnd:
			lines = append(lines, "end")
		default:
			lines = append(lines, linkLine(link, suffix))
		}
	}
	return lines
}

func linkLine(link Link, suffix string) string {
	arrow := "-->"
	truth := "true"
	if link.Reason == ForkSkipped {
		arrow = "-.->"
		truth = "false"
	}
	verb := "is"
	if len(link.From.Conditions) > 1 {
		verb = "are"
	}
	text := fmt.Sprintf("%s %s %s", strings.Join(link.From.Conditions, " and "), verb, truth)
	return fmt.Sprintf("%s %s |%s| %s", shape(link.From, suffix), arrow, quote(text), shape(link.To, suffix))
}

func shape(n Node, suffix string) string {
	if n.Kind == domain.KindFork {
		return fmt.Sprintf("%s%s{%s}", n.ID, suffix, quote(n.Label))
	}
	return fmt.Sprintf("%s%s[%s]", n.ID, suffix, quote(n.Label))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "'") + `"`
}

func groupID(label string) string {
	return compiler.Sanitize(label)
}
