// Package graph derives charts from a normalized flow tree: the links
// between states, their Mermaid rendering and the pathways leading to a
// state.
package graph

import (
	"strings"

	"github.com/aretw0/machi/internal/compiler"
	"github.com/aretw0/machi/pkg/domain"
)

// Reason says why one state leads to another.
type Reason string

const (
	EntryDone   Reason = "ENTRY_DONE"
	ForkEntered Reason = "FORK_ENTERED"
	ForkSkipped Reason = "FORK_SKIPPED"
	GroupStart  Reason = "GROUP_START"
	GroupEnd    Reason = "GROUP_END"
)

// Node is a state as drawn on a chart. Variants of a fork declared next to
// each other share one chart node.
type Node struct {
	// ID is the internal id of the state, or of the first variant for forks.
	ID    string
	Label string
	Kind  domain.NodeKind
	// Conditions are the labels of the entry IsDone conditions or of the
	// fork requirements.
	Conditions []string
}

// Link is either a transition between two states or, when Reason is
// GroupStart or GroupEnd, a subgraph marker named by Group.
type Link struct {
	Reason Reason
	From   Node
	To     Node
	Group  string
}

// IsGroup reports whether the link is a subgraph marker.
func (l Link) IsGroup() bool {
	return l.Reason == GroupStart || l.Reason == GroupEnd
}

// Links lists the transitions of the tree in flow order.
//
// A done entry leads to the next state of its level, or to the state
// following its parent fork when it is the last one. A fork leads to its
// first child when entered, and to the state after it when skipped. The skip
// links of same-named sibling forks are merged into one carrying all their
// requirements. Self links, duplicates and links pointing backwards are
// dropped; skip links come after the other links leaving the same fork.
func Links[C, D any](nodes []*compiler.Node[C, D]) []Link {
	l := &linker[C, D]{ids: ChartIDs(nodes)}
	l.run(nodes, nil)

	links := dedupe(l.out)
	links = forwardOnly(links, order(nodes, l.ids))
	return sortSkipped(links)
}

// ChartIDs maps the internal id of every node to the id of its chart node.
func ChartIDs[C, D any](nodes []*compiler.Node[C, D]) map[string]string {
	ids := make(map[string]string)
	var level func([]*compiler.Node[C, D])
	level = func(ns []*compiler.Node[C, D]) {
		var prev *compiler.Node[C, D]
		for _, n := range ns {
			id := n.InternalID
			if prev != nil && n.IsFork() && prev.IsFork() && n.Label() == prev.Label() {
				id = ids[prev.InternalID]
			}
			ids[n.InternalID] = id
			level(n.Children)
			prev = n
		}
	}
	level(nodes)
	return ids
}

type linker[C, D any] struct {
	ids map[string]string
	out []Link
}

func (l *linker[C, D]) node(n *compiler.Node[C, D]) Node {
	cn := Node{ID: l.ids[n.InternalID], Label: n.Label(), Kind: n.Node.Kind()}
	if e := n.Entry(); e != nil {
		cn.Conditions = domain.Labels(e.IsDone)
	}
	if f := n.Fork(); f != nil {
		cn.Conditions = domain.Labels(f.Requirements)
	}
	return cn
}

func (l *linker[C, D]) run(level []*compiler.Node[C, D], parentNext *compiler.Node[C, D]) {
	for i, n := range level {
		target := parentNext
		for _, s := range level[i+1:] {
			if l.ids[s.InternalID] != l.ids[n.InternalID] {
				target = s
				break
			}
		}

		if f := n.Fork(); f != nil {
			l.out = append(l.out, Link{Reason: ForkEntered, From: l.node(n), To: l.node(n.Children[0])})
			if f.ChartGroup != "" {
				l.out = append(l.out, Link{Reason: GroupStart, Group: f.ChartGroup})
			}
			l.run(n.Children, target)
			if f.ChartGroup != "" {
				l.out = append(l.out, Link{Reason: GroupEnd, Group: f.ChartGroup})
			}
			if target != nil {
				l.skip(n, target)
			}
			continue
		}

		if e := n.Entry(); e != nil && len(e.IsDone) > 0 && target != nil {
			l.out = append(l.out, Link{Reason: EntryDone, From: l.node(n), To: l.node(target)})
		}
	}
}

func (l *linker[C, D]) skip(fork, target *compiler.Node[C, D]) {
	from := l.node(fork)
	to := l.node(target)
	for i := range l.out {
		existing := &l.out[i]
		if existing.Reason == ForkSkipped && existing.From.ID == from.ID && existing.To.ID == to.ID {
			conds := make([]string, 0, len(existing.From.Conditions)+len(from.Conditions))
			conds = append(conds, existing.From.Conditions...)
			existing.From.Conditions = append(conds, from.Conditions...)
			return
		}
	}
	l.out = append(l.out, Link{Reason: ForkSkipped, From: from, To: to})
}

func dedupe(links []Link) []Link {
	out := make([]Link, 0, len(links))
	seen := make(map[string]bool)
	for _, link := range links {
		if link.IsGroup() {
			out = append(out, link)
			continue
		}
		if link.From.ID == link.To.ID {
			continue
		}
		key := strings.Join([]string{
			string(link.Reason),
			link.From.ID, strings.Join(link.From.Conditions, "\x00"),
			link.To.ID, strings.Join(link.To.Conditions, "\x00"),
		}, "\x01")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, link)
	}
	return out
}

// order numbers chart nodes by first appearance in declaration order.
func order[C, D any](nodes []*compiler.Node[C, D], ids map[string]string) map[string]int {
	pos := make(map[string]int)
	for _, n := range compiler.Flatten(nodes) {
		id := ids[n.InternalID]
		if _, ok := pos[id]; !ok {
			pos[id] = len(pos)
		}
	}
	return pos
}

func forwardOnly(links []Link, pos map[string]int) []Link {
	out := links[:0]
	for _, link := range links {
		if link.IsGroup() {
			out = append(out, link)
			continue
		}
		from, okFrom := pos[link.From.ID]
		to, okTo := pos[link.To.ID]
		if okFrom && okTo && from < to {
			out = append(out, link)
		}
	}
	return out
}

// sortSkipped moves every skip link after the last other link leaving the
// same fork, keeping everything else in place.
func sortSkipped(links []Link) []Link {
	anchor := make([]int, len(links))
	for i, link := range links {
		anchor[i] = i
		if link.Reason != ForkSkipped {
			continue
		}
		for j := i + 1; j < len(links); j++ {
			if !links[j].IsGroup() && links[j].Reason != ForkSkipped && links[j].From.ID == link.From.ID {
				anchor[i] = j
			}
		}
	}

	out := make([]Link, 0, len(links))
	for k, link := range links {
		if anchor[k] == k {
			out = append(out, link)
		}
		for i := range links {
			if i != k && anchor[i] == k {
				out = append(out, links[i])
			}
		}
	}
	return out
}
