package graph

import "sort"

// Pathways returns every chain of links that starts at the beginning of the
// flow and ends on a state labelled name, shortest first. Group markers are
// ignored.
func Pathways(name string, links []Link) [][]Link {
	state := make([]Link, 0, len(links))
	for _, l := range links {
		if !l.IsGroup() {
			state = append(state, l)
		}
	}

	var result [][]Link
	for _, last := range state {
		if last.To.Label != name {
			continue
		}
		for _, prefix := range pathsTo(last.From.ID, state) {
			path := make([]Link, 0, len(prefix)+1)
			path = append(path, prefix...)
			result = append(result, append(path, last))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return len(result[i]) < len(result[j])
	})
	return result
}

// pathsTo lists the chains reaching id from a state with no incoming links.
func pathsTo(id string, links []Link) [][]Link {
	var out [][]Link
	for _, l := range links {
		if l.To.ID != id {
			continue
		}
		for _, prefix := range pathsTo(l.From.ID, links) {
			path := make([]Link, 0, len(prefix)+1)
			path = append(path, prefix...)
			out = append(out, append(path, l))
		}
	}
	if out == nil {
		return [][]Link{nil}
	}
	return out
}

// FromLabels lists the labels of the states a pathway leaves from.
func FromLabels(path []Link) []string {
	out := make([]string, len(path))
	for i, l := range path {
		out[i] = l.From.Label
	}
	return out
}
