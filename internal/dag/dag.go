// Package dag provides the directed acyclic graph ordering pipeline stages.
// It supports cycle detection, topological sorting, and execution levels.
package dag

import (
	"fmt"
	"sort"
)

// Graph is a directed acyclic graph over stage names.
type Graph struct {
	nodes   map[string]bool
	edges   map[string][]string // upstream -> downstream
	parents map[string][]string // downstream -> upstream
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]bool),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// Add inserts a node if it is not already present.
func (g *Graph) Add(id string) {
	if !g.nodes[id] {
		g.nodes[id] = true
		g.edges[id] = []string{}
		g.parents[id] = []string{}
	}
}

// Depend records that downstream consumes upstream's output.
func (g *Graph) Depend(downstream, upstream string) error {
	if !g.nodes[upstream] {
		return fmt.Errorf("unknown upstream node %q", upstream)
	}
	if !g.nodes[downstream] {
		return fmt.Errorf("unknown downstream node %q", downstream)
	}
	if upstream == downstream {
		return fmt.Errorf("self-dependency: %s", upstream)
	}
	if !contains(g.edges[upstream], downstream) {
		g.edges[upstream] = append(g.edges[upstream], downstream)
	}
	if !contains(g.parents[downstream], upstream) {
		g.parents[downstream] = append(g.parents[downstream], upstream)
	}
	return nil
}

// Parents returns the direct upstreams of a node.
func (g *Graph) Parents(id string) []string {
	return g.parents[id]
}

// Children returns the direct downstreams of a node.
func (g *Graph) Children(id string) []string {
	return g.edges[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// hasCycle reports whether the graph contains a cycle and returns its path.
func (g *Graph) hasCycle() (bool, []string) {
	visited := make(map[string]bool)
	inStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cycle []string
	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		inStack[id] = true
		for _, next := range g.edges[id] {
			if !visited[next] {
				cameFrom[next] = id
				if dfs(next) {
					return true
				}
			} else if inStack[next] {
				cycle = []string{next}
				for cur := id; cur != next; cur = cameFrom[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}
		inStack[id] = false
		return false
	}

	for id := range g.nodes {
		if !visited[id] && dfs(id) {
			return true, cycle
		}
	}
	return false, nil
}

// Sorted returns the node names in topological order, upstreams first.
func (g *Graph) Sorted() ([]string, error) {
	if cyclic, path := g.hasCycle(); cyclic {
		return nil, fmt.Errorf("cycle detected: %v", path)
	}

	visited := make(map[string]bool)
	var order []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, p := range g.parents[id] {
			visit(p)
		}
		order = append(order, id)
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		visit(id)
	}
	return order, nil
}

// Levels groups nodes by execution level. Nodes of one level have all their
// upstreams in earlier levels and may run in parallel.
func (g *Graph) Levels() ([][]string, error) {
	if cyclic, path := g.hasCycle(); cyclic {
		return nil, fmt.Errorf("cycle detected: %v", path)
	}

	level := make(map[string]int)
	var assign func(id string) int
	assign = func(id string) int {
		if lv, ok := level[id]; ok {
			return lv
		}
		lv := 0
		for _, p := range g.parents[id] {
			if pl := assign(p) + 1; pl > lv {
				lv = pl
			}
		}
		level[id] = lv
		return lv
	}

	max := 0
	for id := range g.nodes {
		if lv := assign(id); lv > max {
			max = lv
		}
	}

	levels := make([][]string, max+1)
	for id, lv := range level {
		levels[lv] = append(levels[lv], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// Upstream returns every transitive dependency of id, sorted.
func (g *Graph) Upstream(id string) []string {
	seen := make(map[string]bool)
	var walk func(n string)
	walk = func(n string) {
		for _, p := range g.parents[n] {
			if !seen[p] {
				seen[p] = true
				walk(p)
			}
		}
	}
	walk(id)

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Downstream returns id plus every transitive dependent, sorted.
func (g *Graph) Downstream(id string) []string {
	if !g.nodes[id] {
		return nil
	}
	seen := make(map[string]bool)
	var walk func(n string)
	walk = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, c := range g.edges[n] {
			walk(c)
		}
	}
	walk(id)

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
