// Package network scores identifiers by their position in a co-occurrence
// graph: identifiers linked when they appear on the same page.
package network

import (
	"sort"
	"sync"

	gonumnet "gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

// NeutralScore is used for identifiers the graph does not know.
const NeutralScore = 0.5

// degreeSaturation is the degree at which degree centrality reaches 1.
const degreeSaturation = 50

type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight,omitempty"`
}

// Graph is an undirected, unweighted co-occurrence graph. Parallel edges
// collapse into one link; self loops are ignored. Identifiers are mapped to
// gonum node IDs in sorted order.
type Graph struct {
	ug    *simple.UndirectedGraph
	ids   map[string]int64
	nodes []string

	once        sync.Once
	betweenness map[string]float64
}

func NewGraph(edges []Edge) *Graph {
	g := &Graph{ug: simple.NewUndirectedGraph(), ids: make(map[string]int64)}
	for _, e := range edges {
		if e.Source == "" || e.Target == "" || e.Source == e.Target {
			continue
		}
		for _, id := range []string{e.Source, e.Target} {
			if _, ok := g.ids[id]; !ok {
				g.ids[id] = 0
				g.nodes = append(g.nodes, id)
			}
		}
	}
	sort.Strings(g.nodes)
	for i, id := range g.nodes {
		g.ids[id] = int64(i)
		g.ug.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		if e.Source == "" || e.Target == "" || e.Source == e.Target {
			continue
		}
		g.ug.SetEdge(simple.Edge{F: simple.Node(g.ids[e.Source]), T: simple.Node(g.ids[e.Target])})
	}
	return g
}

func (g *Graph) Has(id string) bool {
	if g == nil {
		return false
	}
	_, ok := g.ids[id]
	return ok
}

func (g *Graph) Degree(id string) int {
	if g == nil {
		return 0
	}
	n, ok := g.ids[id]
	if !ok {
		return 0
	}
	return g.ug.From(n).Len()
}

// Betweenness returns the normalized betweenness centrality of id in [0,1].
func (g *Graph) Betweenness(id string) float64 {
	if g == nil {
		return 0
	}
	g.once.Do(g.computeBetweenness)
	return g.betweenness[id]
}

// Score is 0.7·min(1, degree/50) + 0.3·betweenness, or NeutralScore for an
// identifier that is not in the graph.
func (g *Graph) Score(id string) float64 {
	if !g.Has(id) {
		return NeutralScore
	}
	degree := min(1, float64(g.Degree(id))/degreeSaturation)
	return min(1, 0.7*degree+0.3*g.Betweenness(id))
}

// computeBetweenness normalizes gonum's Brandes betweenness. gonum counts
// every undirected path from both ends, hence the (n-1)(n-2) divisor.
func (g *Graph) computeBetweenness() {
	n := len(g.nodes)
	cb := make(map[string]float64, n)
	if n > 2 {
		norm := float64((n - 1) * (n - 2))
		for id, v := range gonumnet.Betweenness(g.ug) {
			cb[g.nodes[id]] = min(1, v/norm)
		}
	}
	g.betweenness = cb
}
