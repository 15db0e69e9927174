package topology

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Stats summarizes the hop structure of a graph.
type Stats struct {
	Components  int
	Diameter    int
	AvgDistance float64
}

func (s Stats) Connected() bool {
	return s.Components == 1
}

// unweighted returns g as a gonum graph with parallel edges collapsed.
func (g *Graph) unweighted() graph.Undirected {
	ug := simple.NewUndirectedGraph()
	for id := range g.adj {
		ug.AddNode(simple.Node(int64(id)))
	}
	for id, nbs := range g.adj {
		for _, nb := range nbs {
			if nb == id || ug.HasEdgeBetween(int64(id), int64(nb)) {
				continue
			}
			ug.SetEdge(simple.Edge{F: simple.Node(int64(id)), T: simple.Node(int64(nb))})
		}
	}
	return ug
}

// Stats computes the component count, and the eccentricity and mean hop
// distance of node 0 within its component. Circulants are vertex-transitive,
// so for them these equal the diameter and the average distance of the graph.
func (g *Graph) Stats() Stats {
	ug := g.unweighted()
	res := Stats{Components: len(topo.ConnectedComponents(ug))}
	if len(g.adj) < 2 {
		return res
	}

	tree := path.DijkstraFrom(simple.Node(0), ug)
	var sum float64
	var reached int
	for id := 1; id < len(g.adj); id++ {
		d := tree.WeightTo(int64(id))
		if math.IsInf(d, 1) {
			continue
		}
		if int(d) > res.Diameter {
			res.Diameter = int(d)
		}
		sum += d
		reached++
	}
	if reached > 0 {
		res.AvgDistance = sum / float64(reached)
	}
	return res
}
