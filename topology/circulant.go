package topology

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Graph is an interconnection graph stored as an arena: node ids are slice
// indices and adjacency lists hold ids in the order edges were added.
type Graph struct {
	adj   [][]int
	links []int
}

// MaxLink is the largest link distance allowed on a ring of n nodes. On even
// rings n/2 is excluded since it would duplicate the opposite connection.
func MaxLink(n int) int {
	if n%2 == 0 {
		return n/2 - 1
	}
	return n / 2
}

func validateCirculant(n int, links []int) error {
	if n < 3 {
		return fmt.Errorf("%w: N cannot be less than 3, actual %d", ErrInvalidTopology, n)
	}
	if len(links) == 0 {
		return fmt.Errorf("%w: circulant c%d has no links", ErrInvalidTopology, n)
	}
	maxLink := MaxLink(n)
	for i, l := range links {
		if l < 1 || l > maxLink {
			return fmt.Errorf("%w: link[%d] out of range, must be 1 <= link <= %d, actual %d",
				ErrInvalidTopology, i, maxLink, l)
		}
	}
	return nil
}

// BuildCirculant connects every node i to (i+l) mod n for each distinct link
// l. Both endpoints record the edge once per (i, l) pair.
func BuildCirculant(n int, links []int) (*Graph, error) {
	if err := validateCirculant(n, links); err != nil {
		return nil, err
	}
	norm := normalizeLinks(links)
	g := &Graph{adj: make([][]int, n), links: norm}
	for i := range g.adj {
		g.adj[i] = make([]int, 0, 2*len(norm))
	}
	for i := 0; i < n; i++ {
		for _, l := range norm {
			j := (i + l) % n
			g.adj[i] = append(g.adj[i], j)
			g.adj[j] = append(g.adj[j], i)
		}
	}
	return g, nil
}

func (g *Graph) NumNodes() int {
	return len(g.adj)
}

// Links returns the normalized link distances the graph was built from.
func (g *Graph) Links() []int {
	return append([]int(nil), g.links...)
}

func (g *Graph) Neighbors(id int) []int {
	return append([]int(nil), g.adj[id]...)
}

func (g *Graph) Degree(id int) int {
	return len(g.adj[id])
}

// WriteTo writes the anynet network description, one line per router:
// "router <id> node <id> router <n1> router <n2> ...".
func (g *Graph) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	buf := make([]byte, 0, 64)
	for id, nbs := range g.adj {
		buf = buf[:0]
		buf = append(buf, "router "...)
		buf = strconv.AppendInt(buf, int64(id), 10)
		buf = append(buf, " node "...)
		buf = strconv.AppendInt(buf, int64(id), 10)
		for _, nb := range nbs {
			buf = append(buf, " router "...)
			buf = strconv.AppendInt(buf, int64(nb), 10)
		}
		buf = append(buf, '\n')
		n, err := bw.Write(buf)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

func (g *Graph) Serialize() string {
	var b strings.Builder
	_, _ = g.WriteTo(&b)
	return b.String()
}
