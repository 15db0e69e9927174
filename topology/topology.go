package topology

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrInvalidTopology = errors.New("invalid topology")

// Kind tags the topology variant
type Kind string

const (
	KindCirculant Kind = "circulant"
	KindMesh      Kind = "mesh"
	KindTorus     Kind = "torus"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCirculant, KindMesh, KindTorus:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown topology kind %q", ErrInvalidTopology, s)
	}
}

// Topology is a tagged variant over {circulant, mesh, torus}. Circulant uses
// NumNodes and Links, the lattices use K and N. Build values with
// NewCirculant, NewMesh or NewTorus so that Links is normalized.
type Topology struct {
	Kind     Kind
	NumNodes int
	Links    []int
	K        int // routers per dimension
	N        int // dimensions
}

func NewCirculant(n int, links []int) (Topology, error) {
	if err := validateCirculant(n, links); err != nil {
		return Topology{}, err
	}
	return Topology{Kind: KindCirculant, NumNodes: n, Links: normalizeLinks(links)}, nil
}

func NewMesh(k, n int) (Topology, error) {
	return NewLattice(KindMesh, k, n)
}

func NewTorus(k, n int) (Topology, error) {
	return NewLattice(KindTorus, k, n)
}

// NewLattice builds a mesh or torus of k routers per dimension and n dimensions.
func NewLattice(kind Kind, k, n int) (Topology, error) {
	t := Topology{Kind: kind, K: k, N: n}
	if err := t.Validate(); err != nil {
		return Topology{}, err
	}
	return t, nil
}

// Validate checks the shape parameters of whichever variant t holds.
func (t Topology) Validate() error {
	switch t.Kind {
	case KindCirculant:
		return validateCirculant(t.NumNodes, t.Links)
	case KindMesh, KindTorus:
		if t.K <= 0 || t.N <= 0 {
			return fmt.Errorf("%w: %s needs positive k and n, actual k=%d n=%d",
				ErrInvalidTopology, t.Kind, t.K, t.N)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown topology kind %q", ErrInvalidTopology, t.Kind)
	}
}

// NumRouters is n for a circulant and k^n for a lattice.
func (t Topology) NumRouters() int {
	switch t.Kind {
	case KindCirculant:
		return t.NumNodes
	case KindMesh, KindTorus:
		res := 1
		for i := 0; i < t.N; i++ {
			res *= t.K
		}
		return res
	}
	return 0
}

// NeedsNetworkFile reports whether the simulator must be given an explicit
// network description for t.
func (t Topology) NeedsNetworkFile() bool {
	return t.Kind == KindCirculant
}

// Graph materializes the interconnection graph. Only circulants have one.
func (t Topology) Graph() (*Graph, error) {
	if t.Kind != KindCirculant {
		return nil, fmt.Errorf("%s topology has no explicit graph", t.Kind)
	}
	return BuildCirculant(t.NumNodes, t.Links)
}

// Name encodes the identity of t: circulant_c<n>_<l1>_<l2>..., mesh_k<k>_n<n>, torus_k<k>_n<n>.
func (t Topology) Name() string {
	var b strings.Builder
	switch t.Kind {
	case KindCirculant:
		b.WriteString("circulant_c")
		b.WriteString(strconv.Itoa(t.NumNodes))
		for _, l := range t.Links {
			b.WriteByte('_')
			b.WriteString(strconv.Itoa(l))
		}
	default:
		fmt.Fprintf(&b, "%s_k%d_n%d", t.Kind, t.K, t.N)
	}
	return b.String()
}

// ShapeField is the comma separated shape stored next to the kind and node
// count: the link set of a circulant, "k,n" of a lattice.
func (t Topology) ShapeField() string {
	if t.Kind == KindCirculant {
		return joinInts(t.Links)
	}
	return joinInts([]int{t.K, t.N})
}

func (t Topology) Equal(o Topology) bool {
	return t.Kind == o.Kind && t.Name() == o.Name()
}

// RenderBlock returns the topology lines of a simulator config file.
func (t Topology) RenderBlock(networkFile string) string {
	if t.Kind == KindCirculant {
		return fmt.Sprintf("topology = anynet;\nnetwork_file = %s;\n\n", networkFile)
	}
	return fmt.Sprintf("topology = %s;\nk = %d;\nn = %d;\n\n", t.Kind, t.K, t.N)
}

func (t Topology) String() string {
	return t.Name()
}

// ParseName is the inverse of Topology.Name.
func ParseName(name string) (Topology, error) {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return Topology{}, fmt.Errorf("%w: malformed topology name %q", ErrInvalidTopology, name)
	}
	kind, err := ParseKind(parts[0])
	if err != nil {
		return Topology{}, err
	}
	switch kind {
	case KindCirculant:
		n, err := prefixedInt(parts[1], "c")
		if err != nil {
			return Topology{}, fmt.Errorf("%w: %s: %v", ErrInvalidTopology, name, err)
		}
		links := make([]int, 0, len(parts)-2)
		for _, p := range parts[2:] {
			l, err := strconv.Atoi(p)
			if err != nil {
				return Topology{}, fmt.Errorf("%w: %s: bad link %q", ErrInvalidTopology, name, p)
			}
			links = append(links, l)
		}
		return NewCirculant(n, links)
	default:
		if len(parts) != 3 {
			return Topology{}, fmt.Errorf("%w: malformed lattice name %q", ErrInvalidTopology, name)
		}
		k, err := prefixedInt(parts[1], "k")
		if err != nil {
			return Topology{}, fmt.Errorf("%w: %s: %v", ErrInvalidTopology, name, err)
		}
		n, err := prefixedInt(parts[2], "n")
		if err != nil {
			return Topology{}, fmt.Errorf("%w: %s: %v", ErrInvalidTopology, name, err)
		}
		return NewLattice(kind, k, n)
	}
}

func prefixedInt(s, prefix string) (int, error) {
	if !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("expected prefix %q in %q", prefix, s)
	}
	return strconv.Atoi(s[len(prefix):])
}

func normalizeLinks(links []int) []int {
	seen := make(map[int]struct{}, len(links))
	res := make([]int, 0, len(links))
	for _, l := range links {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		res = append(res, l)
	}
	sort.Ints(res)
	return res
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}
