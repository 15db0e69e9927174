package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	c, err := NewCirculant(16, []int{4, 1, 4})
	require.NoError(t, err)
	assert.Equal(t, "circulant_c16_1_4", c.Name())
	assert.Equal(t, "1,4", c.ShapeField())
	assert.Equal(t, 16, c.NumRouters())

	m, err := NewMesh(4, 3)
	require.NoError(t, err)
	assert.Equal(t, "mesh_k4_n3", m.Name())
	assert.Equal(t, "4,3", m.ShapeField())
	assert.Equal(t, 64, m.NumRouters())

	tr, err := NewTorus(8, 2)
	require.NoError(t, err)
	assert.Equal(t, "torus_k8_n2", tr.Name())
	assert.False(t, tr.NeedsNetworkFile())
	assert.True(t, c.NeedsNetworkFile())
}

func TestParseName(t *testing.T) {
	for _, name := range []string{"circulant_c16_1_4", "mesh_k4_n3", "torus_k2_n2", "circulant_c1001_1_4_16_64_256"} {
		topo, err := ParseName(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, topo.Name())
	}

	for _, name := range []string{"", "ring_c4_1", "circulant_c6_3", "mesh_k4", "mesh_x4_n2", "circulant_c8_a"} {
		_, err := ParseName(name)
		assert.ErrorIs(t, err, ErrInvalidTopology, name)
	}
}

func TestLatticeValidation(t *testing.T) {
	_, err := NewMesh(0, 2)
	assert.ErrorIs(t, err, ErrInvalidTopology)
	_, err = NewTorus(4, -1)
	assert.ErrorIs(t, err, ErrInvalidTopology)
	assert.ErrorIs(t, Topology{Kind: "ring"}.Validate(), ErrInvalidTopology)
}

func TestRenderBlock(t *testing.T) {
	c, err := NewCirculant(5, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "topology = anynet;\nnetwork_file = /tmp/topo_x;\n\n", c.RenderBlock("/tmp/topo_x"))

	m, err := NewMesh(4, 2)
	require.NoError(t, err)
	assert.Equal(t, "topology = mesh;\nk = 4;\nn = 2;\n\n", m.RenderBlock(""))
}

func TestLatticeHasNoGraph(t *testing.T) {
	m, err := NewMesh(4, 2)
	require.NoError(t, err)
	_, err = m.Graph()
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	ring, err := BuildCirculant(8, []int{1})
	require.NoError(t, err)
	s := ring.Stats()
	assert.True(t, s.Connected())
	assert.Equal(t, 4, s.Diameter)
	assert.InDelta(t, 16.0/7.0, s.AvgDistance, 1e-9)

	complete, err := BuildCirculant(5, []int{1, 2})
	require.NoError(t, err)
	s = complete.Stats()
	assert.Equal(t, 1, s.Diameter)
	assert.InDelta(t, 1.0, s.AvgDistance, 1e-9)

	split, err := BuildCirculant(6, []int{2})
	require.NoError(t, err)
	s = split.Stats()
	assert.False(t, s.Connected())
	assert.Equal(t, 2, s.Components)
	assert.Equal(t, 1, s.Diameter)
}
