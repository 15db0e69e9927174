package sim_config

import (
	"os"
	"path/filepath"
	"testing"

	"booksweep/topology"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func circulantConfig(t *testing.T, n int, links []int, rf RoutingFunc, tr TrafficPattern, sc int) Config {
	topo, err := topology.NewCirculant(n, links)
	require.NoError(t, err)
	return Config{Topology: topo, TopoIndependentConfig: TopoIndependentConfig{RoutingFunc: rf, Traffic: tr, SimCount: sc}}
}

func TestCanonicalName(t *testing.T) {
	cfg := circulantConfig(t, 16, []int{4, 1}, RoutingMin, TrafficUniform, 5)
	assert.Equal(t, "circulant_c16_1_4_Fmin_Tuniform_S5", cfg.CanonicalName())

	mesh, err := topology.NewMesh(4, 2)
	require.NoError(t, err)
	cfg = Config{Topology: mesh, TopoIndependentConfig: TopoIndependentConfig{RoutingFunc: RoutingDimOrder, Traffic: TrafficTornado, SimCount: 1}}
	assert.Equal(t, "mesh_k4_n2_Fdim_order_Ttornado_S1", cfg.CanonicalName())
}

func TestParseCanonicalName(t *testing.T) {
	for _, name := range []string{
		"circulant_c16_1_4_Fmin_Tuniform_S5",
		"mesh_k4_n2_Fdim_order_Ttornado_S1",
		"torus_k8_n3_Fdor_Trandperm_S12",
	} {
		cfg, err := ParseCanonicalName(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, cfg.CanonicalName())
	}

	cfg, err := ParseCanonicalName("mesh_k4_n2_Fdim_order_Ttornado_S1")
	require.NoError(t, err)
	assert.Equal(t, RoutingDimOrder, cfg.RoutingFunc)
	assert.Equal(t, TrafficTornado, cfg.Traffic)
	assert.Equal(t, 1, cfg.SimCount)

	for _, name := range []string{"", "mesh_k4_n2", "circulant_c6_3_Fmin_Tuniform_S1", "mesh_k4_n2_Fmin_Tuniform_S0"} {
		_, err := ParseCanonicalName(name)
		assert.ErrorIs(t, err, ErrBadConfigName, name)
	}
}

func TestKnownNames(t *testing.T) {
	assert.True(t, RoutingDimOrder.Known())
	assert.False(t, RoutingFunc("valiant").Known())
	assert.True(t, TrafficRandPerm.Known())
	assert.False(t, TrafficPattern("hotspot").Known())
}

func TestConfigTextLattice(t *testing.T) {
	torus, err := topology.NewTorus(4, 3)
	require.NoError(t, err)
	cfg := Config{Topology: torus, TopoIndependentConfig: TopoIndependentConfig{RoutingFunc: RoutingDimOrder, Traffic: TrafficBitRev, SimCount: 2}}

	expected := "topology = torus;\n" +
		"k = 4;\n" +
		"n = 3;\n" +
		"\n" +
		"routing_function = dim_order;\n" +
		"traffic          = bitrev;\n" +
		"sample_period    = 10000;\n" +
		"injection_rate   = 0.0001;\n" +
		"sim_count        = 2;\n" +
		"num_vcs          = 4;\n" +
		"vc_buf_size      = 4;\n" +
		"\n"
	assert.Equal(t, expected, NewRenderer(RenderOptions{}).ConfigText(cfg, ""))
}

func TestRenderCirculant(t *testing.T) {
	dir := t.TempDir()
	cfg := circulantConfig(t, 5, []int{1, 2}, RoutingMin, TrafficUniform, 1)

	files, err := NewRenderer(RenderOptions{InjectionRate: 0.005}).Render(cfg, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config_circulant_c5_1_2_Fmin_Tuniform_S1"), files.ConfigPath)
	assert.Equal(t, filepath.Join(dir, "topo_circulant_c5_1_2_Fmin_Tuniform_S1"), files.TopologyPath)

	topoText, err := os.ReadFile(files.TopologyPath)
	require.NoError(t, err)
	g, err := topology.BuildCirculant(5, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, g.Serialize(), string(topoText))

	cfgText, err := os.ReadFile(files.ConfigPath)
	require.NoError(t, err)
	assert.Contains(t, string(cfgText), "topology = anynet;\nnetwork_file = "+files.TopologyPath+";\n")
	assert.Contains(t, string(cfgText), "injection_rate   = 0.005;\n")
	assert.Contains(t, string(cfgText), "sample_period    = 10000;\n")
}

func TestRenderLatticeWritesOnlyConfig(t *testing.T) {
	dir := t.TempDir()
	mesh, err := topology.NewMesh(3, 2)
	require.NoError(t, err)
	cfg := Config{Topology: mesh, TopoIndependentConfig: TopoIndependentConfig{RoutingFunc: RoutingDimOrder, Traffic: TrafficUniform, SimCount: 1}}

	files, err := NewRenderer(DefaultRenderOptions()).Render(cfg, dir)
	require.NoError(t, err)
	assert.Empty(t, files.TopologyPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config_mesh_k3_n2_Fdim_order_Tuniform_S1", entries[0].Name())
}

func TestRenderMissingDir(t *testing.T) {
	cfg := circulantConfig(t, 5, []int{1}, RoutingMin, TrafficUniform, 1)
	_, err := NewRenderer(DefaultRenderOptions()).Render(cfg, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
