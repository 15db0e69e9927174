package config_space

import (
	"os"
	"path/filepath"
	"testing"

	"booksweep/structs"
	"booksweep/topology"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCartesianCount(t *testing.T) {
	task := structs.TaskSpec{
		Topologies:   []string{"circulant"},
		NumNodes:     []int{8, 16},
		Links:        [][]int{{1}, {1, 2}},
		RoutingFuncs: []string{"min", "dor"},
		Traffic:      []string{"uniform", "tornado", "bitrev"},
		SimCounts:    []int{1, 5},
	}

	configs, warnings := Generate([]structs.TaskSpec{task})
	assert.Empty(t, warnings)
	require.Len(t, configs, 4*2*3*2)

	names := make(map[string]struct{})
	for _, cfg := range configs {
		names[cfg.CanonicalName()] = struct{}{}
	}
	assert.Len(t, names, len(configs))

	assert.Equal(t, "circulant_c8_1_Fmin_Tuniform_S1", configs[0].CanonicalName())
	assert.Equal(t, "circulant_c8_1_Fmin_Tuniform_S5", configs[1].CanonicalName())
	assert.Equal(t, "circulant_c16_1_2_Fdor_Tbitrev_S5", configs[len(configs)-1].CanonicalName())
}

func TestGenerateSkipsInvalidTopology(t *testing.T) {
	task := structs.TaskSpec{
		Topologies:   []string{"circulant", "ring"},
		NumNodes:     []int{6, 2},
		Links:        [][]int{{1}, {3}},
		RoutingFuncs: []string{"min"},
		Traffic:      []string{"uniform"},
		SimCounts:    []int{1},
	}

	configs, warnings := Generate([]structs.TaskSpec{task})
	require.Len(t, configs, 1)
	assert.Equal(t, "circulant_c6_1_Fmin_Tuniform_S1", configs[0].CanonicalName())

	// c6/{3}, c2/{1}, c2/{3} and the unknown kind
	require.Len(t, warnings, 4)
	for _, w := range warnings {
		assert.ErrorIs(t, w, topology.ErrInvalidTopology)
	}
}

func TestGenerateLattices(t *testing.T) {
	tasks := []structs.TaskSpec{
		{
			Topologies:   []string{"mesh", "torus"},
			Radixes:      []int{2, 4},
			Dimensions:   []int{2, 3},
			RoutingFuncs: []string{"dim_order"},
			Traffic:      []string{"uniform"},
			SimCounts:    []int{1},
		},
		{
			Topologies:   []string{"mesh"},
			NumNodes:     []int{1},
			Links:        [][]int{{8, 2}, {3}},
			RoutingFuncs: []string{"dim_order"},
			Traffic:      []string{"uniform"},
			SimCounts:    []int{1},
		},
	}

	configs, warnings := Generate(tasks)
	require.Len(t, configs, 8+1)
	assert.Equal(t, "mesh_k2_n2_Fdim_order_Tuniform_S1", configs[0].CanonicalName())
	assert.Equal(t, "mesh_k8_n2_Fdim_order_Tuniform_S1", configs[8].CanonicalName())
	assert.Equal(t, 64, configs[8].Topology.NumRouters())
	require.Len(t, warnings, 1)
}

func TestGenerateDeduplicates(t *testing.T) {
	task := structs.TaskSpec{
		Topologies:   []string{"circulant"},
		NumNodes:     []int{9},
		Links:        [][]int{{1, 2}, {2, 1, 1}},
		RoutingFuncs: []string{"min"},
		Traffic:      []string{"uniform", "uniform"},
		SimCounts:    []int{3},
	}

	configs, _ := Generate([]structs.TaskSpec{task, task})
	require.Len(t, configs, 1)
	assert.Equal(t, "circulant_c9_1_2_Fmin_Tuniform_S3", configs[0].CanonicalName())
}

func TestGenerateBadParameters(t *testing.T) {
	task := structs.TaskSpec{
		Topologies:   []string{"torus"},
		Radixes:      []int{4},
		Dimensions:   []int{2},
		RoutingFuncs: []string{"dim_order", ""},
		Traffic:      []string{"hotspot"},
		SimCounts:    []int{0, 2},
	}

	configs, warnings := Generate([]structs.TaskSpec{task})
	require.Len(t, configs, 1)
	assert.Equal(t, "torus_k4_n2_Fdim_order_Thotspot_S2", configs[0].CanonicalName())
	assert.Len(t, warnings, 3)
}

func TestGenerateWarnsOnDisconnectedCirculant(t *testing.T) {
	task := structs.TaskSpec{
		Topologies:   []string{"circulant"},
		NumNodes:     []int{6},
		Links:        [][]int{{2}},
		RoutingFuncs: []string{"min"},
		Traffic:      []string{"uniform"},
		SimCounts:    []int{1},
	}

	configs, warnings := Generate([]structs.TaskSpec{task})
	assert.Len(t, configs, 1)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "disconnected")
}

func TestLoadTasks(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"tasks.toml": `
[[task]]
topologies = ["circulant"]
num_nodes = [8, 16]
links = [[1], [1, 2]]
routing_funcs = ["min"]
traffic = ["uniform", "tornado"]
sim_counts = [1]

[[task]]
topologies = ["mesh", "torus"]
radixes = [4]
dimensions = [2]
routing_funcs = ["dim_order"]
traffic = ["uniform"]
sim_counts = [1]
`,
		"tasks.yaml": `
tasks:
  - topologies: [circulant]
    num_nodes: [8, 16]
    links: [[1], [1, 2]]
    routing_funcs: [min]
    traffic: [uniform, tornado]
    sim_counts: [1]
  - topologies: [mesh, torus]
    radixes: [4]
    dimensions: [2]
    routing_funcs: [dim_order]
    traffic: [uniform]
    sim_counts: [1]
`,
		"tasks.json": `{"tasks": [
  {"topologies": ["circulant"], "num_nodes": [8, 16], "links": [[1], [1, 2]],
   "routing_funcs": ["min"], "traffic": ["uniform", "tornado"], "sim_counts": [1]},
  {"topologies": ["mesh", "torus"], "radixes": [4], "dimensions": [2],
   "routing_funcs": ["dim_order"], "traffic": ["uniform"], "sim_counts": [1]}
]}`,
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		tasks, err := LoadTasks(path)
		require.NoError(t, err, name)
		require.Len(t, tasks, 2, name)
		assert.Equal(t, [][]int{{1}, {1, 2}}, tasks[0].Links, name)
		assert.Equal(t, []int{4}, tasks[1].Radixes, name)

		configs, warnings := Generate(tasks)
		assert.Empty(t, warnings, name)
		assert.Len(t, configs, 2*2*2+2, name)
	}
}

func TestLoadTasksErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTasks(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(dir, "tasks.ini")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	_, err = LoadTasks(path)
	assert.Error(t, err)

	path = filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tasks: [unclosed"), 0644))
	_, err = LoadTasks(path)
	assert.Error(t, err)
}
