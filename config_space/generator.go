package config_space

import (
	"fmt"

	"booksweep/sim_config"
	"booksweep/structs"
	"booksweep/topology"

	log "github.com/sirupsen/logrus"
)

// Generate expands every task into the cartesian product of its topologies and
// independent parameters. Topologies and parameters that fail validation are
// skipped and returned as warnings; a config whose canonical name was already
// produced (by this or an earlier task) is emitted only once.
func Generate(tasks []structs.TaskSpec) ([]sim_config.Config, []error) {
	var (
		configs  []sim_config.Config
		warnings []error
		seen     = make(map[string]struct{})
	)
	warn := func(err error) {
		log.Warningf("config generation: %v", err)
		warnings = append(warnings, err)
	}

	for ti, task := range tasks {
		topos := buildTopologies(ti, task, warn)
		indep := buildIndependent(ti, task, warn)

		for _, topo := range topos {
			for _, params := range indep {
				cfg := sim_config.Config{Topology: topo, TopoIndependentConfig: params}
				name := cfg.CanonicalName()
				if _, dup := seen[name]; dup {
					log.Debugf("config generation: duplicate config %s skipped", name)
					continue
				}
				seen[name] = struct{}{}
				configs = append(configs, cfg)
			}
		}
	}

	log.Infof("config generation: tasks=%d, configs=%d, warnings=%d", len(tasks), len(configs), len(warnings))
	return configs, warnings
}

func buildTopologies(ti int, task structs.TaskSpec, warn func(error)) []topology.Topology {
	var res []topology.Topology
	for _, kindName := range task.Topologies {
		kind, err := topology.ParseKind(kindName)
		if err != nil {
			warn(fmt.Errorf("task[%d]: %w", ti, err))
			continue
		}

		if kind == topology.KindCirculant {
			for _, n := range task.NumNodes {
				for _, links := range task.Links {
					topo, err := topology.NewCirculant(n, links)
					if err != nil {
						warn(fmt.Errorf("task[%d]: circulant n=%d links=%v skipped: %w", ti, n, links, err))
						continue
					}
					reportDisconnected(ti, topo, warn)
					res = append(res, topo)
				}
			}
			continue
		}

		for _, shape := range latticeShapes(ti, kind, task, warn) {
			topo, err := topology.NewLattice(kind, shape[0], shape[1])
			if err != nil {
				warn(fmt.Errorf("task[%d]: %s k=%d n=%d skipped: %w", ti, kind, shape[0], shape[1], err))
				continue
			}
			res = append(res, topo)
		}
	}
	return res
}

// latticeShapes returns the (k, n) pairs of a mesh or torus entry.
func latticeShapes(ti int, kind topology.Kind, task structs.TaskSpec, warn func(error)) [][2]int {
	var shapes [][2]int
	if len(task.Radixes) > 0 {
		for _, k := range task.Radixes {
			for _, n := range task.Dimensions {
				shapes = append(shapes, [2]int{k, n})
			}
		}
		return shapes
	}
	for _, links := range task.Links {
		if len(links) != 2 {
			warn(fmt.Errorf("task[%d]: %w: %s shape %v must be [k, n]", ti, topology.ErrInvalidTopology, kind, links))
			continue
		}
		shapes = append(shapes, [2]int{links[0], links[1]})
	}
	return shapes
}

// reportDisconnected warns about circulants whose links and size share a
// common factor. They are valid but the simulator cannot route between components.
func reportDisconnected(ti int, topo topology.Topology, warn func(error)) {
	g, err := topo.Graph()
	if err != nil {
		return
	}
	if stats := g.Stats(); !stats.Connected() {
		warn(fmt.Errorf("task[%d]: %s is disconnected (%d components)", ti, topo.Name(), stats.Components))
	}
}

func buildIndependent(ti int, task structs.TaskSpec, warn func(error)) []sim_config.TopoIndependentConfig {
	for _, rf := range task.RoutingFuncs {
		if !sim_config.RoutingFunc(rf).Known() {
			log.Warningf("config generation: task[%d]: routing function %q is not a known name, passing through", ti, rf)
		}
	}
	for _, tr := range task.Traffic {
		if !sim_config.TrafficPattern(tr).Known() {
			log.Warningf("config generation: task[%d]: traffic pattern %q is not a known name, passing through", ti, tr)
		}
	}

	var res []sim_config.TopoIndependentConfig
	for _, rf := range task.RoutingFuncs {
		for _, tr := range task.Traffic {
			for _, sc := range task.SimCounts {
				params := sim_config.TopoIndependentConfig{
					RoutingFunc: sim_config.RoutingFunc(rf),
					Traffic:     sim_config.TrafficPattern(tr),
					SimCount:    sc,
				}
				if err := params.Validate(); err != nil {
					warn(fmt.Errorf("task[%d]: parameters %s/%s/%d skipped: %w", ti, rf, tr, sc, err))
					continue
				}
				res = append(res, params)
			}
		}
	}
	return res
}
