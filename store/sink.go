package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"booksweep/sim_config"
	"booksweep/sim_report"
	"booksweep/topology"
)

var ErrDuplicateResult = errors.New("result already stored for config")

// ConfigHandle identifies a registered config inside a sink. ID is only
// meaningful to backends that assign one.
type ConfigHandle struct {
	ID     int64
	Config sim_config.Config
}

func (h ConfigHandle) Name() string {
	return h.Config.CanonicalName()
}

// ConfigSink records a config before it runs, so failed runs stay auditable.
// Registering the same config twice returns the existing handle.
type ConfigSink interface {
	Register(ctx context.Context, cfg sim_config.Config) (ConfigHandle, error)
}

// ResultSink persists one result per config and rejects a second one with
// ErrDuplicateResult.
type ResultSink interface {
	Save(ctx context.Context, h ConfigHandle, res sim_report.Result) error
}

type Sink interface {
	ConfigSink
	ResultSink
	Close() error
}

// ResultLookup is implemented by sinks that can tell whether a config
// already has a result.
type ResultLookup interface {
	HasResult(ctx context.Context, h ConfigHandle) (bool, error)
}

var configColumns = []string{
	"topo_name",
	"topo_num_nodes",
	"topo_links",
	"cfg_routing_func",
	"cfg_traffic_type",
	"cfg_sim_count",
}

// Headers is the flat record layout shared by the file backends: config
// identity followed by the metrics in sim_report.Columns order.
func Headers() []string {
	return append(append([]string(nil), configColumns...), sim_report.Columns()...)
}

func configFields(cfg sim_config.Config) []string {
	return []string{
		string(cfg.Topology.Kind),
		strconv.Itoa(cfg.Topology.NumRouters()),
		cfg.Topology.ShapeField(),
		string(cfg.RoutingFunc),
		string(cfg.Traffic),
		strconv.Itoa(cfg.SimCount),
	}
}

func configFromFields(fields []string) (sim_config.Config, error) {
	if len(fields) < len(configColumns) {
		return sim_config.Config{}, fmt.Errorf("record has %d fields, need %d", len(fields), len(configColumns))
	}
	kind, err := topology.ParseKind(fields[0])
	if err != nil {
		return sim_config.Config{}, err
	}
	shape, err := splitInts(fields[2])
	if err != nil {
		return sim_config.Config{}, fmt.Errorf("bad topo_links %q: %w", fields[2], err)
	}

	var topo topology.Topology
	if kind == topology.KindCirculant {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return sim_config.Config{}, fmt.Errorf("bad topo_num_nodes %q: %w", fields[1], err)
		}
		topo, err = topology.NewCirculant(n, shape)
		if err != nil {
			return sim_config.Config{}, err
		}
	} else {
		if len(shape) != 2 {
			return sim_config.Config{}, fmt.Errorf("bad lattice shape %q", fields[2])
		}
		topo, err = topology.NewLattice(kind, shape[0], shape[1])
		if err != nil {
			return sim_config.Config{}, err
		}
	}

	simCount, err := strconv.Atoi(fields[5])
	if err != nil {
		return sim_config.Config{}, fmt.Errorf("bad cfg_sim_count %q: %w", fields[5], err)
	}
	return sim_config.Config{
		Topology: topo,
		TopoIndependentConfig: sim_config.TopoIndependentConfig{
			RoutingFunc: sim_config.RoutingFunc(fields[3]),
			Traffic:     sim_config.TrafficPattern(fields[4]),
			SimCount:    simCount,
		},
	}, nil
}

func splitInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	res := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}
