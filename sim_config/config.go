package sim_config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"booksweep/topology"
)

var ErrBadConfigName = errors.New("malformed canonical config name")

type RoutingFunc string

const (
	RoutingMin      RoutingFunc = "min"
	RoutingDOR      RoutingFunc = "dor"
	RoutingDimOrder RoutingFunc = "dim_order"
)

// Known reports whether r is one of the routing functions the sweeps are written against.
// The simulator accepts more; unknown names are passed through verbatim.
func (r RoutingFunc) Known() bool {
	switch r {
	case RoutingMin, RoutingDOR, RoutingDimOrder:
		return true
	}
	return false
}

type TrafficPattern string

const (
	TrafficUniform   TrafficPattern = "uniform"
	TrafficBitComp   TrafficPattern = "bitcomp"
	TrafficBitRev    TrafficPattern = "bitrev"
	TrafficShuffle   TrafficPattern = "shuffle"
	TrafficTranspose TrafficPattern = "transpose"
	TrafficTornado   TrafficPattern = "tornado"
	TrafficNeighbor  TrafficPattern = "neighbor"
	TrafficRandPerm  TrafficPattern = "randperm"
)

var AllTraffic = []TrafficPattern{
	TrafficUniform, TrafficBitComp, TrafficBitRev, TrafficShuffle,
	TrafficTranspose, TrafficTornado, TrafficNeighbor, TrafficRandPerm,
}

func (p TrafficPattern) Known() bool {
	for _, k := range AllTraffic {
		if p == k {
			return true
		}
	}
	return false
}

// TopoIndependentConfig holds the run parameters that do not depend on the topology shape
type TopoIndependentConfig struct {
	RoutingFunc RoutingFunc
	Traffic     TrafficPattern
	SimCount    int
}

func (c TopoIndependentConfig) Validate() error {
	if c.RoutingFunc == "" {
		return fmt.Errorf("routing function is empty")
	}
	if c.Traffic == "" {
		return fmt.Errorf("traffic pattern is empty")
	}
	if c.SimCount <= 0 {
		return fmt.Errorf("sim_count must be positive, actual %d", c.SimCount)
	}
	return nil
}

func (c TopoIndependentConfig) namePart() string {
	return fmt.Sprintf("_F%s_T%s_S%d", c.RoutingFunc, c.Traffic, c.SimCount)
}

// Config is one experiment: a topology plus its independent parameters.
// Two configs with the same CanonicalName are the same experiment.
type Config struct {
	Topology topology.Topology
	TopoIndependentConfig
}

// CanonicalName encodes the full identity of c, e.g.
// circulant_c16_1_4_Fmin_Tuniform_S5 or mesh_k4_n2_Fdim_order_Ttornado_S1.
func (c Config) CanonicalName() string {
	return c.Topology.Name() + c.namePart()
}

func (c Config) String() string {
	return c.CanonicalName()
}

var canonicalNameRE = regexp.MustCompile(`^(.+)_F(\w+)_T(\w+)_S(\d+)$`)

// ParseCanonicalName is the inverse of Config.CanonicalName.
func ParseCanonicalName(name string) (Config, error) {
	m := canonicalNameRE.FindStringSubmatch(name)
	if m == nil {
		return Config{}, fmt.Errorf("%w: %q", ErrBadConfigName, name)
	}
	topo, err := topology.ParseName(m[1])
	if err != nil {
		return Config{}, fmt.Errorf("%w: %q: %v", ErrBadConfigName, name, err)
	}
	simCount, err := strconv.Atoi(m[4])
	if err != nil {
		return Config{}, fmt.Errorf("%w: %q: %v", ErrBadConfigName, name, err)
	}
	cfg := Config{
		Topology: topo,
		TopoIndependentConfig: TopoIndependentConfig{
			RoutingFunc: RoutingFunc(m[2]),
			Traffic:     TrafficPattern(m[3]),
			SimCount:    simCount,
		},
	}
	if err := cfg.TopoIndependentConfig.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %q: %v", ErrBadConfigName, name, err)
	}
	return cfg, nil
}
