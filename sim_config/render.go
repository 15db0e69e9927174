package sim_config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	ConfigFilePrefix   = "config_"
	TopologyFilePrefix = "topo_"
	ResultFilePrefix   = "result_"
)

// RenderOptions are the constant lines written into every config file
type RenderOptions struct {
	SamplePeriod  int
	InjectionRate float64
	NumVCs        int
	VCBufSize     int
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		SamplePeriod:  10000,
		InjectionRate: 0.0001,
		NumVCs:        4,
		VCBufSize:     4,
	}
}

// RenderedFiles are the paths written for one config. TopologyPath is empty
// for lattice topologies.
type RenderedFiles struct {
	ConfigPath   string
	TopologyPath string
}

type Renderer struct {
	opts RenderOptions
}

// NewRenderer fills zero fields of opts with the defaults.
func NewRenderer(opts RenderOptions) *Renderer {
	def := DefaultRenderOptions()
	if opts.SamplePeriod <= 0 {
		opts.SamplePeriod = def.SamplePeriod
	}
	if opts.InjectionRate <= 0 {
		opts.InjectionRate = def.InjectionRate
	}
	if opts.NumVCs <= 0 {
		opts.NumVCs = def.NumVCs
	}
	if opts.VCBufSize <= 0 {
		opts.VCBufSize = def.VCBufSize
	}
	return &Renderer{opts: opts}
}

func (r *Renderer) Options() RenderOptions {
	return r.opts
}

// ConfigText renders the simulator config for cfg. networkFile is only used
// by topologies that need an explicit network description.
func (r *Renderer) ConfigText(cfg Config, networkFile string) string {
	var b strings.Builder
	b.WriteString(cfg.Topology.RenderBlock(networkFile))
	fmt.Fprintf(&b, "routing_function = %s;\n", cfg.RoutingFunc)
	fmt.Fprintf(&b, "traffic          = %s;\n", cfg.Traffic)
	fmt.Fprintf(&b, "sample_period    = %d;\n", r.opts.SamplePeriod)
	fmt.Fprintf(&b, "injection_rate   = %s;\n", strconv.FormatFloat(r.opts.InjectionRate, 'g', -1, 64))
	fmt.Fprintf(&b, "sim_count        = %d;\n", cfg.SimCount)
	fmt.Fprintf(&b, "num_vcs          = %d;\n", r.opts.NumVCs)
	fmt.Fprintf(&b, "vc_buf_size      = %d;\n", r.opts.VCBufSize)
	b.WriteString("\n")
	return b.String()
}

// Render writes config_<name> and, for circulants, topo_<name> into dir.
// The circulant graph is built here and dropped once written.
func (r *Renderer) Render(cfg Config, dir string) (RenderedFiles, error) {
	name := cfg.CanonicalName()
	files := RenderedFiles{ConfigPath: filepath.Join(dir, ConfigFilePrefix+name)}

	if cfg.Topology.NeedsNetworkFile() {
		files.TopologyPath = filepath.Join(dir, TopologyFilePrefix+name)
		if err := writeTopologyFile(cfg, files.TopologyPath); err != nil {
			return RenderedFiles{}, err
		}
	}

	content := r.ConfigText(cfg, files.TopologyPath)
	if err := os.WriteFile(files.ConfigPath, []byte(content), 0644); err != nil {
		return RenderedFiles{}, fmt.Errorf("failed to write config file %s: %w", files.ConfigPath, err)
	}
	log.Debugf("rendered config=%s, topology=%s", files.ConfigPath, files.TopologyPath)
	return files, nil
}

func writeTopologyFile(cfg Config, path string) error {
	g, err := cfg.Topology.Graph()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create topology file %s: %w", path, err)
	}
	if _, err := g.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write topology file %s: %w", path, err)
	}
	return f.Close()
}
