package sim_report

// Range is a min/max/avg triple reported for one metric
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Result holds the overall statistics of traffic class 0
type Result struct {
	PacketLatency      Range `json:"packet_latency"`
	NetworkLatency     Range `json:"network_latency"`
	FlitLatency        Range `json:"flit_latency"`
	Fragmentation      Range `json:"fragmentation"`
	InjectedPacketRate Range `json:"injected_packet_rate"`
	AcceptedPacketRate Range `json:"accepted_packet_rate"`
	InjectedFlitRate   Range `json:"injected_flit_rate"`
	AcceptedFlitRate   Range `json:"accepted_flit_rate"`

	InjectedPacketSizeAvg float64 `json:"injected_packet_size_avg"`
	AcceptedPacketSizeAvg float64 `json:"accepted_packet_size_avg"`
	HopsAvg               float64 `json:"hops_avg"`
}

// NumMetrics is the number of scalar values in a Result
const NumMetrics = 27

var rangeNames = [...]string{
	"packet_latency",
	"network_latency",
	"flit_latency",
	"fragmentation",
	"injected_packet_rate",
	"accepted_packet_rate",
	"injected_flit_rate",
	"accepted_flit_rate",
}

var scalarNames = [...]string{
	"injected_packet_size_avg",
	"accepted_packet_size_avg",
	"hops_avg",
}

func (r *Result) ranges() [8]*Range {
	return [8]*Range{
		&r.PacketLatency,
		&r.NetworkLatency,
		&r.FlitLatency,
		&r.Fragmentation,
		&r.InjectedPacketRate,
		&r.AcceptedPacketRate,
		&r.InjectedFlitRate,
		&r.AcceptedFlitRate,
	}
}

func (r *Result) scalars() [3]*float64 {
	return [3]*float64{&r.InjectedPacketSizeAvg, &r.AcceptedPacketSizeAvg, &r.HopsAvg}
}

// Columns names the metrics in storage order: min, max, avg for every range,
// then the three scalars.
func Columns() []string {
	cols := make([]string, 0, NumMetrics)
	for _, name := range rangeNames {
		cols = append(cols, name+"_min", name+"_max", name+"_avg")
	}
	return append(cols, scalarNames[:]...)
}

// Values returns the metrics in the order of Columns.
func (r Result) Values() []float64 {
	vals := make([]float64, 0, NumMetrics)
	for _, rg := range r.ranges() {
		vals = append(vals, rg.Min, rg.Max, rg.Avg)
	}
	for _, s := range r.scalars() {
		vals = append(vals, *s)
	}
	return vals
}

// ResultFromValues is the inverse of Result.Values.
func ResultFromValues(vals []float64) (Result, bool) {
	var r Result
	if len(vals) != NumMetrics {
		return r, false
	}
	i := 0
	for _, rg := range r.ranges() {
		rg.Min, rg.Max, rg.Avg = vals[i], vals[i+1], vals[i+2]
		i += 3
	}
	for _, s := range r.scalars() {
		*s = vals[i]
		i++
	}
	return r, true
}
