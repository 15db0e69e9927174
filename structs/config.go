package structs

// Config holds the overall configuration structure mapping to booksweep_config.toml
type Config struct {
	Log       LogConfig       `toml:"log"`
	Simulator SimulatorConfig `toml:"simulator"`
	Runner    RunnerConfig    `toml:"runner"`
	Store     StoreConfig     `toml:"store"`
	TaskFile  string          `toml:"task_file,omitempty"`
	Tasks     []TaskSpec      `toml:"task"`
}

// LogConfig controls the logrus level and the lumberjack log file
type LogConfig struct {
	Level string `toml:"level"`
	Dir   string `toml:"dir"`
	File  string `toml:"file"`
}

// SimulatorConfig describes the external executable and the constant lines of every config file
type SimulatorConfig struct {
	Executable    string  `toml:"executable"`
	SamplePeriod  int     `toml:"sample_period"`
	InjectionRate float64 `toml:"injection_rate"`
	NumVCs        int     `toml:"num_vcs"`
	VCBufSize     int     `toml:"vc_buf_size"`
}

// RunnerConfig holds worker pool parameters
type RunnerConfig struct {
	WorkDir           string `toml:"workdir"`
	Parallelism       int    `toml:"parallelism"`
	JobTimeoutSeconds int    `toml:"job_timeout_seconds"`
	KeepOutput        bool   `toml:"keep_output"`
	SkipCompleted     bool   `toml:"skip_completed"`
}

// StoreConfig selects the result backend: "csv", "mysql" or "redis"
type StoreConfig struct {
	Backend  string         `toml:"backend"`
	CSV      CSVConfig      `toml:"csv"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
}

type CSVConfig struct {
	Path string `toml:"path"`
}

// DatabaseConfig holds database connection parameters
type DatabaseConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Addr     string `toml:"addr"`
	DBName   string `toml:"dbname"`
}

type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
	MaxIdle   int    `toml:"max_idle"`
}

// TaskSpec maps to one [[task]] item in TOML (or one entry of a task file).
// Lattice kinds (mesh, torus) take their shape from Radixes x Dimensions; when
// Radixes is empty every link set is read as [k, n].
type TaskSpec struct {
	Topologies   []string `toml:"topologies" yaml:"topologies" json:"topologies"`
	NumNodes     []int    `toml:"num_nodes" yaml:"num_nodes" json:"num_nodes"`
	Links        [][]int  `toml:"links" yaml:"links" json:"links"`
	Radixes      []int    `toml:"radixes,omitempty" yaml:"radixes,omitempty" json:"radixes,omitempty"`
	Dimensions   []int    `toml:"dimensions,omitempty" yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	RoutingFuncs []string `toml:"routing_funcs" yaml:"routing_funcs" json:"routing_funcs"`
	Traffic      []string `toml:"traffic" yaml:"traffic" json:"traffic"`
	SimCounts    []int    `toml:"sim_counts" yaml:"sim_counts" json:"sim_counts"`
}
