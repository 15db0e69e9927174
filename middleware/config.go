package middleware

import (
	"fmt"
	"os"
	"path/filepath"

	"booksweep/collector"
	"booksweep/config_space"
	"booksweep/sim_config"
	"booksweep/structs"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

const (
	BackendCSV   = "csv"
	BackendMySQL = "mysql"
	BackendRedis = "redis"
)

// LoadConfig reads the TOML configuration file
func LoadConfig(path string) (*structs.Config, error) {
	var cfg structs.Config
	// Get absolute path for clearer error messages if file not found
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error getting absolute path for %s: %w", path, err)
	}

	log.Infof("Attempting to load configuration from: %s", absPath)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", absPath)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding TOML file %s: %w", path, err)
	}

	if cfg.TaskFile != "" {
		taskPath := cfg.TaskFile
		if !filepath.IsAbs(taskPath) {
			taskPath = filepath.Join(filepath.Dir(absPath), taskPath)
		}
		tasks, err := config_space.LoadTasks(taskPath)
		if err != nil {
			return nil, err
		}
		cfg.Tasks = append(cfg.Tasks, tasks...)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *structs.Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = "./logs"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "booksweep.log"
	}

	def := sim_config.DefaultRenderOptions()
	if cfg.Simulator.SamplePeriod <= 0 {
		cfg.Simulator.SamplePeriod = def.SamplePeriod
	}
	if cfg.Simulator.InjectionRate <= 0 {
		cfg.Simulator.InjectionRate = def.InjectionRate
	}
	if cfg.Simulator.NumVCs <= 0 {
		cfg.Simulator.NumVCs = def.NumVCs
	}
	if cfg.Simulator.VCBufSize <= 0 {
		cfg.Simulator.VCBufSize = def.VCBufSize
	}

	if cfg.Runner.WorkDir == "" {
		cfg.Runner.WorkDir = "./work"
	}
	if cfg.Runner.Parallelism <= 0 {
		cfg.Runner.Parallelism = collector.DefaultParallelism()
		log.Warningf("Parallelism not set, using one worker per logical CPU: %d", cfg.Runner.Parallelism)
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendCSV
	}
	if cfg.Store.CSV.Path == "" {
		cfg.Store.CSV.Path = "results.csv"
	}
	if cfg.Store.Database.Addr == "" {
		cfg.Store.Database.Addr = "127.0.0.1:3306"
	}
	if cfg.Store.Redis.Addr == "" {
		cfg.Store.Redis.Addr = "127.0.0.1:6379"
	}
	if cfg.Store.Redis.MaxIdle <= 0 {
		cfg.Store.Redis.MaxIdle = cfg.Runner.Parallelism
	}
}

func validate(cfg *structs.Config) error {
	if cfg.Simulator.Executable == "" {
		return fmt.Errorf("simulator.executable is required")
	}
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Runner.JobTimeoutSeconds < 0 {
		return fmt.Errorf("runner.job_timeout_seconds must not be negative, got %d", cfg.Runner.JobTimeoutSeconds)
	}
	switch cfg.Store.Backend {
	case BackendCSV:
	case BackendMySQL:
		if cfg.Store.Database.DBName == "" {
			return fmt.Errorf("store.database.dbname is required for the mysql backend")
		}
	case BackendRedis:
	default:
		return fmt.Errorf("unknown store.backend %q", cfg.Store.Backend)
	}
	if len(cfg.Tasks) == 0 {
		return fmt.Errorf("no [[task]] entries and no task_file")
	}
	return nil
}

// RenderOptions maps the [simulator] section onto the config renderer.
func RenderOptions(cfg structs.SimulatorConfig) sim_config.RenderOptions {
	return sim_config.RenderOptions{
		SamplePeriod:  cfg.SamplePeriod,
		InjectionRate: cfg.InjectionRate,
		NumVCs:        cfg.NumVCs,
		VCBufSize:     cfg.VCBufSize,
	}
}
