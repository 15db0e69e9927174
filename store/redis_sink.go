package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"booksweep/sim_config"
	"booksweep/sim_report"

	"github.com/gomodule/redigo/redis"
)

const DefaultRedisPrefix = "booksweep"

type configRecord struct {
	Name        string `json:"name"`
	Topology    string `json:"topology"`
	NumNodes    int    `json:"num_nodes"`
	Shape       string `json:"shape"`
	RoutingFunc string `json:"routing_function"`
	Traffic     string `json:"traffic"`
	SimCount    int    `json:"sim_count"`
}

type resultRecord struct {
	Config  configRecord      `json:"config"`
	Result  sim_report.Result `json:"result"`
	SavedAt time.Time         `json:"saved_at"`
}

func newConfigRecord(cfg sim_config.Config) configRecord {
	return configRecord{
		Name:        cfg.CanonicalName(),
		Topology:    string(cfg.Topology.Kind),
		NumNodes:    cfg.Topology.NumRouters(),
		Shape:       cfg.Topology.ShapeField(),
		RoutingFunc: string(cfg.RoutingFunc),
		Traffic:     string(cfg.Traffic),
		SimCount:    cfg.SimCount,
	}
}

// RedisSink keeps configs and results as JSON strings keyed by canonical
// name. SET NX makes the first write win.
type RedisSink struct {
	pool   *redis.Pool
	prefix string
}

func NewRedisSink(pool *redis.Pool, prefix string) *RedisSink {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisSink{pool: pool, prefix: prefix}
}

func (s *RedisSink) configKey(name string) string {
	return s.prefix + ":config:" + name
}

func (s *RedisSink) resultKey(name string) string {
	return s.prefix + ":result:" + name
}

func (s *RedisSink) indexKey() string {
	return s.prefix + ":results"
}

func (s *RedisSink) Register(ctx context.Context, cfg sim_config.Config) (ConfigHandle, error) {
	payload, err := json.Marshal(newConfigRecord(cfg))
	if err != nil {
		return ConfigHandle{}, fmt.Errorf("failed to marshal config: %w", err)
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return ConfigHandle{}, fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Do("SET", s.configKey(cfg.CanonicalName()), payload, "NX"); err != nil {
		return ConfigHandle{}, fmt.Errorf("failed to register config %s: %w", cfg.CanonicalName(), err)
	}
	return ConfigHandle{Config: cfg}, nil
}

func (s *RedisSink) Save(ctx context.Context, h ConfigHandle, res sim_report.Result) error {
	payload, err := json.Marshal(resultRecord{
		Config:  newConfigRecord(h.Config),
		Result:  res,
		SavedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	name := h.Name()
	_, err = redis.String(conn.Do("SET", s.resultKey(name), payload, "NX"))
	if errors.Is(err, redis.ErrNil) {
		return fmt.Errorf("%w: %s", ErrDuplicateResult, name)
	}
	if err != nil {
		return fmt.Errorf("failed to save result for %s: %w", name, err)
	}
	if _, err := conn.Do("SADD", s.indexKey(), name); err != nil {
		return fmt.Errorf("failed to index result for %s: %w", name, err)
	}
	return nil
}

func (s *RedisSink) HasResult(ctx context.Context, h ConfigHandle) (bool, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()
	return redis.Bool(conn.Do("EXISTS", s.resultKey(h.Name())))
}

// Result loads a stored result back.
func (s *RedisSink) Result(ctx context.Context, cfg sim_config.Config) (sim_report.Result, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return sim_report.Result{}, fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	data, err := redis.Bytes(conn.Do("GET", s.resultKey(cfg.CanonicalName())))
	if err != nil {
		return sim_report.Result{}, fmt.Errorf("failed to load result for %s: %w", cfg.CanonicalName(), err)
	}
	var rec resultRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return sim_report.Result{}, fmt.Errorf("failed to unmarshal result for %s: %w", cfg.CanonicalName(), err)
	}
	return rec.Result, nil
}

func (s *RedisSink) Close() error {
	return s.pool.Close()
}
