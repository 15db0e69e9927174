package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"booksweep/sim_config"
	"booksweep/sim_report"

	log "github.com/sirupsen/logrus"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS topology (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		kind VARCHAR(16) NOT NULL,
		num_nodes INT NOT NULL,
		shape VARCHAR(255) NOT NULL,
		UNIQUE KEY uq_topology (kind, num_nodes, shape)
	)`,
	`CREATE TABLE IF NOT EXISTS sim_config (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		topology_id BIGINT NOT NULL,
		routing_function VARCHAR(64) NOT NULL,
		traffic VARCHAR(64) NOT NULL,
		sim_count INT NOT NULL,
		UNIQUE KEY uq_sim_config (topology_id, routing_function, traffic, sim_count),
		FOREIGN KEY (topology_id) REFERENCES topology(id)
	)`,
	resultTableDDL(),
}

func resultTableDDL() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS sim_result (\n")
	b.WriteString("\t\tid BIGINT AUTO_INCREMENT PRIMARY KEY,\n")
	b.WriteString("\t\tconfig_id BIGINT NOT NULL,\n")
	for _, col := range sim_report.Columns() {
		fmt.Fprintf(&b, "\t\t%s DOUBLE NOT NULL,\n", col)
	}
	b.WriteString("\t\tcreated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,\n")
	b.WriteString("\t\tUNIQUE KEY uq_sim_result (config_id),\n")
	b.WriteString("\t\tFOREIGN KEY (config_id) REFERENCES sim_config(id)\n")
	b.WriteString("\t)")
	return b.String()
}

// LAST_INSERT_ID(id) makes the existing row id visible through LastInsertId
// when the unique key already holds the row.
const (
	insertTopologySQL = `INSERT INTO topology (kind, num_nodes, shape) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`
	insertConfigSQL = `INSERT INTO sim_config (topology_id, routing_function, traffic, sim_count) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`
	countResultSQL = `SELECT COUNT(*) FROM sim_result WHERE config_id = ?`
)

var insertResultSQL = fmt.Sprintf("INSERT IGNORE INTO sim_result (config_id, %s) VALUES (?%s)",
	strings.Join(sim_report.Columns(), ", "),
	strings.Repeat(", ?", sim_report.NumMetrics))

// SQLSink stores topologies, parameters and results as normalized MySQL rows
type SQLSink struct {
	db *sql.DB
}

func NewSQLSink(db *sql.DB) *SQLSink {
	return &SQLSink{db: db}
}

func (s *SQLSink) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	log.Infof("sql sink: schema ready")
	return nil
}

func (s *SQLSink) Register(ctx context.Context, cfg sim_config.Config) (ConfigHandle, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ConfigHandle{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, insertTopologySQL,
		string(cfg.Topology.Kind), cfg.Topology.NumRouters(), cfg.Topology.ShapeField())
	if err != nil {
		return ConfigHandle{}, fmt.Errorf("failed to insert topology %s: %w", cfg.Topology.Name(), err)
	}
	topoID, err := res.LastInsertId()
	if err != nil {
		return ConfigHandle{}, fmt.Errorf("failed to get topology id: %w", err)
	}

	res, err = tx.ExecContext(ctx, insertConfigSQL,
		topoID, string(cfg.RoutingFunc), string(cfg.Traffic), cfg.SimCount)
	if err != nil {
		return ConfigHandle{}, fmt.Errorf("failed to insert config %s: %w", cfg.CanonicalName(), err)
	}
	cfgID, err := res.LastInsertId()
	if err != nil {
		return ConfigHandle{}, fmt.Errorf("failed to get config id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ConfigHandle{}, fmt.Errorf("failed to commit config %s: %w", cfg.CanonicalName(), err)
	}
	return ConfigHandle{ID: cfgID, Config: cfg}, nil
}

func (s *SQLSink) Save(ctx context.Context, h ConfigHandle, res sim_report.Result) error {
	args := make([]interface{}, 0, 1+sim_report.NumMetrics)
	args = append(args, h.ID)
	for _, v := range res.Values() {
		args = append(args, v)
	}

	r, err := s.db.ExecContext(ctx, insertResultSQL, args...)
	if err != nil {
		return fmt.Errorf("failed to insert result for %s: %w", h.Name(), err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for %s: %w", h.Name(), err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateResult, h.Name())
	}
	return nil
}

func (s *SQLSink) HasResult(ctx context.Context, h ConfigHandle) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countResultSQL, h.ID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to query result of %s: %w", h.Name(), err)
	}
	return n > 0, nil
}

func (s *SQLSink) Close() error {
	return s.db.Close()
}
