package store

import (
	"context"
	"errors"
	"testing"

	"booksweep/sim_config"
	"booksweep/topology"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLSinkEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS topology").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sim_config").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sim_result").WillReturnResult(sqlmock.NewResult(0, 0))

	sink := NewSQLSink(db)
	require.NoError(t, sink.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSinkRegister(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig(t, must(topology.NewCirculant(8, []int{1, 2})), sim_config.TrafficUniform)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO topology").
		WithArgs("circulant", int64(8), "1,2").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO sim_config").
		WithArgs(int64(3), "min", "uniform", int64(1)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	sink := NewSQLSink(db)
	h, err := sink.Register(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(7), h.ID)
	assert.Equal(t, cfg.CanonicalName(), h.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSinkRegisterRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig(t, must(topology.NewMesh(4, 2)), sim_config.TrafficTornado)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO topology").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO sim_config").WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	sink := NewSQLSink(db)
	_, err = sink.Register(context.Background(), cfg)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSinkSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig(t, must(topology.NewTorus(4, 2)), sim_config.TrafficBitRev)
	h := ConfigHandle{ID: 5, Config: cfg}

	mock.ExpectExec("INSERT IGNORE INTO sim_result").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT IGNORE INTO sim_result").WillReturnResult(sqlmock.NewResult(0, 0))

	sink := NewSQLSink(db)
	require.NoError(t, sink.Save(context.Background(), h, testResult(1)))
	err = sink.Save(context.Background(), h, testResult(1))
	assert.ErrorIs(t, err, ErrDuplicateResult)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSinkHasResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig(t, must(topology.NewCirculant(6, []int{1})), sim_config.TrafficUniform)
	h := ConfigHandle{ID: 9, Config: cfg}

	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT COUNT").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	sink := NewSQLSink(db)
	done, err := sink.HasResult(context.Background(), h)
	require.NoError(t, err)
	assert.True(t, done)
	done, err = sink.HasResult(context.Background(), h)
	require.NoError(t, err)
	assert.False(t, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultInsertPlaceholders(t *testing.T) {
	assert.Contains(t, insertResultSQL, "config_id, packet_latency_min")
	n := 0
	for _, c := range insertResultSQL {
		if c == '?' {
			n++
		}
	}
	assert.Equal(t, 28, n)
}
