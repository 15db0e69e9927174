package middleware

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"booksweep/store"
	"booksweep/structs"

	"github.com/go-sql-driver/mysql"
	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"
)

// DSN: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func DSN(dbConfig structs.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = dbConfig.Username
	mc.Passwd = dbConfig.Password
	mc.Net = "tcp"
	mc.Addr = dbConfig.Addr
	mc.DBName = dbConfig.DBName
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// ConnectToDB opens and pings the MySQL result database.
func ConnectToDB(ctx context.Context, dbConfig structs.DatabaseConfig, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(dbConfig))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error pinging the database: %w", err)
	}

	log.Infof("Database connection pool initialized: %s@%s/%s", dbConfig.Username, dbConfig.Addr, dbConfig.DBName)
	return db, nil
}

func NewRedisPool(cfg structs.RedisConfig) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     cfg.MaxIdle,
		IdleTimeout: 240 * time.Second,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", cfg.Addr,
				redis.DialPassword(cfg.Password),
				redis.DialDatabase(cfg.DB),
				redis.DialConnectTimeout(5*time.Second),
			)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// OpenSink builds the result backend selected by store.backend.
func OpenSink(ctx context.Context, cfg structs.StoreConfig, parallelism int) (store.Sink, error) {
	switch cfg.Backend {
	case BackendCSV:
		sink, err := store.NewCSVSink(cfg.CSV.Path)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case BackendMySQL:
		db, err := ConnectToDB(ctx, cfg.Database, parallelism)
		if err != nil {
			return nil, err
		}
		sink := store.NewSQLSink(db)
		if err := sink.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return sink, nil
	case BackendRedis:
		pool := NewRedisPool(cfg.Redis)
		conn, err := pool.GetContext(ctx)
		if err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		_, err = conn.Do("PING")
		_ = conn.Close()
		if err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Infof("Redis pool initialized: %s db=%d", cfg.Redis.Addr, cfg.Redis.DB)
		return store.NewRedisSink(pool, cfg.Redis.KeyPrefix), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
