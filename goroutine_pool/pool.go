package goroutine_pool

import (
	"fmt"

	"github.com/panjf2000/ants/v2"
	log "github.com/sirupsen/logrus"
)

const SimJobsPool = "sim_jobs"

// NewPool builds a blocking pool of size workers running taskFunc. A task that
// panics is logged and handed to onPanic; the worker keeps serving.
func NewPool(poolType string, size int, taskFunc func(interface{}), onPanic func(interface{})) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool %s: size must be positive, got %d", poolType, size)
	}
	pool, err := ants.NewPoolWithFunc(size, taskFunc, ants.WithPanicHandler(func(p interface{}) {
		log.Errorf("pool %s: task panicked, err=%v", poolType, p)
		if onPanic != nil {
			onPanic(p)
		}
	}))
	if err != nil {
		return nil, fmt.Errorf("NewPoolWithFunc failed, poolType=%s: %w", poolType, err)
	}
	return pool, nil
}
