package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"booksweep/sim_config"
	"booksweep/sim_report"
	"booksweep/store"

	log "github.com/sirupsen/logrus"
)

// Reparse imports result_<name> files kept by an earlier run. The config is
// recovered from the file name. Files that do not parse are skipped.
func Reparse(ctx context.Context, dir string, sink Sink) (Summary, error) {
	paths, err := filepath.Glob(filepath.Join(dir, sim_config.ResultFilePrefix+"*"))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	log.Infof("reparse: %d output files in %s", len(paths), dir)

	jobs := make([]Job, 0, len(paths))
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		name := strings.TrimPrefix(filepath.Base(path), sim_config.ResultFilePrefix)
		log.Infof("[%d/%d] processing %q", i+1, len(paths), name)

		cfg, err := sim_config.ParseCanonicalName(name)
		if err != nil {
			log.Warningf("reparse: %s skipped, err=%v", path, err)
			continue
		}
		h, err := sink.Register(ctx, cfg)
		if err != nil {
			return summarize(jobs), fmt.Errorf("failed to register %s: %w", name, err)
		}
		job := Job{Handle: h, State: StateExecuting}

		res, err := sim_report.ParseFile(path)
		if err != nil {
			log.Warningf("reparse: %s skipped, err=%v", path, err)
			job.skip(err.Error())
			jobs = append(jobs, job)
			continue
		}
		if err := sink.Save(ctx, h, res); err != nil {
			if errors.Is(err, store.ErrDuplicateResult) {
				job.skip(reasonAlreadyStored)
			} else {
				log.Errorf("reparse: failed to save %s, err=%v", name, err)
				job.skip(err.Error())
			}
			jobs = append(jobs, job)
			continue
		}
		job.Result = res
		job.State = StateParsed
		jobs = append(jobs, job)
	}
	return summarize(jobs), nil
}
