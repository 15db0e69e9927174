package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"booksweep/goroutine_pool"
	"booksweep/sim_config"
	"booksweep/sim_report"
	"booksweep/store"

	log "github.com/sirupsen/logrus"
)

const (
	reasonAlreadyStored = "result already stored"
	reasonNotDispatched = "not dispatched"
	reasonPanic         = "worker panicked"
)

// Sink is what the runner needs from a store backend.
type Sink interface {
	store.ConfigSink
	store.ResultSink
}

type Options struct {
	Executable  string
	WorkDir     string
	Parallelism int
	Sink        Sink
	Render      sim_config.RenderOptions
	// JobTimeout bounds one simulator run; zero means no limit.
	JobTimeout time.Duration
	// KeepOutput writes the raw simulator output to result_<name> in WorkDir.
	KeepOutput bool
	// SkipCompleted skips configs whose result the sink already holds. Needs
	// a sink implementing store.ResultLookup.
	SkipCompleted bool
}

type Runner struct {
	opts     Options
	renderer *sim_config.Renderer
}

func New(opts Options) (*Runner, error) {
	if opts.Executable == "" {
		return nil, fmt.Errorf("%w: no executable configured", ErrLaunch)
	}
	if opts.Sink == nil {
		return nil, errors.New("runner: no sink configured")
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	dir, err := filepath.Abs(opts.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("error getting absolute path for %s: %w", opts.WorkDir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workdir %s: %w", dir, err)
	}
	opts.WorkDir = dir

	return &Runner{opts: opts, renderer: sim_config.NewRenderer(opts.Render)}, nil
}

func (r *Runner) Options() Options {
	return r.opts
}

// Run registers every config, then runs them on a bounded pool. Job failures
// end up in the Summary; only registration and launch failures are returned.
// Cancelling ctx stops dispatching new jobs, running ones finish.
func (r *Runner) Run(ctx context.Context, configs []sim_config.Config) (Summary, error) {
	jobs := make([]Job, 0, len(configs))
	for _, cfg := range configs {
		h, err := r.opts.Sink.Register(ctx, cfg)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to register %s: %w", cfg.CanonicalName(), err)
		}
		jobs = append(jobs, Job{Handle: h, State: StatePending})
	}
	log.Infof("runner: %d configs registered", len(jobs))

	if r.opts.SkipCompleted {
		if err := r.markCompleted(ctx, jobs); err != nil {
			return Summary{}, err
		}
	}

	todo := 0
	for i := range jobs {
		if jobs[i].State == StatePending {
			todo++
		}
	}

	progress := make(chan string, r.opts.Parallelism)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		i := 0
		for name := range progress {
			i++
			log.Infof("[%d/%d] processing %q", i, todo, name)
		}
	}()

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()
	execCtx := context.WithoutCancel(ctx)

	var (
		wg        sync.WaitGroup
		launchErr error
		launchMu  sync.Mutex
	)
	pool, err := goroutine_pool.NewPool(goroutine_pool.SimJobsPool, r.opts.Parallelism, func(arg interface{}) {
		defer wg.Done()
		job := &jobs[arg.(int)]
		progress <- job.Name()
		if err := r.runJob(execCtx, job); err != nil {
			launchMu.Lock()
			if launchErr == nil {
				launchErr = err
			}
			launchMu.Unlock()
			stopDispatch()
		}
	}, nil)
	if err != nil {
		close(progress)
		<-progressDone
		return Summary{}, err
	}

	for i := range jobs {
		if jobs[i].State != StatePending {
			continue
		}
		if dispatchCtx.Err() != nil {
			jobs[i].skip(reasonNotDispatched)
			continue
		}
		wg.Add(1)
		if err := pool.Invoke(i); err != nil {
			wg.Done()
			log.Errorf("runner: failed to dispatch %s, err=%v", jobs[i].Name(), err)
			jobs[i].skip(reasonNotDispatched)
		}
	}
	wg.Wait()
	pool.Release()
	close(progress)
	<-progressDone

	for i := range jobs {
		if !jobs[i].done() {
			jobs[i].skip(reasonPanic)
		}
	}

	summary := summarize(jobs)
	if launchErr != nil {
		return summary, launchErr
	}
	if ctx.Err() != nil {
		log.Warningf("runner: batch interrupted, err=%v", ctx.Err())
	}
	return summary, nil
}

func (r *Runner) markCompleted(ctx context.Context, jobs []Job) error {
	lookup, ok := r.opts.Sink.(store.ResultLookup)
	if !ok {
		log.Warningf("runner: sink %T cannot look up results, skip_completed ignored", r.opts.Sink)
		return nil
	}
	for i := range jobs {
		done, err := lookup.HasResult(ctx, jobs[i].Handle)
		if err != nil {
			return fmt.Errorf("failed to look up result of %s: %w", jobs[i].Name(), err)
		}
		if done {
			jobs[i].skip(reasonAlreadyStored)
		}
	}
	return nil
}

// runJob moves one job to Parsed or Skipped. The returned error is non-nil
// only when the simulator itself cannot be started.
func (r *Runner) runJob(ctx context.Context, job *Job) error {
	name := job.Name()

	files, err := r.renderer.Render(job.Handle.Config, r.opts.WorkDir)
	if err != nil {
		log.Errorf("job %s: render failed, err=%v", name, err)
		job.skip(fmt.Sprintf("render: %v", err))
		return nil
	}
	job.State = StateRendered

	job.State = StateExecuting
	out, code, err := execute(ctx, r.opts.Executable, files.ConfigPath, r.opts.JobTimeout)
	job.ExitCode = code
	if errors.Is(err, ErrLaunch) {
		log.Errorf("job %s: %v", name, err)
		job.skip(err.Error())
		return err
	}
	if err != nil {
		log.Errorf("job %s: %v", name, err)
		job.skip(err.Error())
		return nil
	}
	if code != 0 {
		log.Warningf("job %s: simulator exited with status %d", name, code)
	}

	if r.opts.KeepOutput {
		path := filepath.Join(r.opts.WorkDir, sim_config.ResultFilePrefix+name)
		if err := os.WriteFile(path, []byte(out), 0644); err != nil {
			log.Warningf("job %s: failed to keep output at %s, err=%v", name, path, err)
		}
	}

	res, err := sim_report.ParseString(out)
	if err != nil {
		log.Errorf("job %s: failed to parse output, err=%v", name, err)
		job.skip(err.Error())
		return nil
	}

	if err := r.opts.Sink.Save(ctx, job.Handle, res); err != nil {
		log.Errorf("job %s: failed to save result, err=%v", name, err)
		job.skip(err.Error())
		return nil
	}
	job.Result = res
	job.State = StateParsed
	return nil
}
