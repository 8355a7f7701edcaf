// Package jobs runs simulations in the background and keeps their status,
// the way a request handler would hand circuits to the simulator.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"qtermsim/sim"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrTooManyQubits = errors.New("circuit exceeds qubit limit")
	ErrClosed        = errors.New("runner closed")
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is a snapshot of one simulation request.
type Job struct {
	ID        string      `json:"job_id"`
	Owner     string      `json:"-"`
	Status    Status      `json:"status"`
	Results   *sim.Result `json:"results"`
	Error     string      `json:"error,omitempty"`
	Submitted time.Time   `json:"-"`
	Finished  time.Time   `json:"-"`
}

// Done reports whether the job reached a terminal state.
func (j Job) Done() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Config bounds the runner.
type Config struct {
	Concurrency int64 // simultaneous simulations; <= 0 means GOMAXPROCS
	MaxQubits   int   // largest accepted register; <= 0 disables the check
}

type entry struct {
	job  Job
	done chan struct{}
}

// Runner executes submitted circuits on background goroutines.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	sim    *sim.Simulator
	sem    *semaphore.Weighted
	cfg    Config
	logger *log.Logger

	mu     sync.RWMutex
	jobs   map[string]*entry
	closed bool
	wg     sync.WaitGroup
}

// NewRunner returns a runner evolving circuits with s.
func NewRunner(s *sim.Simulator, cfg Config, logger *log.Logger) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = int64(runtime.GOMAXPROCS(0))
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		ctx:    ctx,
		cancel: cancel,
		sim:    s,
		sem:    semaphore.NewWeighted(cfg.Concurrency),
		cfg:    cfg,
		logger: logger,
		jobs:   make(map[string]*entry),
	}
}

func newJobID() string {
	return "job_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Submit records a pending job for c and starts it. The circuit is copied so
// the caller may reuse it.
func (r *Runner) Submit(ctx context.Context, owner string, c sim.Circuit) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.cfg.MaxQubits > 0 && c.Qubits > r.cfg.MaxQubits {
		return "", fmt.Errorf("%w: %d > %d", ErrTooManyQubits, c.Qubits, r.cfg.MaxQubits)
	}

	c.Gates = slices.Clone(c.Gates)
	e := &entry{
		job: Job{
			ID:        newJobID(),
			Owner:     owner,
			Status:    StatusPending,
			Submitted: time.Now(),
		},
		done: make(chan struct{}),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", ErrClosed
	}
	r.jobs[e.job.ID] = e
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		r.run(e, c)
	}()

	r.logger.Info("job submitted", "job", e.job.ID, "owner", owner, "qubits", c.Qubits, "gates", len(c.Gates))
	return e.job.ID, nil
}

func (r *Runner) run(e *entry, c sim.Circuit) {
	if err := r.sem.Acquire(r.ctx, 1); err != nil {
		r.finish(e, nil, ErrClosed)
		return
	}
	defer r.sem.Release(1)

	res, err := r.simulate(c)
	r.finish(e, res, err)
}

// simulate turns a panic in the core into a job failure.
func (r *Runner) simulate(c sim.Circuit) (res *sim.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("simulation panicked: %v", p)
		}
	}()

	out, err := r.sim.Simulate(c)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Runner) finish(e *entry, res *sim.Result, err error) {
	r.mu.Lock()
	e.job.Finished = time.Now()
	if err != nil {
		e.job.Status = StatusFailed
		e.job.Error = err.Error()
		e.job.Results = nil
	} else {
		e.job.Status = StatusCompleted
		e.job.Results = res
	}
	job := e.job
	r.mu.Unlock()
	close(e.done)

	if err != nil {
		r.logger.Warn("job failed", "job", job.ID, "err", err)
		return
	}
	r.logger.Info("job completed", "job", job.ID, "outcomes", len(res.States), "elapsed", job.Finished.Sub(job.Submitted))
}

// Get returns the job if it exists and belongs to owner.
func (r *Runner) Get(owner, id string) (Job, error) {
	e, err := r.lookup(owner, id)
	if err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return e.job, nil
}

// Wait blocks until the job finishes or ctx ends.
func (r *Runner) Wait(ctx context.Context, owner, id string) (Job, error) {
	e, err := r.lookup(owner, id)
	if err != nil {
		return Job{}, err
	}
	select {
	case <-e.done:
		return r.Get(owner, id)
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

func (r *Runner) lookup(owner, id string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.jobs[id]
	if !ok || e.job.Owner != owner {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return e, nil
}

// Close stops accepting work, fails jobs still waiting for a slot and waits
// for running simulations to finish.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}
