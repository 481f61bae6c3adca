// Package work provides a bounded pool for offloading model calls so that
// HTTP handlers never spawn unbounded goroutines toward the LLM endpoint.
package work

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrPoolClosed is returned when work is submitted after Stop.
var ErrPoolClosed = errors.New("work: pool is closed")

// Task produces a string result, typically a model completion.
type Task func(ctx context.Context) (string, error)

// Result carries the outcome of a task.
type Result struct {
	Value string
	Err   error
}

type job struct {
	ctx  context.Context
	task Task
	out  chan Result
}

// Pool runs tasks on a fixed number of workers. Submit blocks while all
// workers are busy, providing natural backpressure.
type Pool struct {
	jobs    chan job
	stop    chan struct{}
	stopped chan struct{}
	workers int
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewPool creates a pool with the given number of workers. Workers start
// immediately and run until Stop is called.
func NewPool(workers int, log zerolog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}

	p := &Pool{
		jobs:    make(chan job),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
		workers: workers,
		log:     log.With().Str("component", "work_pool").Logger(),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	go func() {
		p.wg.Wait()
		close(p.stopped)
	}()

	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stop:
			return
		case j := <-p.jobs:
			p.execute(id, j)
		}
	}
}

func (p *Pool) execute(id int, j job) {
	if err := j.ctx.Err(); err != nil {
		j.out <- Result{Err: err}
		return
	}

	value, err := j.task(j.ctx)
	if err != nil {
		p.log.Debug().Err(err).Int("worker", id).Msg("Task failed")
	}
	j.out <- Result{Value: value, Err: err}
}

// Submit enqueues task and returns a channel that receives exactly one
// Result. The task runs with the caller's context, so cancellation is
// honored even while the job is waiting for a free worker.
func (p *Pool) Submit(ctx context.Context, task Task) (<-chan Result, error) {
	out := make(chan Result, 1)

	select {
	case <-p.stop:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case p.jobs <- job{ctx: ctx, task: task, out: out}:
		return out, nil
	}
}

// Run submits task and waits for its result, returning early if ctx is
// canceled while waiting.
func (p *Pool) Run(ctx context.Context, task Task) (string, error) {
	out, err := p.Submit(ctx, task)
	if err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-out:
		return res.Value, res.Err
	}
}

// Stop shuts the pool down and waits for workers to exit. In-flight tasks
// run to completion first.
func (p *Pool) Stop() {
	close(p.stop)
	<-p.stopped
}
