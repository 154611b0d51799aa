package tasksvc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gopkg.in/tomb.v2"

	"github.com/trezcool/academia/core"
)

var (
	ErrQueueFull = errors.New("task queue is full")
	ErrStopped   = errors.New("task runner is stopped")

	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "academia_tasks_total",
			Help: "Background tasks run, by name and status.",
		},
		[]string{"name", "status"},
	)
	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "academia_task_duration_seconds",
			Help:    "Duration of the background tasks.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"name"},
	)
)

type job struct {
	id   string
	name string
	task core.Task
}

// Runner runs the queued tasks on a fixed pool of workers.
type Runner struct {
	t       tomb.Tomb
	queue   chan job
	workers int
	logger  core.Logger
}

var _ core.TaskQueue = (*Runner)(nil)

func NewRunner(conf core.TasksConfig, logger core.Logger) *Runner {
	workers := conf.Workers
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		queue:   make(chan job, conf.QueueSize),
		workers: workers,
		logger:  logger,
	}
}

// Start launches the workers. They stop once Stop is called.
func (r *Runner) Start() {
	for i := 0; i < r.workers; i++ {
		r.t.Go(r.work)
	}
}

func (r *Runner) work() error {
	ctx := r.t.Context(nil)
	for {
		select {
		case <-r.t.Dying():
			return nil
		case j := <-r.queue:
			r.run(ctx, j)
		}
	}
}

func (r *Runner) run(ctx context.Context, j job) {
	start := time.Now()
	defer func() {
		taskDuration.WithLabelValues(j.name).Observe(time.Since(start).Seconds())
		if rec := recover(); rec != nil {
			tasksTotal.WithLabelValues(j.name, "panic").Inc()
			r.logger.Error(fmt.Sprintf("task %s panicked: %v", j.name, rec), map[string]interface{}{"task_id": j.id})
		}
	}()

	if err := j.task(ctx); err != nil {
		tasksTotal.WithLabelValues(j.name, "error").Inc()
		r.logger.Error(fmt.Sprintf("task %s failed", j.name), err, map[string]interface{}{"task_id": j.id})
		return
	}
	tasksTotal.WithLabelValues(j.name, "success").Inc()
}

// Enqueue does not block: it fails when the queue is full.
func (r *Runner) Enqueue(name string, task core.Task) error {
	if !r.t.Alive() {
		return ErrStopped
	}
	j := job{id: uuid.New().String(), name: name, task: task}
	select {
	case r.queue <- j:
		r.logger.Debug(fmt.Sprintf("task %s queued", name), map[string]interface{}{"task_id": j.id})
		return nil
	default:
		return errors.Wrap(ErrQueueFull, name)
	}
}

// Stop asks the workers to stop and waits for the running tasks, until ctx is done.
func (r *Runner) Stop(ctx context.Context) error {
	r.t.Kill(nil)
	done := make(chan error, 1)
	go func() { done <- r.t.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "stopping task runner")
	}
}

// SyncQueue runs the tasks as soon as they are queued, in the caller goroutine.
// It is used by the admin commands and the tests.
type SyncQueue struct {
	ctx    context.Context
	logger core.Logger
}

var _ core.TaskQueue = (*SyncQueue)(nil)

func NewSyncQueue(ctx context.Context, logger core.Logger) *SyncQueue {
	return &SyncQueue{ctx: ctx, logger: logger}
}

func (q *SyncQueue) Enqueue(name string, task core.Task) error {
	if err := task(q.ctx); err != nil {
		q.logger.Error(fmt.Sprintf("task %s failed", name), err)
		return err
	}
	return nil
}
