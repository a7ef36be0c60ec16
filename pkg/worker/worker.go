package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/petrijr/quizforge/internal/taskqueue"
)

// Handler executes one task.
type Handler func(ctx context.Context, task *taskqueue.Task) error

// Config tunes a Worker.
type Config struct {
	// Concurrency is the number of goroutines Run uses. Values <= 0 mean 1.
	Concurrency int

	// Logger receives handler failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// TaskError wraps a handler failure with the task that caused it.
type TaskError struct {
	Task taskqueue.Task
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s-%d: %v", e.Task.Batch, e.Task.Index, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Worker pulls tasks from a Queue and hands them to a Handler.
type Worker struct {
	queue   taskqueue.Queue
	handler Handler
	cfg     Config
}

// New creates a Worker with a single goroutine.
func New(queue taskqueue.Queue, handler Handler) *Worker {
	return NewWithConfig(queue, handler, Config{})
}

// NewWithConfig creates a Worker with the given configuration.
func NewWithConfig(queue taskqueue.Queue, handler Handler, cfg Config) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Worker{queue: queue, handler: handler, cfg: cfg}
}

// Concurrency returns the number of goroutines Run starts.
func (w *Worker) Concurrency() int {
	return w.cfg.Concurrency
}

// ProcessOne pulls a single task from the queue and processes it.
// Returns (processed, error):
//   - processed == false: no task was obtained; err is the dequeue error
//     (context cancellation or taskqueue.ErrQueueClosed).
//   - processed == true: a task was processed; err is the handler's result.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	task, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}

	switch task.Type {
	case taskqueue.TaskTypeGenerateQuestion:
		if err := w.handler(ctx, task); err != nil {
			return true, &TaskError{Task: *task, Err: err}
		}
		return true, nil
	default:
		// Unknown task type; mark as processed but return an error so this isn't silently ignored.
		return true, errors.New("unknown task type: " + string(task.Type))
	}
}

// Run processes tasks with Concurrency goroutines until the queue is closed
// and drained, or ctx is done. Handler errors are logged and do not stop the
// loop. Run returns ctx.Err() when it stopped because of ctx, nil otherwise.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()
	return ctx.Err()
}

func (w *Worker) loop(ctx context.Context) {
	for {
		processed, err := w.ProcessOne(ctx)
		if !processed {
			// Closed queue or cancelled context; either way this goroutine is done.
			return
		}
		if err != nil {
			attrs := []any{slog.Any("error", err)}
			var te *TaskError
			if errors.As(err, &te) {
				attrs = append(attrs, slog.String("batch", te.Task.Batch), slog.Int("index", te.Task.Index))
			}
			w.cfg.Logger.ErrorContext(ctx, "task_failed", attrs...)
		}
	}
}
