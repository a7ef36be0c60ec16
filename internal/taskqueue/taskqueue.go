// Package taskqueue holds the queue that feeds generation tasks to workers.
package taskqueue

import (
	"context"
	"errors"
	"time"

	"github.com/petrijr/quizforge/pkg/api"
)

// TaskType identifies what the worker should do.
type TaskType string

const (
	TaskTypeGenerateQuestion TaskType = "generate-question"
)

// ErrQueueClosed is returned by Dequeue once a closed queue is drained, and
// by Enqueue on a closed queue.
var ErrQueueClosed = errors.New("task queue closed")

// Task represents a unit of work for a worker.
type Task struct {
	ID   string
	Type TaskType

	// Batch identifies the dispatch the task belongs to; Index is the
	// task's position in that dispatch.
	Batch string
	Index int

	Spec api.QuestionSpec

	EnqueuedAt time.Time
}

// Queue is a simple async task queue interface.
type Queue interface {
	// Enqueue adds a task to the queue. It should respect ctx for cancellation.
	Enqueue(ctx context.Context, t Task) error

	// Dequeue removes and returns the next task, blocking until one is available,
	// the queue is closed and drained, or the context is cancelled.
	Dequeue(ctx context.Context) (*Task, error)

	// Len returns the approximate number of tasks queued.
	Len() int
}
