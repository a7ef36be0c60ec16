// Package worker provides the bounded worker pool that executes question
// generation tasks.
//
// A Worker consumes tasks from a taskqueue.Queue and hands each one to a
// Handler. Run starts Config.Concurrency goroutines that keep pulling tasks
// until the queue is closed and drained, which bounds the number of tasks in
// flight regardless of how many were enqueued.
//
// # Usage
//
// The dispatcher enqueues one task per question, closes the queue and calls
// Run:
//
//	q := taskqueue.NewInMemoryQueue(len(specs))
//	for i, spec := range specs {
//		_ = q.Enqueue(ctx, taskqueue.Task{Type: taskqueue.TaskTypeGenerateQuestion, Index: i, Spec: spec})
//	}
//	q.Close()
//	w := worker.NewWithConfig(q, handle, worker.Config{Concurrency: 3})
//	_ = w.Run(ctx)
//
// Handler failures are logged with the batch and index of the failing task
// and do not stop the pool.
package worker
