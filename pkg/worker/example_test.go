package worker_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/petrijr/quizforge/internal/taskqueue"
	"github.com/petrijr/quizforge/pkg/api"
	"github.com/petrijr/quizforge/pkg/worker"
)

// ExampleWorker demonstrates draining a closed queue with a bounded pool.
func ExampleWorker() {
	ctx := context.Background()
	topics := []string{"fractions", "decimals", "percentages"}

	queue := taskqueue.NewInMemoryQueue(len(topics))
	for i, topic := range topics {
		_ = queue.Enqueue(ctx, taskqueue.Task{
			Type:  taskqueue.TaskTypeGenerateQuestion,
			Index: i,
			Spec:  api.QuestionSpec{Kind: api.KindSingleChoice, Topic: topic},
		})
	}
	queue.Close()

	var mu sync.Mutex
	results := make([]string, len(topics))
	w := worker.NewWithConfig(queue, func(ctx context.Context, task *taskqueue.Task) error {
		mu.Lock()
		defer mu.Unlock()
		results[task.Index] = "question about " + task.Spec.Topic
		return nil
	}, worker.Config{Concurrency: 2})

	if err := w.Run(ctx); err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, r := range results {
		fmt.Println(r)
	}
	// Output:
	// question about fractions
	// question about decimals
	// question about percentages
}
