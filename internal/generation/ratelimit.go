package generation

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/petrijr/quizforge/pkg/api"
)

// RateLimited returns a Generator that waits on limiter before every call to
// gen. A nil limiter returns gen unchanged.
func RateLimited(gen api.Generator, limiter *rate.Limiter) api.Generator {
	if limiter == nil {
		return gen
	}
	return api.GeneratorFunc(func(ctx context.Context, req api.GenerationRequest) (string, error) {
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
		return gen.Generate(ctx, req)
	})
}
