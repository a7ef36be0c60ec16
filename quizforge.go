package quizforge

import (
	"github.com/petrijr/quizforge/internal/examdoc"
	"github.com/petrijr/quizforge/internal/generation"
	"github.com/petrijr/quizforge/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	QuestionSpec         = api.QuestionSpec
	QuestionKind         = api.QuestionKind
	Difficulty           = api.Difficulty
	Workflow             = api.Workflow
	Step                 = api.Step
	ToolCall             = api.ToolCall
	WorkflowStatus       = api.WorkflowStatus
	WorkflowReport       = api.WorkflowReport
	Generator            = api.Generator
	GeneratorFunc        = api.GeneratorFunc
	GenerationRequest    = api.GenerationRequest
	Message              = api.Message
	ErrorClass           = api.ErrorClass
	BackoffFunc          = api.BackoffFunc
	RetryPolicy          = api.RetryPolicy
	ProgressEvent        = api.ProgressEvent
	ProgressFunc         = api.ProgressFunc
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver

	// ValidationResult is the outcome of Validate.
	ValidationResult = examdoc.Result
)

// Re-export common helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	ParseQuestionKind    = api.ParseQuestionKind
	ParseDifficulty      = api.ParseDifficulty
	WithProgress         = api.WithProgress
	DefaultBackoff       = api.DefaultBackoff
	Permanent            = api.Permanent
)

// Re-export enumerations for convenience.

const (
	KindSingleChoice   = api.KindSingleChoice
	KindMultipleChoice = api.KindMultipleChoice
	KindFillBlank      = api.KindFillBlank

	DifficultyEasy   = api.DifficultyEasy
	DifficultyMedium = api.DifficultyMedium
	DifficultyHard   = api.DifficultyHard

	WorkflowRunning   = api.WorkflowRunning
	WorkflowCompleted = api.WorkflowCompleted
	WorkflowFailed    = api.WorkflowFailed

	ClassThrottled = api.ClassThrottled
	ClassOther     = api.ClassOther
)

// Validate checks an exam document against the block grammar, repairing it
// once if needed. The result reflects the final outcome.
func Validate(doc string) ValidationResult {
	return examdoc.Validate(doc)
}

// Placeholder returns the deterministic, always valid fallback block for spec.
func Placeholder(spec QuestionSpec) string {
	return examdoc.Placeholder(spec)
}

// Prompt returns the user prompt sent to the generation service for spec.
func Prompt(spec QuestionSpec) string {
	return generation.Prompt(spec)
}
