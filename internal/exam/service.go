// Package exam orchestrates end-to-end exam generation: request metadata,
// reference material, content planning, parallel question generation,
// structural validation and rendering, all recorded as one tracked workflow.
package exam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/petrijr/quizforge/internal/examdoc"
	"github.com/petrijr/quizforge/internal/render"
	"github.com/petrijr/quizforge/internal/tracker"
	"github.com/petrijr/quizforge/pkg/api"
)

const (
	WorkflowName         = "exam generation"
	QuestionWorkflowName = "question generation"
)

// Step names of the exam workflow, in order.
const (
	StepExtractMetadata   = "extract metadata"
	StepProcessReference  = "process reference"
	StepPlanContent       = "plan content"
	StepGenerateQuestions = "generate questions"
	StepValidateDocument  = "validate document"
	StepRenderDocument    = "render document"
	StepGenerateQuestion  = "generate question"
)

// Dispatcher generates question blocks.
type Dispatcher interface {
	Dispatch(ctx context.Context, specs []api.QuestionSpec) []string
	GenerateOne(ctx context.Context, spec api.QuestionSpec) (string, error)
}

// ReferenceProcessor resolves reference material.
type ReferenceProcessor interface {
	Process(ctx context.Context, ref string) string
}

// Request is one exam generation request.
type Request struct {
	Inputs map[string]any `json:"inputs"`
}

// Outcome is the result of a successful Run.
type Outcome struct {
	WorkflowID string        `json:"workflow_id"`
	Metadata   Metadata      `json:"metadata"`
	Plan       Plan          `json:"plan"`
	Document   string        `json:"document"`
	Repaired   bool          `json:"repaired"`
	Render     render.Result `json:"render"`
}

// Service runs exam workflows.
type Service struct {
	tracker    *tracker.Tracker
	dispatcher Dispatcher
	references ReferenceProcessor
	renderer   render.Renderer
	defaults   Defaults
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithDefaults(d Defaults) Option {
	return func(s *Service) { s.defaults = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService wires a Service. references may be nil, in which case
// references are used verbatim.
func NewService(t *tracker.Tracker, d Dispatcher, refs ReferenceProcessor, r render.Renderer, opts ...Option) *Service {
	s := &Service{
		tracker:    t,
		dispatcher: d,
		references: refs,
		renderer:   r,
		defaults:   StandardDefaults,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tracker returns the tracker the service records into.
func (s *Service) Tracker() *tracker.Tracker {
	return s.tracker
}

// runStep records fn as a step of workflow wfID. A failing step also fails
// the workflow.
func runStep[T any](s *Service, wfID, name string, input any, fn func(stepID string) (T, error)) (T, error) {
	stepID := s.tracker.AddStep(wfID, name, "")
	s.tracker.StartStep(wfID, stepID, input)

	out, err := fn(stepID)
	if err != nil {
		s.tracker.FailStep(wfID, stepID, err)
		s.tracker.FailWorkflow(wfID, err)
		return out, err
	}
	s.tracker.CompleteStep(wfID, stepID, out)
	return out, nil
}

// Run generates, validates and renders one exam.
func (s *Service) Run(ctx context.Context, req Request) (*Outcome, error) {
	wfID := s.tracker.StartWorkflow(WorkflowName, "generate an exam document from a request", req.Inputs)
	log := s.logger.With(slog.String("workflow_id", wfID))
	out := &Outcome{WorkflowID: wfID}

	md, err := runStep(s, wfID, StepExtractMetadata, req.Inputs, func(string) (Metadata, error) {
		return s.defaults.Extract(req.Inputs)
	})
	if err != nil {
		return out, err
	}
	out.Metadata = md

	ref, err := runStep(s, wfID, StepProcessReference, md.Reference, func(string) (string, error) {
		return s.processReference(ctx, md.Reference), nil
	})
	if err != nil {
		return out, err
	}

	plan, err := runStep(s, wfID, StepPlanContent, md, func(string) (Plan, error) {
		return PlanContent(md, ref), nil
	})
	if err != nil {
		return out, err
	}
	out.Plan = plan
	log.InfoContext(ctx, "exam_planned", slog.String("plan", plan.Summary), slog.Int("questions", len(plan.Specs)))

	doc, err := runStep(s, wfID, StepGenerateQuestions, plan.Specs, func(stepID string) (string, error) {
		adapter := tracker.NewAdapter(s.tracker, wfID, stepID, tracker.WithConcurrentCalls(), tracker.WithAdapterLogger(log))
		blocks := s.dispatcher.Dispatch(api.WithProgress(ctx, adapter.Handle), plan.Specs)
		return strings.Join(blocks, "\n\n"), nil
	})
	if err != nil {
		return out, err
	}

	res, err := runStep(s, wfID, StepValidateDocument, nil, func(string) (examdoc.Result, error) {
		res := examdoc.Validate(doc)
		if res.Repaired {
			log.WarnContext(ctx, "exam_document_repaired", slog.Int("issues", len(res.InitialIssues)))
		}
		return res, res.Err()
	})
	if err != nil {
		log.ErrorContext(ctx, "exam_validation_failed", slog.Any("error", err))
		return out, err
	}
	out.Document = res.Document
	out.Repaired = res.Repaired

	rendered, err := runStep(s, wfID, StepRenderDocument, nil, func(string) (render.Result, error) {
		return s.renderer.Render(ctx, res.Document)
	})
	if err != nil {
		return out, err
	}
	out.Render = rendered

	s.tracker.SettleToolCalls(wfID, tracker.AutoCompletedOutput)
	s.tracker.CompleteWorkflow(wfID, map[string]any{
		"message": rendered.Message,
		"url":     rendered.URL,
	})
	return out, nil
}

func (s *Service) processReference(ctx context.Context, ref string) string {
	if s.references == nil {
		return strings.TrimSpace(ref)
	}
	return s.references.Process(ctx, ref)
}

// GenerateQuestion generates a single question in its own tracked workflow.
// Unlike Run, a failed generation is not replaced by a placeholder: the step
// and workflow fail and the error is returned.
func (s *Service) GenerateQuestion(ctx context.Context, spec api.QuestionSpec) (string, string, error) {
	if !spec.Kind.Valid() {
		return "", "", fmt.Errorf("%w: unknown question kind %q", ErrInvalidRequest, spec.Kind)
	}
	if spec.Difficulty == "" {
		spec.Difficulty = s.defaults.Difficulty
	}

	wfID := s.tracker.StartWorkflow(QuestionWorkflowName, "generate a single question", spec)
	spec.Reference = s.processReference(ctx, spec.Reference)

	text, err := runStep(s, wfID, StepGenerateQuestion, spec, func(stepID string) (string, error) {
		callID := s.tracker.RecordToolCall(wfID, stepID, spec.Kind.ToolName(), spec)
		text, err := s.dispatcher.GenerateOne(ctx, spec)
		if err != nil {
			s.tracker.FailToolCall(wfID, stepID, callID, err)
			return "", err
		}
		s.tracker.CompleteToolCall(wfID, stepID, callID, text)
		return text, nil
	})
	if err != nil {
		return "", wfID, err
	}
	s.tracker.CompleteWorkflow(wfID, text)
	return text, wfID, nil
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}
