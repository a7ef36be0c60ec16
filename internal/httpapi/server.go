// Package httpapi exposes exam generation and workflow evaluation over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/petrijr/quizforge/internal/exam"
	"github.com/petrijr/quizforge/internal/tracker"
	"github.com/petrijr/quizforge/pkg/api"
)

// EventWorkflowFinished is the event name of every /workflows/run answer.
const EventWorkflowFinished = "workflow_finished"

// DefaultBodyLimit is the request body cap used when Config.BodyLimit is
// empty.
const DefaultBodyLimit = "1M"

// Config describes the server. Provider and Model are reported by /health
// only.
type Config struct {
	Host     string
	Port     int
	Provider string
	Model    string

	// Metrics serves /metrics when set.
	Metrics http.Handler

	// BodyLimit caps request bodies, e.g. "1M". Defaults to DefaultBodyLimit.
	BodyLimit string

	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the HTTP surface of quizforge.
type Server struct {
	echo    *echo.Echo
	http    *http.Server
	service *exam.Service
	cfg     Config
	logger  *slog.Logger
}

// New builds a Server with its routes registered.
func New(service *exam.Service, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = DefaultBodyLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, service: service, cfg: cfg, logger: cfg.Logger}
	s.http = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "http_request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	e.POST("/workflows/run", s.runWorkflow)
	e.POST("/questions/generate", s.generateQuestion)
	e.GET("/workflows/interrupted", s.interrupted)
	e.GET("/evaluation/report", s.report)
	e.GET("/health", s.health)
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics))
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on Host:Port until Shutdown is called. It returns nil after
// a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http_server_started", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Interrupted lists the workflows that have not reached a terminal status.
func (s *Server) Interrupted() []api.Workflow {
	return s.service.Tracker().Interrupted()
}

type runResponse struct {
	Event      string  `json:"event"`
	Data       runData `json:"data"`
	WorkflowID string  `json:"workflow_id,omitempty"`
}

type runData struct {
	Outputs runOutputs `json:"outputs"`
}

type runOutputs struct {
	// Body is a JSON-encoded string on success and an error object on
	// failure.
	Body any `json:"body"`
}

func finished(body any, wfID string) runResponse {
	return runResponse{Event: EventWorkflowFinished, Data: runData{Outputs: runOutputs{Body: body}}, WorkflowID: wfID}
}

// bindMessage unwraps the message of an echo bind error.
func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func (s *Server) runWorkflow(c echo.Context) error {
	var req exam.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, finished(errorBody("invalid request body: "+bindMessage(err)), ""))
	}
	if len(req.Inputs) == 0 {
		return c.JSON(http.StatusBadRequest, finished(errorBody("request inputs are required"), ""))
	}

	ctx := c.Request().Context()
	out, err := s.service.Run(ctx, req)
	wfID := ""
	if out != nil {
		wfID = out.WorkflowID
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "workflow_failed", slog.String("workflow_id", wfID), slog.Any("error", err))
		status := http.StatusInternalServerError
		if exam.IsClientError(err) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, finished(errorBody(exam.FriendlyMessage(err)), wfID))
	}

	body, err := json.Marshal(map[string]string{"message": out.Render.Message})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, finished(string(body), wfID))
}

type questionRequest struct {
	Kind       string `json:"kind"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Reference  string `json:"reference"`
}

func (s *Server) generateQuestion(c echo.Context) error {
	var req questionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, statusError("invalid request body: "+bindMessage(err)))
	}
	kind, err := api.ParseQuestionKind(req.Kind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, statusError(err.Error()))
	}
	spec := api.QuestionSpec{Kind: kind, Topic: req.Topic, Reference: req.Reference}
	if req.Difficulty != "" {
		if spec.Difficulty, err = api.ParseDifficulty(req.Difficulty); err != nil {
			return c.JSON(http.StatusBadRequest, statusError(err.Error()))
		}
	}
	if spec.Topic == "" {
		spec.Topic = "general"
	}

	text, wfID, err := s.service.GenerateQuestion(c.Request().Context(), spec)
	if err != nil {
		status := http.StatusInternalServerError
		if exam.IsClientError(err) {
			status = http.StatusBadRequest
		}
		resp := statusError(exam.FriendlyMessage(err))
		resp["workflow_id"] = wfID
		return c.JSON(status, resp)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "success",
		"workflow_id": wfID,
		"question":    text,
	})
}

func statusError(msg string) map[string]any {
	return map[string]any{"status": "error", "message": msg}
}

func (s *Server) report(c echo.Context) error {
	t := s.service.Tracker()
	if id := c.QueryParam("workflow_id"); id != "" {
		rep, err := t.Report(id)
		if errors.Is(err, tracker.ErrWorkflowNotFound) {
			return c.JSON(http.StatusNotFound, statusError("workflow "+id+" not found"))
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{"status": "success", "report": rep})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "report": t.Reports()})
}

func (s *Server) interrupted(c echo.Context) error {
	wfs := s.service.Tracker().Interrupted()
	if wfs == nil {
		wfs = []api.Workflow{}
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "workflows": wfs})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.cfg.Now().UTC().Format(time.RFC3339),
		"server_config": map[string]any{
			"host": s.cfg.Host,
			"port": s.cfg.Port,
		},
		"generation": map[string]any{
			"provider": s.cfg.Provider,
			"model":    s.cfg.Model,
		},
	})
}
