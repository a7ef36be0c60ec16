package exam

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/petrijr/quizforge/internal/examdoc"
	"github.com/petrijr/quizforge/internal/invoker"
	"github.com/petrijr/quizforge/pkg/api"
)

// FriendlyMessage turns err into a message suitable for end users.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	lower := strings.ToLower(msg)

	var sc invoker.StatusCoder
	status := 0
	if errors.As(err, &sc) {
		status = sc.HTTPStatus()
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(msg, "AccessDenied"):
		return "Model access denied, check the API credentials and model permissions"
	case errors.Is(err, ErrInvalidRequest):
		return "Invalid request: " + msg
	case status == http.StatusBadRequest || strings.Contains(msg, "ValidationException"):
		return "Model request validation failed, check the request parameters"
	case invoker.IsThrottledExhaustion(err) || invoker.Classify(err) == api.ClassThrottled:
		return "Model requests are being throttled, try again later"
	case status == http.StatusServiceUnavailable || strings.Contains(msg, "ServiceUnavailable"):
		return "Model service unavailable, try again later"
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(lower, "timeout"):
		return "Model request timed out, try again later"
	case errors.Is(err, examdoc.ErrStructuralValidation):
		return "The generated exam did not pass structural validation: " + msg
	}
	return "Exam generation failed: " + msg
}
