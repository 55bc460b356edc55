package handlers

import (
	"net/http"

	apperrors "ama/internal/errors"
	"ama/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const unexpectedErrorMessage = "An unexpected error occurred"

type failure struct {
	status  int
	message string
}

// failures maps domain error kinds to what the visitor sees.
var failures = map[apperrors.ErrorCode]failure{
	apperrors.ErrCodeAlreadyRunning:    {http.StatusBadRequest, "You already have a session running."},
	apperrors.ErrCodeDuplicateQuestion: {http.StatusBadRequest, "You already asked this question in this session."},
	apperrors.ErrCodeHostCannotAsk:     {http.StatusBadRequest, "Hosts can not ask questions in their own session."},
	apperrors.ErrCodeNotSessionAuthor:  {http.StatusForbidden, "Only the session host can answer questions."},
	apperrors.ErrCodeQuestionNotFound:  {http.StatusNotFound, "Question not found"},
	apperrors.ErrCodeSessionNotFound:   {http.StatusNotFound, "Session not found"},
	apperrors.ErrCodeRateLimited:       {http.StatusTooManyRequests, "Too many requests, slow down."},
}

// describeError returns the status and message for err. Validation, auth and
// conflict errors carry their own message.
func describeError(err error) (int, string) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError, unexpectedErrorMessage
	}
	if f, ok := failures[appErr.Code]; ok {
		return f.status, f.message
	}
	switch appErr.Code {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest, appErr.Message
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized, appErr.Message
	case apperrors.ErrCodeConflict:
		return http.StatusConflict, appErr.Message
	}
	return http.StatusInternalServerError, unexpectedErrorMessage
}

// failureStatus resolves err and logs it when it is the server's fault.
func failureStatus(c *gin.Context, logger *zap.Logger, err error) (int, string) {
	status, message := describeError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	return status, message
}

// Render injects the signed-in user and current path into every page.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message, "Status": code})
}

// renderFailure renders the error page for a failed domain call.
func renderFailure(c *gin.Context, logger *zap.Logger, err error) {
	status, message := failureStatus(c, logger, err)
	RenderError(c, status, message)
}

// NotFound renders the 404 page for unmatched routes.
func NotFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, "Page not found")
}
