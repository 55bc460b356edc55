package handlers

import (
	"net/http"

	"ama/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIHandler serves the read views as JSON.
type APIHandler struct {
	ama    AMA
	logger *zap.Logger
}

func NewAPIHandler(ama AMA, logger *zap.Logger) *APIHandler {
	return &APIHandler{ama: ama, logger: logger}
}

func (h *APIHandler) fail(c *gin.Context, err error) {
	status, message := failureStatus(c, h.logger, err)
	c.JSON(status, gin.H{"error": message})
}

func (h *APIHandler) ListSessions(c *gin.Context) {
	day, err := utils.ParseDay(c.Query("date"), h.ama.Location(), h.ama.Today())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	sessions, err := h.ama.ListSessions(c.Request.Context(), day, c.Query("host"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":     utils.DayKey(day, h.ama.Location()),
		"sessions": sessions,
	})
}

func (h *APIHandler) GetSession(c *gin.Context) {
	session, err := h.ama.GetSessionDetail(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *APIHandler) GetQuestion(c *gin.Context) {
	ctx := c.Request.Context()
	question, err := h.ama.GetQuestion(ctx, c.Param("sessionId"), c.Param("questionId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	comments, err := h.ama.ListComments(ctx, question.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"question": question,
		"comments": comments,
	})
}

func (h *APIHandler) ListComments(c *gin.Context) {
	comments, err := h.ama.ListComments(c.Request.Context(), c.Param("questionId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
