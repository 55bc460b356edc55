package handlers

import (
	"net/http"

	apperrors "ama/internal/errors"
	"ama/internal/middleware"
	"ama/internal/models"

	"github.com/gin-gonic/gin"
)

// Thread shows a session with one question selected and its comments.
func (h *SessionHandler) Thread(c *gin.Context) {
	h.renderThread(c, http.StatusOK, gin.H{})
}

func (h *SessionHandler) renderThread(c *gin.Context, status int, data gin.H) {
	ctx := c.Request.Context()
	sessionID, questionID := c.Param("sessionId"), c.Param("questionId")

	session, err := h.ama.GetSessionDetail(ctx, sessionID)
	if err != nil {
		renderFailure(c, h.logger, err)
		return
	}

	question := findQuestion(session, questionID)
	if question == nil {
		renderFailure(c, h.logger, apperrors.QuestionNotFound())
		return
	}

	comments, err := h.ama.ListComments(ctx, questionID)
	if err != nil {
		renderFailure(c, h.logger, err)
		return
	}

	data["Session"] = session
	data["IsHost"] = isHost(c, session)
	data["Selected"] = question
	data["SelectedID"] = question.ID
	data["Comments"] = comments
	Render(c, status, "sessions/question.html", data)
}

func (h *SessionHandler) CreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	sessionID, questionID := c.Param("sessionId"), c.Param("questionId")

	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderThread(c, http.StatusBadRequest, gin.H{
			"Error":   msgCommentRequired,
			"Comment": form.Content,
		})
		return
	}

	if _, err := h.ama.AddComment(c.Request.Context(), user.ID, questionID, form.Content); err != nil {
		renderFailure(c, h.logger, err)
		return
	}

	c.Redirect(http.StatusFound, questionPath(sessionID, questionID))
}

func findQuestion(session *models.Session, id string) *models.Question {
	for i := range session.Questions {
		if session.Questions[i].ID == id {
			return &session.Questions[i]
		}
	}
	return nil
}
