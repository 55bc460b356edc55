package handlers

import (
	"context"
	"net/http"
	"time"

	"ama/internal/middleware"
	"ama/internal/models"
	"ama/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionListTTL = 30 * time.Second

// AMA is the domain surface the page and API handlers depend on.
type AMA interface {
	Location() *time.Location
	Today() time.Time
	ListSessions(ctx context.Context, date time.Time, hostID string) ([]models.Session, error)
	GetSessionDetail(ctx context.Context, id string) (*models.Session, error)
	RecentSessions(ctx context.Context, limit int) ([]models.Session, error)
	StartSession(ctx context.Context, hostID, content string) (*models.Session, error)
	AddQuestion(ctx context.Context, askerID, sessionID, content string) (*models.Question, error)
	AnswerQuestion(ctx context.Context, hostID, questionID, answer string) (*models.Question, error)
	GetQuestion(ctx context.Context, sessionID, questionID string) (*models.Question, error)
	AddComment(ctx context.Context, authorID, questionID, content string) (*models.Comment, error)
	ListComments(ctx context.Context, questionID string) ([]models.Comment, error)
}

type SessionHandler struct {
	ama    AMA
	cache  *utils.PageCache
	logger *zap.Logger
}

// NewSessionHandler wires the session pages. cache may be nil.
func NewSessionHandler(ama AMA, cache *utils.PageCache, logger *zap.Logger) *SessionHandler {
	registerValidators()
	return &SessionHandler{ama: ama, cache: cache, logger: logger}
}

func (h *SessionHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/sessions")
}

// listSessions serves a day's list from the page cache when possible.
func (h *SessionHandler) listSessions(ctx context.Context, day time.Time) ([]models.Session, error) {
	key := "sessions:" + utils.DayKey(day, h.ama.Location())
	if h.cache != nil {
		if cached, ok := h.cache.Get(key).([]models.Session); ok {
			return cached, nil
		}
	}

	sessions, err := h.ama.ListSessions(ctx, day, "")
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		h.cache.Set(key, sessions, sessionListTTL)
	}
	return sessions, nil
}

// invalidate drops cached lists after a write that changes them.
func (h *SessionHandler) invalidate() {
	if h.cache != nil {
		h.cache.Purge()
	}
}

// Index lists the sessions of a day, today unless ?date=YYYY-MM-DD is given.
func (h *SessionHandler) Index(c *gin.Context) {
	day, err := utils.ParseDay(c.Query("date"), h.ama.Location(), h.ama.Today())
	if err != nil {
		RenderError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	sessions, err := h.listSessions(c.Request.Context(), day)
	if err != nil {
		renderFailure(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if len(sessions) == 0 {
		status = http.StatusNotFound
	}
	Render(c, status, "sessions/index.html", gin.H{
		"Sessions": sessions,
		"Day":      day,
	})
}

func (h *SessionHandler) ShowNew(c *gin.Context) {
	Render(c, http.StatusOK, "sessions/new.html", nil)
}

func (h *SessionHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form startSessionForm
	if err := c.ShouldBind(&form); err != nil {
		Render(c, http.StatusBadRequest, "sessions/new.html", gin.H{
			"Error":   msgContentTooShort,
			"Content": form.Content,
		})
		return
	}

	session, err := h.ama.StartSession(c.Request.Context(), user.ID, form.Content)
	if err != nil {
		status, message := failureStatus(c, h.logger, err)
		Render(c, status, "sessions/new.html", gin.H{
			"Error":   message,
			"Content": form.Content,
		})
		return
	}

	h.invalidate()
	c.Redirect(http.StatusFound, "/sessions/"+session.ID)
}

func (h *SessionHandler) Detail(c *gin.Context) {
	h.renderDetail(c, http.StatusOK, c.Param("sessionId"), gin.H{})
}

// renderDetail loads the session and renders its page with extra data.
func (h *SessionHandler) renderDetail(c *gin.Context, status int, sessionID string, data gin.H) {
	session, err := h.ama.GetSessionDetail(c.Request.Context(), sessionID)
	if err != nil {
		renderFailure(c, h.logger, err)
		return
	}
	data["Session"] = session
	data["IsHost"] = isHost(c, session)
	data["SelectedID"] = ""
	Render(c, status, "sessions/detail.html", data)
}

// Action handles both forms on the session page. A submitted
// answer_to_question field marks an answer, anything else is a new question.
func (h *SessionHandler) Action(c *gin.Context) {
	if c.PostForm("answer_to_question") != "" {
		h.answer(c)
		return
	}
	h.ask(c)
}

func (h *SessionHandler) ask(c *gin.Context) {
	user := middleware.CurrentUser(c)
	sessionID := c.Param("sessionId")

	var form askForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderDetail(c, http.StatusBadRequest, sessionID, gin.H{
			"Error":    msgQuestionRequired,
			"Question": form.Content,
		})
		return
	}

	question, err := h.ama.AddQuestion(c.Request.Context(), user.ID, sessionID, form.Content)
	if err != nil {
		h.renderDetailFailure(c, sessionID, err, gin.H{"Question": form.Content})
		return
	}

	h.invalidate()
	c.Redirect(http.StatusFound, questionPath(sessionID, question.ID))
}

func (h *SessionHandler) answer(c *gin.Context) {
	user := middleware.CurrentUser(c)
	sessionID := c.Param("sessionId")

	var form answerForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderDetail(c, http.StatusBadRequest, sessionID, gin.H{
			"Error":          msgAnswerRequired,
			"AnswerQuestion": c.PostForm("answer_to_question"),
		})
		return
	}

	ctx := c.Request.Context()
	// the question has to belong to the session in the URL
	if _, err := h.ama.GetQuestion(ctx, sessionID, form.QuestionID); err != nil {
		h.renderDetailFailure(c, sessionID, err, gin.H{"AnswerQuestion": form.QuestionID})
		return
	}

	if _, err := h.ama.AnswerQuestion(ctx, user.ID, form.QuestionID, form.Answer); err != nil {
		h.renderDetailFailure(c, sessionID, err, gin.H{"AnswerQuestion": form.QuestionID})
		return
	}

	c.Redirect(http.StatusFound, questionPath(sessionID, form.QuestionID))
}

// renderDetailFailure shows a not-found page, or the session page with the
// rejection message for every other failure.
func (h *SessionHandler) renderDetailFailure(c *gin.Context, sessionID string, err error, data gin.H) {
	status, message := failureStatus(c, h.logger, err)
	if status == http.StatusNotFound || status >= http.StatusInternalServerError {
		RenderError(c, status, message)
		return
	}
	data["Error"] = message
	h.renderDetail(c, status, sessionID, data)
}

func isHost(c *gin.Context, session *models.Session) bool {
	user := middleware.CurrentUser(c)
	return user != nil && user.ID == session.UserID
}

func questionPath(sessionID, questionID string) string {
	return "/sessions/" + sessionID + "/questions/" + questionID
}
