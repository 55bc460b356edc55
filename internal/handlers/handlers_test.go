package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	apperrors "ama/internal/errors"
	"ama/internal/middleware"
	"ama/internal/models"
	"ama/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testToday = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

// stubAMA returns canned values and counts the write calls it receives.
type stubAMA struct {
	sessions []models.Session
	session  *models.Session
	comments []models.Comment

	listErr    error
	startErr   error
	askErr     error
	answerErr  error
	commentErr error

	calls map[string]int
}

func newStubAMA() *stubAMA {
	return &stubAMA{calls: map[string]int{}}
}

func (s *stubAMA) Location() *time.Location { return time.UTC }
func (s *stubAMA) Today() time.Time         { return testToday }

func (s *stubAMA) ListSessions(_ context.Context, _ time.Time, _ string) ([]models.Session, error) {
	s.calls["ListSessions"]++
	return s.sessions, s.listErr
}

func (s *stubAMA) GetSessionDetail(_ context.Context, id string) (*models.Session, error) {
	if s.session == nil || s.session.ID != id {
		return nil, apperrors.SessionNotFound()
	}
	return s.session, nil
}

func (s *stubAMA) RecentSessions(_ context.Context, _ int) ([]models.Session, error) {
	return s.sessions, nil
}

func (s *stubAMA) StartSession(_ context.Context, hostID, content string) (*models.Session, error) {
	s.calls["StartSession"]++
	if s.startErr != nil {
		return nil, s.startErr
	}
	return &models.Session{ID: "new-session", UserID: hostID, Content: content}, nil
}

func (s *stubAMA) AddQuestion(_ context.Context, askerID, sessionID, content string) (*models.Question, error) {
	s.calls["AddQuestion"]++
	if s.askErr != nil {
		return nil, s.askErr
	}
	return &models.Question{ID: "new-question", SessionID: sessionID, UserID: askerID, Content: content}, nil
}

func (s *stubAMA) AnswerQuestion(_ context.Context, _, questionID, answer string) (*models.Question, error) {
	s.calls["AnswerQuestion"]++
	if s.answerErr != nil {
		return nil, s.answerErr
	}
	return &models.Question{ID: questionID, Answer: &answer}, nil
}

func (s *stubAMA) GetQuestion(_ context.Context, sessionID, questionID string) (*models.Question, error) {
	if s.session == nil || s.session.ID != sessionID {
		return nil, apperrors.QuestionNotFound()
	}
	if q := findQuestion(s.session, questionID); q != nil {
		return q, nil
	}
	return nil, apperrors.QuestionNotFound()
}

func (s *stubAMA) AddComment(_ context.Context, authorID, questionID, content string) (*models.Comment, error) {
	s.calls["AddComment"]++
	if s.commentErr != nil {
		return nil, s.commentErr
	}
	return &models.Comment{ID: "new-comment", QuestionID: questionID, UserID: authorID, Content: content}, nil
}

func (s *stubAMA) ListComments(_ context.Context, _ string) ([]models.Comment, error) {
	return s.comments, nil
}

var (
	alice = &models.User{ID: "alice-id", Name: "alice"}
	bob   = &models.User{ID: "bob-id", Name: "bob"}
)

func sampleSession() *models.Session {
	return &models.Session{
		ID:        "s1",
		UserID:    alice.ID,
		User:      *alice,
		Content:   "Ask me about gardening",
		Day:       "2024-02-01",
		CreatedAt: testToday,
		UpdatedAt: testToday,
		Questions: []models.Question{{
			ID:        "q1",
			SessionID: "s1",
			UserID:    bob.ID,
			User:      *bob,
			Content:   "What is your favorite color",
			CreatedAt: testToday,
			UpdatedAt: testToday,
		}},
	}
}

// newPageEngine mounts the page handlers with the real templates. user, when
// set, is treated as signed in.
func newPageEngine(t *testing.T, ama AMA, user *models.User) *gin.Engine {
	t.Helper()
	renderer, err := LoadTemplates("../../web/templates", time.UTC)
	require.NoError(t, err)

	r := gin.New()
	r.HTMLRender = renderer
	r.Use(sessions.Sessions("ama_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.CurrentUserKey, user)
		}
		c.Next()
	})

	h := NewSessionHandler(ama, nil, zap.NewNop())
	r.GET("/sessions", h.Index)
	r.GET("/sessions/new", h.ShowNew)
	r.POST("/sessions/new", h.Create)
	r.GET("/sessions/:sessionId", h.Detail)
	r.POST("/sessions/:sessionId", h.Action)
	r.GET("/sessions/:sessionId/questions/:questionId", h.Thread)
	r.POST("/sessions/:sessionId/questions/:questionId", h.CreateComment)
	r.NoRoute(NotFound)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(r http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLoadTemplates(t *testing.T) {
	_, err := LoadTemplates("../../web/templates", time.UTC)
	require.NoError(t, err)

	_, err = LoadTemplates(t.TempDir(), time.UTC)
	assert.Error(t, err)
}

func TestSessionIndex(t *testing.T) {
	t.Run("empty day renders the call to action with 404", func(t *testing.T) {
		ama := newStubAMA()
		rec := get(newPageEngine(t, ama, nil), "/sessions")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "No sessions found")
		assert.Contains(t, rec.Body.String(), "Start AMA session!")
	})

	t.Run("lists sessions of the day", func(t *testing.T) {
		ama := newStubAMA()
		s := sampleSession()
		s.QuestionCount = 1
		ama.sessions = []models.Session{*s}

		rec := get(newPageEngine(t, ama, nil), "/sessions?date=2024-02-01")

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `href="/sessions/s1"`)
		assert.Contains(t, body, "alice - 01/02/2024")
		assert.Contains(t, body, "Ask me about gardening")
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		rec := get(newPageEngine(t, newStubAMA(), nil), "/sessions?date=yesterday")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("storage failure is a 500", func(t *testing.T) {
		ama := newStubAMA()
		ama.listErr = apperrors.Database(errors.New("connection reset"))

		rec := get(newPageEngine(t, ama, nil), "/sessions")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), unexpectedErrorMessage)
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})
}

func TestSessionIndexCache(t *testing.T) {
	cache, err := utils.NewPageCache(8)
	require.NoError(t, err)
	ama := newStubAMA()
	ama.sessions = []models.Session{*sampleSession()}
	h := NewSessionHandler(ama, cache, zap.NewNop())

	day := testToday
	_, err = h.listSessions(context.Background(), day)
	require.NoError(t, err)
	_, err = h.listSessions(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 1, ama.calls["ListSessions"])

	h.invalidate()
	_, err = h.listSessions(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 2, ama.calls["ListSessions"])
}

func TestCreateSession(t *testing.T) {
	longContent := strings.Repeat("I grow tomatoes. ", 6)

	t.Run("short content never reaches the domain", func(t *testing.T) {
		ama := newStubAMA()
		rec := postForm(newPageEngine(t, ama, alice), "/sessions/new", url.Values{"content": {"too short"}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), msgContentTooShort)
		assert.Contains(t, rec.Body.String(), "too short")
		assert.Zero(t, ama.calls["StartSession"])
	})

	t.Run("content length is counted in characters", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
			want    int
		}{
			{"89 characters", strings.Repeat("é", 89), http.StatusBadRequest},
			{"90 characters", strings.Repeat("é", 90), http.StatusFound},
			{"spaces count towards the 90", strings.Repeat("a", 88) + "  ", http.StatusFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ama := newStubAMA()
				rec := postForm(newPageEngine(t, ama, alice), "/sessions/new", url.Values{"content": {tt.content}})

				assert.Equal(t, tt.want, rec.Code)
				if tt.want == http.StatusBadRequest {
					assert.Zero(t, ama.calls["StartSession"])
				} else {
					assert.Equal(t, 1, ama.calls["StartSession"])
				}
			})
		}
	})

	t.Run("second session of the day is refused", func(t *testing.T) {
		ama := newStubAMA()
		ama.startErr = apperrors.AlreadyRunning()
		rec := postForm(newPageEngine(t, ama, alice), "/sessions/new", url.Values{"content": {longContent}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "You already have a session running.")
	})

	t.Run("redirects to the new session", func(t *testing.T) {
		ama := newStubAMA()
		rec := postForm(newPageEngine(t, ama, alice), "/sessions/new", url.Values{"content": {longContent}})

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/sessions/new-session", rec.Header().Get("Location"))
		assert.Equal(t, 1, ama.calls["StartSession"])
	})
}

func TestSessionDetail(t *testing.T) {
	t.Run("unknown session is a 404", func(t *testing.T) {
		rec := get(newPageEngine(t, newStubAMA(), nil), "/sessions/missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Session not found")
	})

	t.Run("visitors get the ask form", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		rec := get(newPageEngine(t, ama, bob), "/sessions/s1")

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Ask Question")
		assert.Contains(t, body, "What is your favorite color")
		assert.NotContains(t, body, `name="answer_to_question"`)
	})

	t.Run("host gets answer forms instead", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		rec := get(newPageEngine(t, ama, alice), "/sessions/s1")

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.NotContains(t, body, "Ask Question")
		assert.Contains(t, body, `name="answer_to_question" value="q1"`)
	})

	t.Run("answered questions show the answer", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		answer := "Blue, obviously"
		ama.session.Questions[0].Answer = &answer
		rec := get(newPageEngine(t, ama, alice), "/sessions/s1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Blue, obviously")
		assert.NotContains(t, rec.Body.String(), `name="answer_to_question"`)
	})
}

func TestSessionAction(t *testing.T) {
	t.Run("short question is rejected before the domain", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		rec := postForm(newPageEngine(t, ama, bob), "/sessions/s1", url.Values{"content": {"  a  "}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), msgQuestionRequired)
		assert.Zero(t, ama.calls["AddQuestion"])
	})

	t.Run("question, answer and comment need three characters after trimming", func(t *testing.T) {
		tests := []struct {
			name   string
			user   *models.User
			target string
			form   url.Values
			want   int
			call   string
		}{
			{"question of two", bob, "/sessions/s1", url.Values{"content": {"  ab  "}}, http.StatusBadRequest, "AddQuestion"},
			{"question of three", bob, "/sessions/s1", url.Values{"content": {"  abc  "}}, http.StatusFound, "AddQuestion"},
			{"question of three runes", bob, "/sessions/s1", url.Values{"content": {"äöü"}}, http.StatusFound, "AddQuestion"},
			{"answer of two", alice, "/sessions/s1", url.Values{"answer_to_question": {"q1"}, "answer": {" ok "}}, http.StatusBadRequest, "AnswerQuestion"},
			{"answer of three", alice, "/sessions/s1", url.Values{"answer_to_question": {"q1"}, "answer": {" yes "}}, http.StatusFound, "AnswerQuestion"},
			{"comment of two", bob, "/sessions/s1/questions/q1", url.Values{"content": {"\tno\n"}}, http.StatusBadRequest, "AddComment"},
			{"comment of three", bob, "/sessions/s1/questions/q1", url.Values{"content": {"+1!"}}, http.StatusFound, "AddComment"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ama := newStubAMA()
				ama.session = sampleSession()
				rec := postForm(newPageEngine(t, ama, tt.user), tt.target, tt.form)

				assert.Equal(t, tt.want, rec.Code)
				if tt.want == http.StatusBadRequest {
					assert.Zero(t, ama.calls[tt.call])
				} else {
					assert.Equal(t, 1, ama.calls[tt.call])
				}
			})
		}
	})

	t.Run("question redirects to its thread", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		rec := postForm(newPageEngine(t, ama, bob), "/sessions/s1", url.Values{"content": {"Do you like roses?"}})

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/sessions/s1/questions/new-question", rec.Header().Get("Location"))
	})

	t.Run("duplicate question re-renders with 400", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		ama.askErr = apperrors.DuplicateQuestion()
		rec := postForm(newPageEngine(t, ama, bob), "/sessions/s1", url.Values{"content": {"Do you like roses?"}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "You already asked this question in this session.")
		assert.Contains(t, rec.Body.String(), "Do you like roses?")
	})

	t.Run("question on a missing session is a 404", func(t *testing.T) {
		ama := newStubAMA()
		ama.askErr = apperrors.SessionNotFound()
		rec := postForm(newPageEngine(t, ama, bob), "/sessions/gone", url.Values{"content": {"Anyone here?"}})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("short answer is rejected before the domain", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		rec := postForm(newPageEngine(t, ama, alice), "/sessions/s1", url.Values{
			"answer_to_question": {"q1"},
			"answer":             {"ok"},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), msgAnswerRequired)
		assert.Zero(t, ama.calls["AnswerQuestion"])
	})

	t.Run("only the host may answer", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		ama.answerErr = apperrors.NotSessionAuthor()
		rec := postForm(newPageEngine(t, ama, bob), "/sessions/s1", url.Values{
			"answer_to_question": {"q1"},
			"answer":             {"Blue."},
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Only the session host can answer questions.")
	})

	t.Run("answer for a question of another session is a 404", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		rec := postForm(newPageEngine(t, ama, alice), "/sessions/s1", url.Values{
			"answer_to_question": {"q-from-elsewhere"},
			"answer":             {"Blue."},
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Question not found")
		assert.Zero(t, ama.calls["AnswerQuestion"])
	})

	t.Run("answer redirects to the thread", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		rec := postForm(newPageEngine(t, ama, alice), "/sessions/s1", url.Values{
			"answer_to_question": {"q1"},
			"answer":             {"Blue."},
		})

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/sessions/s1/questions/q1", rec.Header().Get("Location"))
		assert.Equal(t, 1, ama.calls["AnswerQuestion"])
	})
}

func TestThread(t *testing.T) {
	t.Run("shows the question with its comments", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		ama.comments = []models.Comment{{ID: "c1", QuestionID: "q1", User: *bob, Content: "Great question", CreatedAt: testToday}}
		rec := get(newPageEngine(t, ama, nil), "/sessions/s1/questions/q1")

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Great question")
		assert.Contains(t, body, `class="question selected"`)
		assert.Contains(t, body, `action="/sessions/s1/questions/q1"`)
	})

	t.Run("question from another session is a 404", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		rec := get(newPageEngine(t, ama, nil), "/sessions/s1/questions/other")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Question not found")
	})

	t.Run("short comment is rejected", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		rec := postForm(newPageEngine(t, ama, bob), "/sessions/s1/questions/q1", url.Values{"content": {"no"}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), msgCommentRequired)
		assert.Zero(t, ama.calls["AddComment"])
	})

	t.Run("comment redirects back to the thread", func(t *testing.T) {
		ama := newStubAMA()
		ama.session = sampleSession()
		rec := postForm(newPageEngine(t, ama, alice), "/sessions/s1/questions/q1", url.Values{"content": {"Nice!"}})

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/sessions/s1/questions/q1", rec.Header().Get("Location"))
		assert.Equal(t, 1, ama.calls["AddComment"])
	})
}

func TestNotFoundPage(t *testing.T) {
	rec := get(newPageEngine(t, newStubAMA(), nil), "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"already running", apperrors.AlreadyRunning(), http.StatusBadRequest, "You already have a session running."},
		{"host cannot ask", apperrors.HostCannotAsk(), http.StatusBadRequest, "Hosts can not ask questions in their own session."},
		{"not author", apperrors.NotSessionAuthor(), http.StatusForbidden, "Only the session host can answer questions."},
		{"question missing", apperrors.QuestionNotFound(), http.StatusNotFound, "Question not found"},
		{"validation", apperrors.Validation("Name is too short"), http.StatusBadRequest, "Name is too short"},
		{"unauthorized", apperrors.Unauthorized("Invalid name or password"), http.StatusUnauthorized, "Invalid name or password"},
		{"conflict", apperrors.Conflict("That name is already taken."), http.StatusConflict, "That name is already taken."},
		{"database", apperrors.Database(errors.New("boom")), http.StatusInternalServerError, unexpectedErrorMessage},
		{"plain", errors.New("boom"), http.StatusInternalServerError, unexpectedErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := describeError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestTrimMin(t *testing.T) {
	registerValidators()

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var f struct {
			Content string `form:"content" binding:"trimmin=3"`
		}
		if err := c.ShouldBind(&f); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		value string
		want  int
	}{
		{"abc", http.StatusOK},
		{"   ab   ", http.StatusBadRequest},
		{"", http.StatusBadRequest},
		{"äöü", http.StatusOK},
	}
	for _, tt := range tests {
		rec := postForm(r, "/", url.Values{"content": {tt.value}})
		assert.Equal(t, tt.want, rec.Code, "value %q", tt.value)
	}
}

func newAPIEngine(ama AMA) *gin.Engine {
	r := gin.New()
	h := NewAPIHandler(ama, zap.NewNop())
	r.GET("/api/sessions", h.ListSessions)
	r.GET("/api/sessions/:sessionId", h.GetSession)
	r.GET("/api/sessions/:sessionId/questions/:questionId", h.GetQuestion)
	r.GET("/api/questions/:questionId/comments", h.ListComments)
	return r
}

func TestAPI(t *testing.T) {
	ama := newStubAMA()
	ama.session = sampleSession()
	ama.sessions = []models.Session{*sampleSession()}
	ama.comments = []models.Comment{{ID: "c1", QuestionID: "q1", Content: "Nice!"}}
	r := newAPIEngine(ama)

	t.Run("list sessions", func(t *testing.T) {
		rec := get(r, "/api/sessions?date=2024-02-01")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Date     string           `json:"date"`
			Sessions []models.Session `json:"sessions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "2024-02-01", body.Date)
		require.Len(t, body.Sessions, 1)
		assert.Equal(t, "alice", body.Sessions[0].User.Name)
	})

	t.Run("bad date", func(t *testing.T) {
		rec := get(r, "/api/sessions?date=02-01-2024")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("session detail", func(t *testing.T) {
		rec := get(r, "/api/sessions/s1")
		require.Equal(t, http.StatusOK, rec.Code)

		var s models.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
		assert.Equal(t, "s1", s.ID)
		require.Len(t, s.Questions, 1)
		assert.Nil(t, s.Questions[0].Answer)
	})

	t.Run("unknown session", func(t *testing.T) {
		rec := get(r, "/api/sessions/missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Session not found"}`, rec.Body.String())
	})

	t.Run("question with comments", func(t *testing.T) {
		rec := get(r, "/api/sessions/s1/questions/q1")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Question models.Question  `json:"question"`
			Comments []models.Comment `json:"comments"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "q1", body.Question.ID)
		require.Len(t, body.Comments, 1)
		assert.Equal(t, "Nice!", body.Comments[0].Content)
	})

	t.Run("comments", func(t *testing.T) {
		rec := get(r, "/api/questions/q1/comments")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"Nice!"`)
	})
}

func TestSEO(t *testing.T) {
	ama := newStubAMA()
	old := sampleSession()
	old.ID = "old"
	old.CreatedAt = testToday.AddDate(0, 0, -3)
	old.UpdatedAt = old.CreatedAt
	ama.sessions = []models.Session{*sampleSession(), *old}

	h := NewSEOHandler(ama, "https://ama.example/", zap.NewNop())
	r := gin.New()
	r.GET("/robots.txt", h.RobotsTxt)
	r.GET("/sitemap.xml", h.SitemapXML)

	t.Run("robots points at the sitemap", func(t *testing.T) {
		rec := get(r, "/robots.txt")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Sitemap: https://ama.example/sitemap.xml")
		assert.Contains(t, rec.Body.String(), "Disallow: /sessions/new")
	})

	t.Run("sitemap lists recent sessions", func(t *testing.T) {
		rec := get(r, "/sitemap.xml")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "<loc>https://ama.example/sessions</loc>")
		assert.Contains(t, body, "<loc>https://ama.example/sessions/s1</loc>")
		assert.Contains(t, body, "<loc>https://ama.example/sessions/old</loc>")
		assert.Contains(t, body, "<changefreq>never</changefreq>")
	})
}

func TestHealthz(t *testing.T) {
	r := gin.New()
	healthy := true
	r.GET("/healthz", Healthz(func(ctx context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("db down")
	}))

	rec := get(r, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	healthy = false
	rec = get(r, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}
