package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "ama/internal/errors"
	"ama/internal/metrics"
	"ama/internal/models"
	"ama/internal/repository"
	"ama/internal/utils"

	"go.uber.org/zap"
)

// Repositories bundles the persistence gateway used by AMAService.
type Repositories struct {
	Sessions  repository.SessionRepository
	Questions repository.QuestionRepository
	Comments  repository.CommentRepository
}

// AMAService owns the session/question/comment rules. The acting user is
// always passed in explicitly; nothing here reads request state.
type AMAService struct {
	sessions  repository.SessionRepository
	questions repository.QuestionRepository
	comments  repository.CommentRepository

	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewAMAService(repos Repositories, loc *time.Location, logger *zap.Logger, m *metrics.Metrics) *AMAService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMAService{
		sessions:  repos.Sessions,
		questions: repos.Questions,
		comments:  repos.Comments,
		loc:       loc,
		now:       time.Now,
		logger:    logger.Named("ama"),
		metrics:   m,
	}
}

// Location is the timezone that decides where a day starts and ends.
func (s *AMAService) Location() *time.Location {
	return s.loc
}

// Today returns the current instant in the service location.
func (s *AMAService) Today() time.Time {
	return s.now().In(s.loc)
}

// ListSessions returns sessions created on date's calendar day, optionally for a single host.
func (s *AMAService) ListSessions(ctx context.Context, date time.Time, hostID string) ([]models.Session, error) {
	sessions, err := s.sessions.FindSessions(ctx, repository.SessionFilter{
		From:   utils.StartOfDay(date, s.loc),
		To:     utils.EndOfDay(date, s.loc),
		HostID: hostID,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return sessions, nil
}

func (s *AMAService) GetSessionDetail(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessions.FindSession(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.SessionNotFound()
	}
	return session, nil
}

// RecentSessions lists the newest sessions regardless of day.
func (s *AMAService) RecentSessions(ctx context.Context, limit int) ([]models.Session, error) {
	sessions, err := s.sessions.RecentSessions(ctx, limit)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return sessions, nil
}

// StartSession opens today's session for hostID. A host gets at most one per day.
func (s *AMAService) StartSession(ctx context.Context, hostID, content string) (session *models.Session, err error) {
	defer func() { s.observe("start_session", err) }()

	now := s.Today()
	running, err := s.ListSessions(ctx, now, hostID)
	if err != nil {
		return nil, err
	}
	if len(running) > 0 {
		return nil, apperrors.AlreadyRunning()
	}

	session, err = s.sessions.CreateSession(ctx, hostID, content, utils.DayKey(now, s.loc))
	if errors.Is(err, repository.ErrDuplicate) {
		// lost the race against a concurrent start for the same day
		return nil, apperrors.AlreadyRunning()
	}
	if err != nil {
		return nil, apperrors.Database(err)
	}

	s.logger.Info("session started", zap.String("session_id", session.ID), zap.String("host_id", hostID))
	return session, nil
}

// AddQuestion records askerID's question on a session. Identical text from the
// same asker is rejected, as is any question from the host.
func (s *AMAService) AddQuestion(ctx context.Context, askerID, sessionID, content string) (question *models.Question, err error) {
	defer func() { s.observe("add_question", err) }()

	existing, err := s.questions.FindAsked(ctx, sessionID, askerID, content)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.DuplicateQuestion()
	}

	session, err := s.sessions.FindSession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.SessionNotFound()
	}
	if session.UserID == askerID {
		return nil, apperrors.HostCannotAsk()
	}

	question, err = s.questions.CreateQuestion(ctx, sessionID, askerID, content)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.DuplicateQuestion()
	}
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return question, nil
}

// AnswerQuestion sets or replaces the answer. Only the session host may answer.
func (s *AMAService) AnswerQuestion(ctx context.Context, hostID, questionID, answer string) (question *models.Question, err error) {
	defer func() { s.observe("answer_question", err) }()

	if questionID == "" {
		return nil, apperrors.QuestionNotFound()
	}
	question, err = s.questions.FindQuestion(ctx, questionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if question == nil {
		return nil, apperrors.QuestionNotFound()
	}
	if question.Session == nil {
		return nil, apperrors.SessionNotFound()
	}
	if question.Session.UserID != hostID {
		return nil, apperrors.NotSessionAuthor()
	}

	question, err = s.questions.UpdateQuestionAnswer(ctx, questionID, answer)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if question == nil {
		return nil, apperrors.QuestionNotFound()
	}
	return question, nil
}

// GetQuestion loads a question that must belong to sessionID.
func (s *AMAService) GetQuestion(ctx context.Context, sessionID, questionID string) (*models.Question, error) {
	if questionID == "" {
		return nil, apperrors.QuestionNotFound()
	}
	question, err := s.questions.FindQuestion(ctx, questionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if question == nil || question.SessionID != sessionID {
		return nil, apperrors.QuestionNotFound()
	}
	return question, nil
}

// AddComment attaches a comment to a question. There is no check on the
// question's state; the foreign key is the only guard.
func (s *AMAService) AddComment(ctx context.Context, authorID, questionID, content string) (comment *models.Comment, err error) {
	defer func() { s.observe("add_comment", err) }()

	comment, err = s.comments.CreateComment(ctx, questionID, authorID, content)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return comment, nil
}

func (s *AMAService) ListComments(ctx context.Context, questionID string) ([]models.Comment, error) {
	comments, err := s.comments.FindComments(ctx, questionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return comments, nil
}

func (s *AMAService) observe(op string, err error) {
	if err == nil {
		s.metrics.ObserveOperation(op, "ok")
		return
	}

	code := apperrors.GetCode(err)
	s.metrics.ObserveOperation(op, strings.ToLower(string(code)))

	switch code {
	case apperrors.ErrCodeDatabase, apperrors.ErrCodeInternal:
		s.logger.Error("operation failed", zap.String("op", op), zap.Error(err))
	default:
		s.logger.Debug("operation rejected", zap.String("op", op), zap.String("code", string(code)))
	}
}
