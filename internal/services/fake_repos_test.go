package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"ama/internal/models"
	"ama/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory persistence gateway that enforces the same unique
// indexes as the database schema.
type memStore struct {
	mu        sync.Mutex
	now       func() time.Time
	sessions  map[string]*models.Session
	questions map[string]*models.Question
	comments  []*models.Comment

	// staleReads makes lookups miss, as a concurrent request would see before the winner commits.
	staleReads bool
	failWith   error
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		now:       now,
		sessions:  make(map[string]*models.Session),
		questions: make(map[string]*models.Question),
	}
}

func (m *memStore) repos() Repositories {
	return Repositories{Sessions: m, Questions: m, Comments: m}
}

func (m *memStore) FindSessions(_ context.Context, f repository.SessionFilter) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if m.staleReads {
		return nil, nil
	}

	var out []models.Session
	for _, s := range m.sessions {
		if s.CreatedAt.Before(f.From) || s.CreatedAt.After(f.To) {
			continue
		}
		if f.HostID != "" && s.UserID != f.HostID {
			continue
		}
		cp := *s
		cp.QuestionCount = m.countQuestions(s.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) countQuestions(sessionID string) int {
	n := 0
	for _, q := range m.questions {
		if q.SessionID == sessionID {
			n++
		}
	}
	return n
}

func (m *memStore) FindSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.Questions = nil
	for _, q := range m.questions {
		if q.SessionID == id {
			cp.Questions = append(cp.Questions, *q)
		}
	}
	sort.Slice(cp.Questions, func(i, j int) bool { return cp.Questions[i].CreatedAt.Before(cp.Questions[j].CreatedAt) })
	cp.QuestionCount = len(cp.Questions)
	return &cp, nil
}

func (m *memStore) CreateSession(_ context.Context, hostID, content, day string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, s := range m.sessions {
		if s.UserID == hostID && s.Day == day {
			return nil, repository.ErrDuplicate
		}
	}
	s := &models.Session{
		ID:        uuid.NewString(),
		UserID:    hostID,
		Content:   content,
		Day:       day,
		CreatedAt: m.now(),
		UpdatedAt: m.now(),
	}
	m.sessions[s.ID] = s
	cp := *s
	return &cp, nil
}

func (m *memStore) RecentSessions(_ context.Context, limit int) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) FindQuestion(_ context.Context, id string) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if m.staleReads {
		return nil, nil
	}
	q, ok := m.questions[id]
	if !ok {
		return nil, nil
	}
	return m.withSession(q), nil
}

func (m *memStore) FindAsked(_ context.Context, sessionID, askerID, content string) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if m.staleReads {
		return nil, nil
	}
	for _, q := range m.questions {
		if q.SessionID == sessionID && q.UserID == askerID && q.Content == content {
			return m.withSession(q), nil
		}
	}
	return nil, nil
}

// withSession copies q and attaches a copy of its session. Callers hold m.mu.
func (m *memStore) withSession(q *models.Question) *models.Question {
	cp := *q
	if s, ok := m.sessions[q.SessionID]; ok {
		sc := *s
		cp.Session = &sc
	}
	return &cp
}

func (m *memStore) CreateQuestion(_ context.Context, sessionID, askerID, content string) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	hash := models.HashContent(content)
	for _, q := range m.questions {
		if q.SessionID == sessionID && q.UserID == askerID && q.ContentHash == hash {
			return nil, repository.ErrDuplicate
		}
	}
	q := &models.Question{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		UserID:      askerID,
		Content:     content,
		ContentHash: hash,
		CreatedAt:   m.now(),
		UpdatedAt:   m.now(),
	}
	m.questions[q.ID] = q
	cp := *q
	return &cp, nil
}

func (m *memStore) UpdateQuestionAnswer(_ context.Context, id, answer string) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	q, ok := m.questions[id]
	if !ok {
		return nil, nil
	}
	a := answer
	q.Answer = &a
	q.UpdatedAt = m.now()
	cp := *q
	return &cp, nil
}

func (m *memStore) CreateComment(_ context.Context, questionID, authorID, content string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	c := &models.Comment{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		UserID:     authorID,
		Content:    content,
		CreatedAt:  m.now(),
	}
	m.comments = append(m.comments, c)
	cp := *c
	return &cp, nil
}

func (m *memStore) FindComments(_ context.Context, questionID string) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Comment
	for _, c := range m.comments {
		if c.QuestionID == questionID {
			out = append(out, *c)
		}
	}
	return out, nil
}

var errConnReset = errors.New("connection reset")
