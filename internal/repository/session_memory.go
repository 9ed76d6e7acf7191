package repository

import (
	"context"
	"sync"
	"time"

	"codepractice/internal/model"
)

// MemorySessionRepo keeps sessions in process memory. Used for local runs
// without a database and as the reference store in tests.
type MemorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

// NewMemorySessionRepo creates an empty in-memory repository
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[string]model.Session)}
}

func (r *MemorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.ID]; exists {
		return ErrDuplicateSession
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *MemorySessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemorySessionRepo) AdvanceFrom(ctx context.Context, id string, from int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || !s.Active || s.CurrentProblemIndex != from {
		return false, nil
	}
	s.CurrentProblemIndex++
	r.sessions[id] = s
	return true, nil
}

func (r *MemorySessionRepo) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || !s.Active {
		return false, nil
	}
	s.Active = false
	s.EndedAt = &at
	r.sessions[id] = s
	return true, nil
}

func (r *MemorySessionRepo) EnsureSchema(ctx context.Context) error {
	return nil
}
