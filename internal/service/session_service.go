package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"codepractice/internal/cache"
	"codepractice/internal/catalog"
	"codepractice/internal/model"
	"codepractice/internal/repository"
)

// SessionService handles the test lifecycle: start, status, current
// problem, advance and end.
type SessionService struct {
	repo        repository.SessionRepo
	catalog     *catalog.Catalog
	stats       cache.StatsCache
	broadcaster Broadcaster
	log         hclog.Logger

	now   func() time.Time
	newID func() string
}

// NewSessionService creates a new session service. stats may be nil.
func NewSessionService(
	repo repository.SessionRepo,
	catalog *catalog.Catalog,
	stats cache.StatsCache,
	log hclog.Logger,
) *SessionService {
	return &SessionService{
		repo:    repo,
		catalog: catalog,
		stats:   stats,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Catalog returns the catalog sessions walk through
func (s *SessionService) Catalog() *catalog.Catalog {
	return s.catalog
}

// Start allocates and persists a fresh session
func (s *SessionService) Start(ctx context.Context) (string, error) {
	for attempts := 0; attempts < 3; attempts++ {
		session := &model.Session{
			ID:                  s.newID(),
			Active:              true,
			CurrentProblemIndex: 0,
			CreatedAt:           s.now().UTC(),
		}
		err := s.repo.Create(ctx, session)
		if errors.Is(err, repository.ErrDuplicateSession) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create test: %w", err)
		}
		s.log.Info("test started", "test", session.ID)
		return session.ID, nil
	}
	return "", fmt.Errorf("failed to generate unique test id")
}

// Status reports whether id names an active session. Unknown ids are
// simply inactive.
func (s *SessionService) Status(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to get test: %w", err)
	}
	return session != nil && session.Active, nil
}

// Get returns the session in any state, or ErrTestNotFound
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if session == nil {
		return nil, ErrTestNotFound
	}
	return session, nil
}

// active returns the session only if it exists and is active
func (s *SessionService) active(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Active {
		return nil, ErrTestNotFound
	}
	return session, nil
}

// CurrentProblem returns the problem at the session's cursor
func (s *SessionService) CurrentProblem(ctx context.Context, id string) (*model.CurrentProblem, error) {
	session, err := s.active(ctx, id)
	if err != nil {
		return nil, err
	}
	problem := s.catalog.ByIndex(session.CurrentProblemIndex)
	if problem == nil {
		return nil, ErrNoMoreProblems
	}

	if s.stats != nil {
		if err := s.stats.MarkServed(ctx, id, problem.ID, s.now()); err != nil {
			s.log.Warn("failed to record problem served", "test", id, "problem", problem.ID, "error", err)
		}
	}

	return &model.CurrentProblem{
		Index:   session.CurrentProblemIndex,
		Total:   s.catalog.Len(),
		Problem: problem,
	}, nil
}

// Advance moves the session to the next problem. Each call moves at most
// one step; callers must invoke it at most once per accepted submission.
func (s *SessionService) Advance(ctx context.Context, id string) (bool, error) {
	session, err := s.active(ctx, id)
	if err != nil {
		return false, err
	}
	return s.AdvanceFrom(ctx, id, session.CurrentProblemIndex)
}

// AdvanceFrom moves the session past problem index from, but only if the
// session still sits on it. A concurrent advance makes this a no-op.
func (s *SessionService) AdvanceFrom(ctx context.Context, id string, from int) (bool, error) {
	if from >= s.catalog.Len() {
		return false, ErrNoMoreProblems
	}
	advanced, err := s.repo.AdvanceFrom(ctx, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to advance test: %w", err)
	}
	if !advanced {
		s.log.Debug("advance skipped, cursor already moved", "test", id, "from", from)
		return false, nil
	}

	s.log.Info("test advanced", "test", id, "index", from+1)
	if s.broadcaster != nil {
		payload := map[string]interface{}{
			"index": from + 1,
			"total": s.catalog.Len(),
			"done":  from+1 >= s.catalog.Len(),
		}
		if next := s.catalog.ByIndex(from + 1); next != nil {
			payload["problemId"] = next.ID
		}
		s.broadcaster.Publish(id, EventProblemAdvanced, payload)
	}
	return true, nil
}

// End deactivates the session. Ending an ended session is a no-op.
func (s *SessionService) End(ctx context.Context, id string) error {
	ended, err := s.repo.Deactivate(ctx, id, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to end test: %w", err)
	}
	if !ended {
		// distinguish unknown from already ended
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return nil
	}

	s.log.Info("test ended", "test", id)
	if s.broadcaster != nil {
		s.broadcaster.Publish(id, EventTestEnded, map[string]interface{}{"active": false})
		s.broadcaster.CloseTest(id)
	}
	return nil
}
