package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"codepractice/internal/cache"
	"codepractice/internal/model"
)

// SubmissionService evaluates code against a session's current problem
type SubmissionService struct {
	sessions    *SessionService
	grader      Grader
	stats       cache.StatsCache
	broadcaster Broadcaster
	log         hclog.Logger
	now         func() time.Time
}

// NewSubmissionService creates a new submission service. stats may be nil.
func NewSubmissionService(sessions *SessionService, grader Grader, stats cache.StatsCache, log hclog.Logger) *SubmissionService {
	return &SubmissionService{
		sessions: sessions,
		grader:   grader,
		stats:    stats,
		log:      log,
		now:      time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SubmissionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit grades code for the session's current problem. On an Accepted
// verdict the session advances past exactly the problem that was graded.
func (s *SubmissionService) Submit(ctx context.Context, testID string, req *model.SubmitRequest) (*model.SubmissionResult, error) {
	// empty code is rejected before touching any state
	if strings.TrimSpace(req.Code) == "" {
		return &model.SubmissionResult{Verdict: *model.ErrorVerdict("empty code")}, nil
	}
	lang, ok := model.ParseLanguage(req.Language)
	if !ok {
		return nil, ErrUnsupportedLanguage
	}

	session, err := s.sessions.active(ctx, testID)
	if err != nil {
		return nil, err
	}
	index := session.CurrentProblemIndex
	problem := s.sessions.catalog.ByIndex(index)
	if problem == nil {
		return nil, ErrNoMoreProblems
	}

	verdict, err := s.grader.Grade(ctx, problem, req.Code, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to grade submission: %w", err)
	}

	result := &model.SubmissionResult{
		Verdict:   *verdict,
		ProblemID: problem.ID,
	}

	if verdict.Accepted() {
		advanced, err := s.sessions.AdvanceFrom(ctx, testID, index)
		if err != nil {
			return nil, err
		}
		result.Advanced = advanced
	}

	s.log.Info("submission graded", "test", testID, "problem", problem.ID,
		"language", lang, "status", verdict.Status, "advanced", result.Advanced)

	if s.stats != nil && verdict.Status != model.VerdictError {
		if err := s.stats.RecordAttempt(ctx, testID, problem.ID, lang, verdict.Accepted(), s.now()); err != nil {
			s.log.Warn("failed to record attempt", "test", testID, "error", err)
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.Publish(testID, EventVerdict, result)
	}
	return result, nil
}
