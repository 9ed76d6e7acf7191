package service

import (
	"context"
	"fmt"
	"math"

	"codepractice/internal/cache"
	"codepractice/internal/model"
)

// AnalyticsService builds the end-of-test dashboard summary
type AnalyticsService struct {
	sessions *SessionService
	stats    cache.StatsCache
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(sessions *SessionService, stats cache.StatsCache) *AnalyticsService {
	return &AnalyticsService{
		sessions: sessions,
		stats:    stats,
	}
}

// ForTest summarizes a test in any state
func (s *AnalyticsService) ForTest(ctx context.Context, testID string) (*model.TestAnalytics, error) {
	session, err := s.sessions.Get(ctx, testID)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.Get(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get test stats: %w", err)
	}
	return Summarize(session, s.sessions.catalog.All(), stats), nil
}

// Summarize folds raw counters into the dashboard view. Problems are
// listed in catalog order; only served or attempted ones appear.
func Summarize(session *model.Session, problems []model.Problem, stats *model.TestStats) *model.TestAnalytics {
	out := &model.TestAnalytics{
		TestID:           session.ID,
		Active:           session.Active,
		TotalProblems:    len(problems),
		TotalAttempts:    stats.TotalAttempts,
		FavoriteLanguage: favoriteLanguage(stats.Languages),
		Problems:         []model.ProblemStats{},
	}

	attempted := 0
	for _, p := range problems {
		ps, ok := stats.Problems[p.ID]
		if !ok {
			continue
		}
		entry := *ps
		if entry.Attempts > 0 {
			attempted++
		}
		if entry.Solved {
			out.SolvedProblems++
			if entry.FirstServed > 0 && entry.SolvedAt >= entry.FirstServed {
				entry.TimeSpentSec = entry.SolvedAt - entry.FirstServed
				out.TotalTimeSec += entry.TimeSpentSec
			}
		}
		out.Problems = append(out.Problems, entry)
	}

	if out.SolvedProblems > 0 {
		out.AverageTimeSec = out.TotalTimeSec / int64(out.SolvedProblems)
	}
	if attempted > 0 {
		out.SuccessRate = int(math.Round(float64(out.SolvedProblems) / float64(attempted) * 100))
	}
	return out
}

// favoriteLanguage picks the most used language; ties go to the
// alphabetically first so the result is stable
func favoriteLanguage(counts map[model.Language]int) model.Language {
	var best model.Language
	bestCount := 0
	for lang, n := range counts {
		if n > bestCount || (n == bestCount && n > 0 && lang < best) {
			best, bestCount = lang, n
		}
	}
	return best
}
