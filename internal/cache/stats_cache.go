package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"codepractice/internal/model"
)

// StatsCache keeps per-test attempt counters in one Redis hash
type StatsCache interface {
	// MarkServed records when a problem was first shown; later calls are no-ops
	MarkServed(ctx context.Context, testID string, problemID int, at time.Time) error
	// RecordAttempt counts one graded submission
	RecordAttempt(ctx context.Context, testID string, problemID int, lang model.Language, accepted bool, at time.Time) error
	// Get returns the counters, empty when nothing was recorded
	Get(ctx context.Context, testID string) (*model.TestStats, error)
}

type statsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a new stats cache
func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

// Hash field layout
const (
	fieldAttempts = "attempts"
	fieldAccepted = "accepted"
	prefixLang    = "lang:"
	prefixProblem = "p:"
)

func (c *statsCache) key(testID string) string {
	return fmt.Sprintf("test:%s:stats", testID)
}

func problemField(problemID int, name string) string {
	return prefixProblem + strconv.Itoa(problemID) + ":" + name
}

func (c *statsCache) MarkServed(ctx context.Context, testID string, problemID int, at time.Time) error {
	key := c.key(testID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, problemField(problemID, "served"), at.Unix())
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	return err
}

func (c *statsCache) RecordAttempt(ctx context.Context, testID string, problemID int, lang model.Language, accepted bool, at time.Time) error {
	key := c.key(testID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, fieldAttempts, 1)
		pipe.HIncrBy(ctx, key, problemField(problemID, "attempts"), 1)
		pipe.HIncrBy(ctx, key, prefixLang+string(lang), 1)
		if accepted {
			pipe.HIncrBy(ctx, key, fieldAccepted, 1)
			pipe.HSetNX(ctx, key, problemField(problemID, "solved"), at.Unix())
		}
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	return err
}

func (c *statsCache) Get(ctx context.Context, testID string) (*model.TestStats, error) {
	fields, err := c.client.HGetAll(ctx, c.key(testID)).Result()
	if err != nil {
		return nil, err
	}
	return parseStats(fields), nil
}

// parseStats skips malformed fields rather than failing the whole read
func parseStats(fields map[string]string) *model.TestStats {
	stats := &model.TestStats{
		Languages: make(map[model.Language]int),
		Problems:  make(map[int]*model.ProblemStats),
	}
	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		switch {
		case field == fieldAttempts:
			stats.TotalAttempts = int(n)
		case field == fieldAccepted:
			stats.Accepted = int(n)
		case strings.HasPrefix(field, prefixLang):
			stats.Languages[model.Language(strings.TrimPrefix(field, prefixLang))] = int(n)
		case strings.HasPrefix(field, prefixProblem):
			parts := strings.SplitN(strings.TrimPrefix(field, prefixProblem), ":", 2)
			if len(parts) != 2 {
				continue
			}
			id, err := strconv.Atoi(parts[0])
			if err != nil {
				continue
			}
			ps, ok := stats.Problems[id]
			if !ok {
				ps = &model.ProblemStats{ProblemID: id}
				stats.Problems[id] = ps
			}
			switch parts[1] {
			case "attempts":
				ps.Attempts = int(n)
			case "served":
				ps.FirstServed = n
			case "solved":
				ps.SolvedAt = n
				ps.Solved = true
			}
		}
	}
	return stats
}
