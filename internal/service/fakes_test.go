package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"codepractice/internal/catalog"
	"codepractice/internal/model"
	"codepractice/internal/repository"
)

// scriptedRandom replays fixed draws; exhausted scripts yield zero
type scriptedRandom struct {
	floats []float64
	ints   []int
}

func (r *scriptedRandom) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRandom) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

// fixedGrader returns the same verdict every time
type fixedGrader struct {
	mu      sync.Mutex
	verdict model.Verdict
	calls   int
}

func (g *fixedGrader) Grade(ctx context.Context, problem *model.Problem, code string, lang model.Language) (*model.Verdict, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	v := g.verdict
	return &v, nil
}

func acceptAll() *fixedGrader {
	v := model.Verdict{Status: model.VerdictAccepted, Message: "ok"}
	v.WithCounts(10, 10)
	return &fixedGrader{verdict: v}
}

func rejectAll() *fixedGrader {
	v := model.Verdict{Status: model.VerdictWrongAnswer, Message: "nope"}
	v.WithCounts(3, 10)
	return &fixedGrader{verdict: v}
}

type memStats struct {
	mu    sync.Mutex
	stats map[string]*model.TestStats
}

func newMemStats() *memStats {
	return &memStats{stats: make(map[string]*model.TestStats)}
}

func (m *memStats) entry(testID string, problemID int) (*model.TestStats, *model.ProblemStats) {
	ts, ok := m.stats[testID]
	if !ok {
		ts = &model.TestStats{
			Languages: make(map[model.Language]int),
			Problems:  make(map[int]*model.ProblemStats),
		}
		m.stats[testID] = ts
	}
	ps, ok := ts.Problems[problemID]
	if !ok {
		ps = &model.ProblemStats{ProblemID: problemID}
		ts.Problems[problemID] = ps
	}
	return ts, ps
}

func (m *memStats) MarkServed(ctx context.Context, testID string, problemID int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ps := m.entry(testID, problemID)
	if ps.FirstServed == 0 {
		ps.FirstServed = at.Unix()
	}
	return nil
}

func (m *memStats) RecordAttempt(ctx context.Context, testID string, problemID int, lang model.Language, accepted bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ps := m.entry(testID, problemID)
	ts.TotalAttempts++
	ts.Languages[lang]++
	ps.Attempts++
	if accepted {
		ts.Accepted++
		if !ps.Solved {
			ps.Solved = true
			ps.SolvedAt = at.Unix()
		}
	}
	return nil
}

func (m *memStats) Get(ctx context.Context, testID string) (*model.TestStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.stats[testID]
	if !ok {
		return &model.TestStats{
			Languages: map[model.Language]int{},
			Problems:  map[int]*model.ProblemStats{},
		}, nil
	}
	return ts, nil
}

type event struct {
	testID  string
	msgType string
	payload interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []event
	closed []string
}

func (b *recordingBroadcaster) Publish(testID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{testID, msgType, payload})
}

func (b *recordingBroadcaster) CloseTest(testID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, testID)
}

func (b *recordingBroadcaster) count(msgType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.msgType == msgType {
			n++
		}
	}
	return n
}

type fixture struct {
	repo        *repository.MemorySessionRepo
	stats       *memStats
	broadcaster *recordingBroadcaster
	sessions    *SessionService
	submissions *SubmissionService
}

func newFixture(t *testing.T, grader Grader) *fixture {
	t.Helper()
	repo := repository.NewMemorySessionRepo()
	stats := newMemStats()
	b := &recordingBroadcaster{}
	log := hclog.NewNullLogger()

	sessions := NewSessionService(repo, catalog.MustDefault(), stats, log)
	sessions.SetBroadcaster(b)
	submissions := NewSubmissionService(sessions, grader, stats, log)
	submissions.SetBroadcaster(b)

	return &fixture{
		repo:        repo,
		stats:       stats,
		broadcaster: b,
		sessions:    sessions,
		submissions: submissions,
	}
}
