package service

import (
	"context"
	"errors"
	"testing"
)

func TestSessionService_StartServesFirstProblem(t *testing.T) {
	f := newFixture(t, acceptAll())
	ctx := context.Background()

	id, err := f.sessions.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if id == "" {
		t.Fatal("Start() returned empty id")
	}

	active, err := f.sessions.Status(ctx, id)
	if err != nil || !active {
		t.Fatalf("Status() = %v, %v, want true", active, err)
	}

	cur, err := f.sessions.CurrentProblem(ctx, id)
	if err != nil {
		t.Fatalf("CurrentProblem() error = %v", err)
	}
	if cur.Index != 0 || cur.Total != 5 || cur.Problem.ID != 1 || cur.Problem.Title != "Two Sum" {
		t.Errorf("CurrentProblem() = index %d total %d problem %+v", cur.Index, cur.Total, cur.Problem)
	}

	stats, _ := f.stats.Get(ctx, id)
	if ps := stats.Problems[1]; ps == nil || ps.FirstServed == 0 {
		t.Errorf("first problem not marked served: %+v", stats.Problems)
	}
}

func TestSessionService_StartRetriesDuplicateID(t *testing.T) {
	f := newFixture(t, acceptAll())
	ctx := context.Background()

	ids := []string{"abc123", "abc123", "def456"}
	f.sessions.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := f.sessions.Start(ctx)
	if err != nil || first != "abc123" {
		t.Fatalf("Start() = %q, %v", first, err)
	}
	second, err := f.sessions.Start(ctx)
	if err != nil || second != "def456" {
		t.Fatalf("Start() after collision = %q, %v, want def456", second, err)
	}
}

func TestSessionService_StatusUnknown(t *testing.T) {
	f := newFixture(t, acceptAll())

	for _, id := range []string{"", "never-issued"} {
		active, err := f.sessions.Status(context.Background(), id)
		if err != nil {
			t.Errorf("Status(%q) error = %v", id, err)
		}
		if active {
			t.Errorf("Status(%q) = true, want false", id)
		}
	}
}

func TestSessionService_CurrentProblemUnknown(t *testing.T) {
	f := newFixture(t, acceptAll())

	_, err := f.sessions.CurrentProblem(context.Background(), "missing")
	if !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("CurrentProblem() error = %v, want ErrTestNotFound", err)
	}
}

func TestSessionService_AdvanceWalksCatalog(t *testing.T) {
	f := newFixture(t, acceptAll())
	ctx := context.Background()
	id, _ := f.sessions.Start(ctx)

	want := []int{1, 2, 3, 76, 121}
	for n, problemID := range want {
		cur, err := f.sessions.CurrentProblem(ctx, id)
		if err != nil {
			t.Fatalf("step %d: CurrentProblem() error = %v", n, err)
		}
		if cur.Index != n || cur.Problem.ID != problemID {
			t.Fatalf("step %d: got index %d problem %d, want %d", n, cur.Index, cur.Problem.ID, problemID)
		}
		advanced, err := f.sessions.Advance(ctx, id)
		if err != nil || !advanced {
			t.Fatalf("step %d: Advance() = %v, %v", n, advanced, err)
		}
	}

	if _, err := f.sessions.CurrentProblem(ctx, id); !errors.Is(err, ErrNoMoreProblems) {
		t.Fatalf("CurrentProblem() past end error = %v, want ErrNoMoreProblems", err)
	}
	if _, err := f.sessions.Advance(ctx, id); !errors.Is(err, ErrNoMoreProblems) {
		t.Fatalf("Advance() past end error = %v, want ErrNoMoreProblems", err)
	}
	if got := f.broadcaster.count(EventProblemAdvanced); got != len(want) {
		t.Errorf("problem_advanced events = %d, want %d", got, len(want))
	}
}

func TestSessionService_AdvanceFromStale(t *testing.T) {
	f := newFixture(t, acceptAll())
	ctx := context.Background()
	id, _ := f.sessions.Start(ctx)

	if ok, err := f.sessions.AdvanceFrom(ctx, id, 0); err != nil || !ok {
		t.Fatalf("AdvanceFrom(0) = %v, %v", ok, err)
	}
	if ok, err := f.sessions.AdvanceFrom(ctx, id, 0); err != nil || ok {
		t.Fatalf("second AdvanceFrom(0) = %v, %v, want false, nil", ok, err)
	}

	cur, _ := f.sessions.CurrentProblem(ctx, id)
	if cur.Index != 1 {
		t.Errorf("index = %d, want 1", cur.Index)
	}
}

func TestSessionService_EndIsPermanent(t *testing.T) {
	f := newFixture(t, acceptAll())
	ctx := context.Background()
	id, _ := f.sessions.Start(ctx)

	if err := f.sessions.End(ctx, id); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	active, err := f.sessions.Status(ctx, id)
	if err != nil || active {
		t.Fatalf("Status() after End = %v, %v, want false", active, err)
	}
	if _, err := f.sessions.CurrentProblem(ctx, id); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("CurrentProblem() after End error = %v, want ErrTestNotFound", err)
	}
	if _, err := f.sessions.Advance(ctx, id); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("Advance() after End error = %v, want ErrTestNotFound", err)
	}

	// ending again is a no-op
	if err := f.sessions.End(ctx, id); err != nil {
		t.Fatalf("second End() error = %v", err)
	}
	if got := f.broadcaster.count(EventTestEnded); got != 1 {
		t.Errorf("test_ended events = %d, want 1", got)
	}
	if len(f.broadcaster.closed) != 1 || f.broadcaster.closed[0] != id {
		t.Errorf("closed = %v, want [%s]", f.broadcaster.closed, id)
	}

	session, err := f.sessions.Get(ctx, id)
	if err != nil || session.EndedAt == nil {
		t.Errorf("Get() after End = %+v, %v", session, err)
	}
}

func TestSessionService_EndUnknown(t *testing.T) {
	f := newFixture(t, acceptAll())

	if err := f.sessions.End(context.Background(), "missing"); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("End() error = %v, want ErrTestNotFound", err)
	}
}

func TestSessionService_SessionsDoNotShareProgress(t *testing.T) {
	f := newFixture(t, acceptAll())
	ctx := context.Background()
	a, _ := f.sessions.Start(ctx)
	b, _ := f.sessions.Start(ctx)

	f.sessions.Advance(ctx, a)
	f.sessions.Advance(ctx, a)

	curA, _ := f.sessions.CurrentProblem(ctx, a)
	curB, _ := f.sessions.CurrentProblem(ctx, b)
	if curA.Problem.ID != 3 {
		t.Errorf("session a problem = %d, want 3", curA.Problem.ID)
	}
	if curB.Problem.ID != 1 {
		t.Errorf("session b problem = %d, want 1", curB.Problem.ID)
	}
}
