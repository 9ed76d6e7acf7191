package repository

import (
	"context"
	"testing"
)

func TestSQLSessionRepo_SQLite(t *testing.T) {
	db, err := OpenSQL(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("OpenSQL() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	exerciseSessionRepo(t, NewSQLSessionRepo(db, "sqlite"))
}

func TestSQLSessionRepo_EnsureSchemaIdempotent(t *testing.T) {
	db, err := OpenSQL(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("OpenSQL() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewSQLSessionRepo(db, "sqlite")
	for i := 0; i < 2; i++ {
		if err := repo.EnsureSchema(context.Background()); err != nil {
			t.Fatalf("EnsureSchema() run %d error = %v", i, err)
		}
	}
}

func TestRebind(t *testing.T) {
	pg := &sqlSessionRepo{postgres: true}
	got := pg.rebind("UPDATE tests SET a = ? WHERE b = ? AND c = ?")
	want := "UPDATE tests SET a = $1 WHERE b = $2 AND c = $3"
	if got != want {
		t.Errorf("rebind() = %q, want %q", got, want)
	}

	lite := &sqlSessionRepo{}
	if got := lite.rebind("SELECT ?"); got != "SELECT ?" {
		t.Errorf("sqlite rebind() = %q", got)
	}
}
