package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"codepractice/internal/model"
)

// sqlSessionRepo stores sessions in a "tests" table on sqlite or postgres
type sqlSessionRepo struct {
	db       *sql.DB
	postgres bool
}

// OpenSQL opens a database/sql handle for driver ("sqlite" or "postgres")
func OpenSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY under load
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// NewSQLSessionRepo creates a session repository over db
func NewSQLSessionRepo(db *sql.DB, driver string) SessionRepo {
	return &sqlSessionRepo{db: db, postgres: driver == "postgres"}
}

func (r *sqlSessionRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tests (
  testid TEXT PRIMARY KEY,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  current_problem_index INTEGER NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL,
  ended_at BIGINT
)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create tests table: %w", err)
	}
	return nil
}

func (r *sqlSessionRepo) Create(ctx context.Context, session *model.Session) error {
	const stmt = `INSERT INTO tests (testid, active, current_problem_index, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.rebind(stmt),
		session.ID, session.Active, session.CurrentProblemIndex, session.CreatedAt.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSession
		}
		return fmt.Errorf("insert test: %w", err)
	}
	return nil
}

func (r *sqlSessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	const query = `SELECT testid, active, current_problem_index, created_at, ended_at FROM tests WHERE testid = ?`

	var (
		s         model.Session
		createdAt int64
		endedAt   sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, r.rebind(query), id).
		Scan(&s.ID, &s.Active, &s.CurrentProblemIndex, &createdAt, &endedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select test: %w", err)
	}
	s.CreatedAt = time.UnixMilli(createdAt).UTC()
	if endedAt.Valid {
		t := time.UnixMilli(endedAt.Int64).UTC()
		s.EndedAt = &t
	}
	return &s, nil
}

func (r *sqlSessionRepo) AdvanceFrom(ctx context.Context, id string, from int) (bool, error) {
	const stmt = `
UPDATE tests SET current_problem_index = current_problem_index + 1
WHERE testid = ? AND active = ? AND current_problem_index = ?`
	res, err := r.db.ExecContext(ctx, r.rebind(stmt), id, true, from)
	if err != nil {
		return false, fmt.Errorf("advance test: %w", err)
	}
	return affectedOne(res)
}

func (r *sqlSessionRepo) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	const stmt = `UPDATE tests SET active = ?, ended_at = ? WHERE testid = ? AND active = ?`
	res, err := r.db.ExecContext(ctx, r.rebind(stmt), false, at.UnixMilli(), id, true)
	if err != nil {
		return false, fmt.Errorf("deactivate test: %w", err)
	}
	return affectedOne(res)
}

// rebind turns ? placeholders into $n for postgres
func (r *sqlSessionRepo) rebind(query string) string {
	if !r.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
