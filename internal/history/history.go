package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Render kinds and terminal statuses.
const (
	KindPreview = "preview"
	KindVideo   = "video"

	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Record is one render attempt.
type Record struct {
	ID         string
	Kind       string
	Scene      string
	Status     string
	Artifact   string
	Message    string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Duration returns how long the render ran, or 0 while still running.
func (r Record) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Repo stores render records.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// Start inserts a running record and returns its id.
func (r *Repo) Start(ctx context.Context, kind, sceneName string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO renders(id, kind, scene, status, started_at)
	VALUES(?, ?, ?, ?, ?);
	`, id, kind, sceneName, StatusRunning, Now())
	if err != nil {
		return "", err
	}
	return id, nil
}

// Finish marks a record terminal.
func (r *Repo) Finish(ctx context.Context, id, status, artifact, message string) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE renders SET status = ?, artifact = ?, message = ?, finished_at = ?
	WHERE id = ?;
	`, status, artifact, message, Now(), id)
	return err
}

// Recent lists the most recent records, newest first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, kind, scene, status, artifact, message, started_at, finished_at
	FROM renders
	ORDER BY started_at DESC, id
	LIMIT ?;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Scene, &rec.Status,
			&rec.Artifact, &rec.Message, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
