package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepo(t *testing.T) (*Repo, *sql.DB) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrations, err := filepath.Abs("migrations")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, migrations))

	return NewRepo(db), db
}

func TestStartInsertsRunningRecord(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	repo, db := testRepo(t)

	id, err := repo.Start(ctx, KindPreview, "PreviewScene")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var kind, scene, status string
	var finished *time.Time
	err = db.QueryRowContext(ctx,
		`SELECT kind, scene, status, finished_at FROM renders WHERE id = ?`, id).
		Scan(&kind, &scene, &status, &finished)
	require.NoError(t, err)
	assert.Equal(t, KindPreview, kind)
	assert.Equal(t, "PreviewScene", scene)
	assert.Equal(t, StatusRunning, status)
	assert.Nil(t, finished)
}

func TestFinishMarksTerminal(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	repo, _ := testRepo(t)

	id, err := repo.Start(ctx, KindVideo, "StudioScene")
	require.NoError(t, err)
	require.NoError(t, repo.Finish(ctx, id, StatusSucceeded, "/tmp/out.mp4", ""))

	recs, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, StatusSucceeded, recs[0].Status)
	assert.Equal(t, "/tmp/out.mp4", recs[0].Artifact)
	require.NotNil(t, recs[0].FinishedAt)
	assert.GreaterOrEqual(t, recs[0].Duration(), time.Duration(0))
}

func TestFinishFailureKeepsMessage(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	repo, _ := testRepo(t)

	id, err := repo.Start(ctx, KindPreview, "PreviewScene")
	require.NoError(t, err)
	require.NoError(t, repo.Finish(ctx, id, StatusFailed, "", "Manim failed (code 1): boom"))

	recs, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, StatusFailed, recs[0].Status)
	assert.Contains(t, recs[0].Message, "boom")
	assert.Empty(t, recs[0].Artifact)
}

func TestRecentNewestFirstAndLimited(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	repo, db := testRepo(t)

	// Insert with explicit timestamps so ordering is deterministic.
	base := Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		id, err := repo.Start(ctx, KindPreview, "PreviewScene")
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `UPDATE renders SET started_at = ? WHERE id = ?`,
			base.Add(time.Duration(i)*time.Minute), id)
		require.NoError(t, err)
	}

	recs, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.True(t, recs[0].StartedAt.After(recs[1].StartedAt))
	assert.True(t, recs[1].StartedAt.After(recs[2].StartedAt))
}
