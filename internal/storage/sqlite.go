// Package storage provides SQLite-based persistence for episode results
// and engine checkpoints.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/gym2048/internal/engine"
	"github.com/vovakirdan/gym2048/internal/env"
)

// ErrNotFound is returned when a named checkpoint does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Episode is the recorded result of one finished or abandoned game.
type Episode struct {
	ID        string
	EnvID     string
	Seed      uint64
	Score     int
	MaxTile   int
	Moves     int
	Outcome   string // "won", "lost" or "playing" when cut short
	CreatedAt time.Time
}

// Stats aggregates the episodes of one environment.
type Stats struct {
	Episodes  int
	Wins      int
	BestScore int
	AvgScore  float64
	BestTile  int
}

// Checkpoint is a named, saved environment state.
type Checkpoint struct {
	ID        string
	Name      string
	EnvID     string
	State     env.State
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// SQLite allows one writer at a time. A single connection queues
	// concurrent callers in the pool instead of failing them with
	// SQLITE_BUSY; the busy timeout covers other processes.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot set busy timeout: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			env_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			score INTEGER NOT NULL,
			max_tile INTEGER NOT NULL,
			moves INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_env_id ON episodes(env_id);
		CREATE INDEX IF NOT EXISTS idx_episodes_top ON episodes(env_id, score DESC);

		CREATE TABLE IF NOT EXISTS checkpoints (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			env_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			state BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveEpisode records an episode result and returns its ID. A missing ID is
// generated.
func (s *Store) SaveEpisode(ctx context.Context, e Episode) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO episodes (id, env_id, seed, score, max_tile, moves, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.EnvID, int64(e.Seed), e.Score, e.MaxTile, e.Moves, e.Outcome,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save episode: %w", err)
	}
	return e.ID, nil
}

// TopEpisodes retrieves the best N episodes for the given environment.
// Results are ordered by score descending.
func (s *Store) TopEpisodes(ctx context.Context, envID string, limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, env_id, seed, score, max_tile, moves, outcome, created_at
		 FROM episodes
		 WHERE env_id = ?
		 ORDER BY score DESC, created_at ASC
		 LIMIT ?`,
		envID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		var seed int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.EnvID, &seed, &e.Score, &e.MaxTile, &e.Moves, &e.Outcome, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Seed = uint64(seed)
		e.CreatedAt = parseTime(createdAt)
		episodes = append(episodes, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return episodes, nil
}

// HighScore returns the best score for the environment, or 0 if none.
func (s *Store) HighScore(ctx context.Context, envID string) (int, error) {
	var high sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(score) FROM episodes WHERE env_id = ?",
		envID,
	).Scan(&high)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	return int(high.Int64), nil
}

// EpisodeStats aggregates all episodes of the environment.
func (s *Store) EpisodeStats(ctx context.Context, envID string) (Stats, error) {
	var st Stats
	var best, tile sql.NullInt64
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
		        MAX(score), AVG(score), MAX(max_tile)
		 FROM episodes WHERE env_id = ?`,
		engine.Won.String(), envID,
	).Scan(&st.Episodes, &st.Wins, &best, &avg, &tile)
	if err != nil {
		return st, fmt.Errorf("storage: cannot query stats: %w", err)
	}
	st.BestScore = int(best.Int64)
	st.AvgScore = avg.Float64
	st.BestTile = int(tile.Int64)
	return st, nil
}

// ClearEpisodes removes all episodes of the environment.
func (s *Store) ClearEpisodes(ctx context.Context, envID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM episodes WHERE env_id = ?", envID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	return nil
}

// SaveCheckpoint stores state under name, replacing any checkpoint with the
// same name.
func (s *Store) SaveCheckpoint(ctx context.Context, name, envID string, state env.State) (Checkpoint, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("storage: cannot encode checkpoint: %w", err)
	}

	cp := Checkpoint{
		ID:        uuid.NewString(),
		Name:      name,
		EnvID:     envID,
		State:     state,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (id, name, env_id, score, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   id = excluded.id, env_id = excluded.env_id, score = excluded.score,
		   state = excluded.state, created_at = excluded.created_at`,
		cp.ID, name, envID, state.Snapshot.Score, data, cp.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("storage: cannot save checkpoint: %w", err)
	}
	return cp, nil
}

// LoadCheckpoint returns the checkpoint saved under name.
func (s *Store) LoadCheckpoint(ctx context.Context, name string) (Checkpoint, error) {
	var cp Checkpoint
	var data []byte
	var createdAt any
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, env_id, state, created_at FROM checkpoints WHERE name = ?",
		name,
	).Scan(&cp.ID, &cp.Name, &cp.EnvID, &data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cp, fmt.Errorf("%w: checkpoint %q", ErrNotFound, name)
	}
	if err != nil {
		return cp, fmt.Errorf("storage: cannot load checkpoint: %w", err)
	}
	if err := json.Unmarshal(data, &cp.State); err != nil {
		return cp, fmt.Errorf("storage: cannot decode checkpoint %q: %w", name, err)
	}
	cp.CreatedAt = parseTime(createdAt)
	return cp, nil
}

// CheckpointInfo summarizes a checkpoint without decoding its state.
type CheckpointInfo struct {
	Name      string
	EnvID     string
	Score     int
	CreatedAt time.Time
}

// ListCheckpoints returns all checkpoints, newest first.
func (s *Store) ListCheckpoints(ctx context.Context) ([]CheckpointInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, env_id, score, created_at FROM checkpoints ORDER BY created_at DESC, name ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query checkpoints: %w", err)
	}
	defer rows.Close()

	var infos []CheckpointInfo
	for rows.Next() {
		var info CheckpointInfo
		var createdAt any
		if err := rows.Scan(&info.Name, &info.EnvID, &info.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		info.CreatedAt = parseTime(createdAt)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return infos, nil
}

// DeleteCheckpoint removes the checkpoint saved under name.
func (s *Store) DeleteCheckpoint(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM checkpoints WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("storage: cannot delete checkpoint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot count deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: checkpoint %q", ErrNotFound, name)
	}
	return nil
}

const timeLayout = "2006-01-02 15:04:05"

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
