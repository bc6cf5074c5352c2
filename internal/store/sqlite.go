package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dshills/codechunk/pkg/types"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Open creates a new SQLite store and applies pending migrations.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Unchanged reports whether path is stored with the given content hash.
func (s *SQLiteStore) Unchanged(ctx context.Context, path, contentHash string) (bool, error) {
	var stored string
	err := s.db.QueryRowContext(ctx,
		"SELECT content_hash FROM files WHERE file_path = ?", path).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query file hash: %w", err)
	}
	return stored == contentHash, nil
}

// SaveResult upserts the file record and replaces its chunks in one
// transaction.
func (s *SQLiteStore) SaveResult(ctx context.Context, res types.ProcessingResult, contentHash string, sizeBytes int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	language := ""
	if len(res.Chunks) > 0 {
		language = res.Chunks[0].Language
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO files (file_path, language, content_hash, size_bytes, strategy, indexed_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(file_path) DO UPDATE SET
			language = excluded.language,
			content_hash = excluded.content_hash,
			size_bytes = excluded.size_bytes,
			strategy = excluded.strategy,
			indexed_at = CURRENT_TIMESTAMP`,
		res.FilePath, language, contentHash, sizeBytes, res.StrategyName); err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	var fileID int64
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM files WHERE file_path = ?", res.FilePath).Scan(&fileID); err != nil {
		return fmt.Errorf("failed to read file id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE file_id = ?", fileID); err != nil {
		return fmt.Errorf("failed to delete old chunks: %w", err)
	}

	for i := range res.Chunks {
		c := &res.Chunks[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO chunks (chunk_id, file_id, content, start_line, end_line, language, strategy)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, fileID, c.Content, c.StartLine, c.EndLine, c.Language, c.Metadata["strategy"]); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// GetFileByPath returns the stored file record for path.
func (s *SQLiteStore) GetFileByPath(ctx context.Context, path string) (*File, error) {
	f := &File{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, file_path, language, content_hash, size_bytes, strategy, indexed_at
		FROM files WHERE file_path = ?`, path).
		Scan(&f.ID, &f.FilePath, &f.Language, &f.ContentHash, &f.SizeBytes, &f.Strategy, &f.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file: %w", err)
	}
	return f, nil
}

// ListChunksByFile returns stored chunks ordered by start line.
func (s *SQLiteStore) ListChunksByFile(ctx context.Context, fileID int64) ([]*Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, file_id, content, start_line, end_line, language, strategy
		FROM chunks WHERE file_id = ? ORDER BY start_line`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []*Chunk
	for rows.Next() {
		c := &Chunk{}
		if err := rows.Scan(&c.ChunkID, &c.FileID, &c.Content, &c.StartLine, &c.EndLine, &c.Language, &c.Strategy); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// CountChunks returns the total number of stored chunks.
func (s *SQLiteStore) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}
