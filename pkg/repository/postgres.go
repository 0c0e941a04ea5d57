package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pgvector/pgvector-go"

	"github.com/nprepindia/Solution-Generation/pkg/model"
)

// Pool bounds. Searches are short-lived; connections are acquired per query
// and returned on every exit path by sqlx, so a small pool with idle and
// lifetime eviction keeps churn bounded.
const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxIdleTime = 5 * time.Minute
	connMaxLifetime = 30 * time.Minute
)

// postgresStore implements Store over PostgreSQL with the pgvector extension.
// Textbook chunks live in a vector(3072) column, video segments in a
// halfvec(1536) column.
type postgresStore struct {
	db *sqlx.DB
}

// NewPostgres opens a bounded connection pool to the knowledge base. The
// schema is managed elsewhere; this layer only reads it.
func NewPostgres(dsn string) (Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres connection")
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	db.SetConnMaxLifetime(connMaxLifetime)

	return &postgresStore{db: db}, nil
}

func (s *postgresStore) SearchBookChunks(ctx context.Context, embedding []float32, limit int) ([]*model.RetrievedPassage, error) {
	const query = `
		SELECT id, content, book_title, book_id, page_start, page_end,
		       COALESCE(chapter, '') AS chapter,
		       COALESCE(paragraph_number, 0) AS paragraph_number,
		       1 - (embedding <=> $1) AS score
		FROM book_chunks
		ORDER BY embedding <=> $1
		LIMIT $2`

	var passages []*model.RetrievedPassage
	if err := s.db.SelectContext(ctx, &passages, query, pgvector.NewVector(embedding), limit); err != nil {
		return nil, goerr.Wrap(err, "failed to search book chunks", goerr.V("limit", limit))
	}

	return passages, nil
}

func (s *postgresStore) SearchVideoSegments(ctx context.Context, embedding []float32, limit int) ([]*model.RetrievedVideoSegment, error) {
	const query = `
		SELECT video_id, time_start, time_end, transcript,
		       1 - (embedding <=> $1) AS score
		FROM video_segments
		ORDER BY embedding <=> $1
		LIMIT $2`

	var segments []*model.RetrievedVideoSegment
	if err := s.db.SelectContext(ctx, &segments, query, pgvector.NewHalfVector(embedding), limit); err != nil {
		return nil, goerr.Wrap(err, "failed to search video segments", goerr.V("limit", limit))
	}

	return segments, nil
}

func (s *postgresStore) ListSubjects(ctx context.Context) ([]*model.Tag, error) {
	return s.listTags(ctx, "subjects")
}

func (s *postgresStore) ListTopics(ctx context.Context) ([]*model.Tag, error) {
	return s.listTags(ctx, "topics")
}

func (s *postgresStore) ListCategories(ctx context.Context) ([]*model.Tag, error) {
	return s.listTags(ctx, "categories")
}

func (s *postgresStore) listTags(ctx context.Context, table string) ([]*model.Tag, error) {
	// table is one of three fixed names, never user input
	var tags []*model.Tag
	if err := s.db.SelectContext(ctx, &tags, `SELECT id, name FROM `+table+` ORDER BY id`); err != nil {
		return nil, goerr.Wrap(err, "failed to list tags", goerr.V("table", table))
	}

	return tags, nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return goerr.Wrap(err, "failed to ping knowledge base")
	}
	return nil
}

func (s *postgresStore) Close() error {
	if err := s.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close connection pool")
	}
	return nil
}
