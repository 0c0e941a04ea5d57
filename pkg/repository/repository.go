package repository

import (
	"context"

	"github.com/nprepindia/Solution-Generation/pkg/model"
)

// Store defines read access to the nursing knowledge base
type Store interface {
	// SearchBookChunks performs similarity search over textbook chunks
	// (3072-dimension space), ordered by descending similarity.
	SearchBookChunks(ctx context.Context, embedding []float32, limit int) ([]*model.RetrievedPassage, error)

	// SearchVideoSegments performs similarity search over video transcript
	// segments (1536-dimension halfvec space), ordered by descending similarity.
	SearchVideoSegments(ctx context.Context, embedding []float32, limit int) ([]*model.RetrievedVideoSegment, error)

	// ListSubjects retrieves all subject tags for classification
	ListSubjects(ctx context.Context) ([]*model.Tag, error)

	// ListTopics retrieves all topic tags for classification
	ListTopics(ctx context.Context) ([]*model.Tag, error)

	// ListCategories retrieves all category tags for classification
	ListCategories(ctx context.Context) ([]*model.Tag, error)

	// Ping checks store connectivity
	Ping(ctx context.Context) error

	// Close releases the connection pool
	Close() error
}
