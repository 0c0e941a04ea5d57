package solution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/nprepindia/Solution-Generation/pkg/model"
	"github.com/nprepindia/Solution-Generation/pkg/tool"
	"github.com/nprepindia/Solution-Generation/pkg/utils/logging"
)

const (
	classifyMaxIterations = 8
	classifyTimeout       = 60 * time.Second
)

// Classify tags a question with subject/topic/category drawn from the tag
// lists in the store. The agent gets the same retrieval tools as Generate
// but a tighter iteration and time budget.
func (u *UseCase) Classify(ctx context.Context, q *model.Question) (*model.Classification, error) {
	cls, err := u.classify(ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "question classification failed")
	}
	return cls, nil
}

func (u *UseCase) classify(ctx context.Context, q *model.Question) (*model.Classification, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()
	ctx = logging.With(ctx, logging.From(ctx).With("request_id", uuid.NewString()))

	subjects, err := u.store.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	topics, err := u.store.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := u.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := renderClassifyPrompt(subjects, topics, categories)
	if err != nil {
		return nil, err
	}

	cache := tool.NewCache()
	registry := tool.NewRegistry(
		tool.NewEmbedding(u.gemini, cache),
		tool.NewTextbookSearch(u.store, cache),
		tool.NewVideoSearch(u.store, cache),
	)

	text, _ := ExtractImages(q.Text)
	raw, err := u.runLoop(ctx, registry, systemPrompt, formatQuestion(text, q.Options), classifyMaxIterations)
	if err != nil {
		return nil, err
	}

	return ParseClassification(raw, tagSet(subjects), tagSet(topics), tagSet(categories))
}

func tagSet(tags []*model.Tag) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t.Name] = true
	}
	return set
}
