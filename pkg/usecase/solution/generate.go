package solution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/nprepindia/Solution-Generation/pkg/model"
	"github.com/nprepindia/Solution-Generation/pkg/tool"
	"github.com/nprepindia/Solution-Generation/pkg/utils/logging"
)

const (
	solveMaxIterations = 15
	solveTimeout       = 120 * time.Second
)

// Generate answers one question. It builds a per-request embedding cache
// and tool set, runs the agent loop under a wall-clock budget, and parses
// the final output into a validated SolutionOutput. Every internal failure
// surfaces as one "solution generation failed" error carrying the cause.
func (u *UseCase) Generate(ctx context.Context, q *model.Question) (*model.SolutionOutput, error) {
	sol, err := u.generate(ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "solution generation failed")
	}
	return sol, nil
}

func (u *UseCase) generate(ctx context.Context, q *model.Question) (*model.SolutionOutput, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, solveTimeout)
	defer cancel()
	ctx = logging.With(ctx, logging.From(ctx).With("request_id", uuid.NewString()))

	text, extracted := ExtractImages(q.Text)
	images := append(append([]model.ExtractedImage{}, q.Images...), extracted...)

	cache := tool.NewCache()
	cache.Clear()
	registry := tool.NewRegistry(
		tool.NewEmbedding(u.gemini, cache),
		tool.NewTextbookSearch(u.store, cache),
		tool.NewVideoSearch(u.store, cache),
	)

	systemPrompt, err := renderSolvePrompt(u.solvePrompt, len(images))
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("generating solution",
		"images", len(images),
		"tools", registry.Names(),
	)

	raw, err := u.runLoop(ctx, registry, systemPrompt, formatQuestion(text, q.Options), solveMaxIterations)
	if err != nil {
		return nil, err
	}

	return ParseSolution(raw)
}

// Solve runs the full pipeline: generate a solution, then derive the
// difficulty grade and the classification concurrently. The two derived
// calls share nothing but the finished solution.
func (u *UseCase) Solve(ctx context.Context, q *model.Question) (*model.SolvedQuestion, error) {
	sol, err := u.Generate(ctx, q)
	if err != nil {
		return nil, err
	}

	var (
		grade *model.GradeOutput
		cls   *model.Classification
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		g, err := u.Grade(egCtx, q, sol)
		if err != nil {
			return err
		}
		grade = g
		return nil
	})
	eg.Go(func() error {
		c, err := u.Classify(egCtx, q)
		if err != nil {
			return err
		}
		cls = c
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &model.SolvedQuestion{
		Solution:       sol,
		Grade:          grade,
		Classification: cls,
	}, nil
}
