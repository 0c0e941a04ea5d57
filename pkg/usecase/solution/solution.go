// Package solution generates answers for multiple-choice nursing exam
// questions by driving a tool-calling LLM agent over a textbook/video
// knowledge base, then deriving a difficulty grade and a curriculum
// classification from the result.
package solution

import (
	"github.com/nprepindia/Solution-Generation/pkg/adapter"
	"github.com/nprepindia/Solution-Generation/pkg/repository"
)

// UseCase holds the collaborators for question solving. It carries no
// per-request state; embedding caches and tool sets are built fresh inside
// each call so concurrent requests stay isolated.
type UseCase struct {
	gemini adapter.Gemini
	store  repository.Store

	solvePrompt string
}

type Option func(*UseCase)

// WithSolvePrompt overrides the embedded system prompt for solution
// generation. The prompt is configuration, not design: callers own its
// medical content.
func WithSolvePrompt(prompt string) Option {
	return func(u *UseCase) {
		u.solvePrompt = prompt
	}
}

func New(gemini adapter.Gemini, store repository.Store, opts ...Option) *UseCase {
	u := &UseCase{
		gemini: gemini,
		store:  store,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}
