package solution

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/nprepindia/Solution-Generation/pkg/model"
	"github.com/nprepindia/Solution-Generation/pkg/utils/logging"
)

const gradeTimeout = 60 * time.Second

// Grade rates the difficulty of a solved question. No retrieval is needed;
// the model sees the question, the correct answer and its explanation, and
// answers in a single turn.
func (u *UseCase) Grade(ctx context.Context, q *model.Question, sol *model.SolutionOutput) (*model.GradeOutput, error) {
	grade, err := u.grade(ctx, q, sol)
	if err != nil {
		return nil, goerr.Wrap(err, "question grading failed")
	}
	return grade, nil
}

func (u *UseCase) grade(ctx context.Context, q *model.Question, sol *model.SolutionOutput) (*model.GradeOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, gradeTimeout)
	defer cancel()
	ctx = logging.With(ctx, logging.From(ctx).With("request_id", uuid.NewString()))

	text, _ := ExtractImages(q.Text)

	var b strings.Builder
	b.WriteString(formatQuestion(text, q.Options))
	fmt.Fprintf(&b, "\nCorrect answer: option %d\n", sol.Answer)
	fmt.Fprintf(&b, "Explanation: %s\n", sol.AnsDescription)

	raw, err := u.runLoop(ctx, nil, gradePromptRaw, b.String(), 1)
	if err != nil {
		return nil, err
	}

	return ParseGrade(raw)
}
