package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/nprepindia/Solution-Generation/pkg/model"
)

func validQuestion() *model.Question {
	return &model.Question{
		Text: "Which electrolyte imbalance causes peaked T waves?",
		Options: []string{
			"Hypokalemia",
			"Hyperkalemia",
			"Hyponatremia",
			"Hypercalcemia",
		},
	}
}

func TestQuestionValidate(t *testing.T) {
	gt.NoError(t, validQuestion().Validate())

	t.Run("blank text", func(t *testing.T) {
		q := validQuestion()
		q.Text = "   "
		gt.Error(t, q.Validate())
	})

	t.Run("wrong option count", func(t *testing.T) {
		q := validQuestion()
		q.Options = q.Options[:3]
		gt.Error(t, q.Validate())

		q = validQuestion()
		q.Options = append(q.Options, "Hypomagnesemia")
		gt.Error(t, q.Validate())
	})

	t.Run("blank option", func(t *testing.T) {
		q := validQuestion()
		q.Options[2] = ""
		gt.Error(t, q.Validate())
	})
}

func TestDifficultyValidate(t *testing.T) {
	for _, d := range []model.Difficulty{
		model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard,
	} {
		gt.NoError(t, d.Validate())
	}

	gt.Error(t, model.Difficulty("extreme").Validate())
	gt.Error(t, model.Difficulty("").Validate())
}
