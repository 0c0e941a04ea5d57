package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/nprepindia/Solution-Generation/pkg/model"
)

// gradeInput is the file format for the grade command: a question plus
// its solved answer and explanation.
type gradeInput struct {
	model.Question
	Answer         *int   `json:"answer"`
	AnsDescription string `json:"ans_description"`
}

func gradeCommand() *cli.Command {
	var (
		cfg        config
		inputPath  string
		outputPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON file containing the question, answer and explanation",
			Sources:     cli.EnvVars("SOLGEN_INPUT"),
			Destination: &inputPath,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Path to write the result JSON (default: stdout)",
			Destination: &outputPath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "grade",
		Usage: "Rate the difficulty of a solved question",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			if inputPath == "" {
				return goerr.New("input file path is required")
			}
			data, err := os.ReadFile(inputPath)
			if err != nil {
				return goerr.Wrap(err, "failed to read input file", goerr.V("path", inputPath))
			}

			var in gradeInput
			if err := json.Unmarshal(data, &in); err != nil {
				return goerr.Wrap(err, "failed to parse input JSON")
			}
			if err := in.Question.Validate(); err != nil {
				return err
			}
			if in.Answer == nil {
				return goerr.New("answer is required")
			}
			if in.AnsDescription == "" {
				return goerr.New("ans_description is required")
			}

			sol := &model.SolutionOutput{
				Answer:         *in.Answer,
				AnsDescription: in.AnsDescription,
			}

			uc, store, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sp := newSpinner("grading...")
			sp.Start()
			grade, err := uc.Grade(ctx, &in.Question, sol)
			sp.Stop()
			if err != nil {
				return err
			}

			return printJSON(c, outputPath, grade)
		},
	}
}
