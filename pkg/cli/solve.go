package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/nprepindia/Solution-Generation/pkg/model"
)

// readQuestion loads and validates a question from a JSON file.
func readQuestion(path string) (*model.Question, error) {
	if path == "" {
		return nil, goerr.New("input file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
	}

	var q model.Question
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, goerr.Wrap(err, "failed to parse question JSON")
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	return &q, nil
}

// printJSON writes v as indented JSON to path, or stdout when path is empty.
func printJSON(c *cli.Command, path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode output")
	}

	if path == "" {
		fmt.Fprintf(c.Root().Writer, "%s\n", out)
		return nil
	}

	if err := os.WriteFile(path, append(out, '\n'), 0644); err != nil {
		return goerr.Wrap(err, "failed to write output file", goerr.V("path", path))
	}
	return nil
}

func newSpinner(message string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	return s
}

func solveCommand() *cli.Command {
	var (
		cfg          config
		inputPath    string
		outputPath   string
		solutionOnly bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON file containing the question",
			Sources:     cli.EnvVars("SOLGEN_INPUT"),
			Destination: &inputPath,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Path to write the result JSON (default: stdout)",
			Destination: &outputPath,
		},
		&cli.BoolFlag{
			Name:        "solution-only",
			Usage:       "Skip difficulty grading and classification",
			Destination: &solutionOnly,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "solve",
		Usage: "Solve a multiple choice question against the knowledge base",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			q, err := readQuestion(inputPath)
			if err != nil {
				return err
			}

			uc, store, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sp := newSpinner("solving...")
			sp.Start()

			var result any
			if solutionOnly {
				result, err = uc.Generate(ctx, q)
			} else {
				result, err = uc.Solve(ctx, q)
			}
			sp.Stop()
			if err != nil {
				return err
			}

			return printJSON(c, outputPath, result)
		},
	}
}
