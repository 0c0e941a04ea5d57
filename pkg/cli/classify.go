package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

func classifyCommand() *cli.Command {
	var (
		cfg        config
		inputPath  string
		outputPath string
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
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "classify",
		Usage: "Assign subject, topic and category tags to a question",
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

			sp := newSpinner("classifying...")
			sp.Start()
			cls, err := uc.Classify(ctx, q)
			sp.Stop()
			if err != nil {
				return err
			}

			return printJSON(c, outputPath, cls)
		},
	}
}
