package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/nprepindia/Solution-Generation/pkg/tool"
)

func checkCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "check",
		Usage: "Verify connectivity to the knowledge base and Gemini",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()
			w := c.Root().Writer

			store, err := cfg.newStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintf(w, "database: ok\n")

			subjects, err := store.ListSubjects(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list subjects")
			}
			topics, err := store.ListTopics(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list topics")
			}
			categories, err := store.ListCategories(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list categories")
			}
			fmt.Fprintf(w, "tags: %d subjects, %d topics, %d categories\n",
				len(subjects), len(topics), len(categories))

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			for _, dim := range []tool.Dimension{tool.DimensionBooks, tool.DimensionVideos} {
				if _, err := gemini.Embedding(ctx, "connectivity check", int32(dim)); err != nil {
					return goerr.Wrap(err, "embedding probe failed", goerr.V("dimension", dim))
				}
			}
			fmt.Fprintf(w, "gemini: ok\n")

			return nil
		},
	}
}
