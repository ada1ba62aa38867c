package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fusa-lab/talos/pkg/cli/config"
	"github.com/fusa-lab/talos/pkg/service/report"
	"github.com/fusa-lab/talos/pkg/usecase"
	"github.com/fusa-lab/talos/pkg/utils/logging"
)

func cmdAssess() *cli.Command {
	var items []string
	var parallel int
	var output string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "item",
			Usage:       "Item name to assess (repeatable)",
			Required:    true,
			Sources:     cli.EnvVars("TALOS_ASSESS_ITEM"),
			Destination: &items,
		},
		&cli.IntFlag{
			Name:        "parallel",
			Usage:       "Number of items assessed concurrently",
			Value:       1,
			Sources:     cli.EnvVars("TALOS_ASSESS_PARALLEL"),
			Destination: &parallel,
		},
		&cli.StringFlag{
			Name:        "output",
			Usage:       "Report destination: a directory or a gs://bucket[/prefix] URL",
			Value:       "./reports",
			Sources:     cli.EnvVars("TALOS_ASSESS_OUTPUT"),
			Destination: &output,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "assess",
		Aliases: []string{"a"},
		Usage:   "Run the full HARA pipeline unattended for one or more items",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, repo, err := buildUseCases(ctx, &repoCfg, &geminiCfg, &policyCfg)
			if err != nil {
				return err
			}
			defer closeRepo(repo)

			if uc.Assess == nil {
				return goerr.Wrap(usecase.ErrLLMNotConfigured, "assess requires --gemini-project")
			}

			results, err := uc.Assess.Run(ctx, usecase.AssessOption{
				Items:    items,
				Parallel: parallel,
				Output:   output,
			})
			if err != nil {
				return err
			}

			var failed int
			for _, r := range results {
				if r.Err != nil {
					failed++
					logging.Default().Error("assessment failed",
						"item", r.ItemName,
						"session_id", r.SessionID,
						"error", r.Err.Error(),
					)
					continue
				}

				sess, err := uc.Session.Get(ctx, r.SessionID)
				if err != nil {
					return err
				}
				report.Summary(os.Stdout, sess)
				if r.Report != "" {
					fmt.Fprintf(os.Stdout, "  Report:  %s\n", r.Report)
				}
				fmt.Fprintln(os.Stdout)
			}

			if failed > 0 {
				return goerr.New("some assessments failed",
					goerr.V("failed", failed), goerr.V("total", len(results)))
			}
			return nil
		},
	}
}
