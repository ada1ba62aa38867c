package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/service/report"
)

func cmdClassify() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Determine the ASIL for an S/E/C combination (ISO 26262-3:2018 Table 4)",
		ArgsUsage: "<severity> <exposure> <controllability>",
		Description: `Ratings are given as symbols, e.g.:

   talos classify S3 E4 C3

E4 is treated as E3 for classification.`,
		Action: func(ctx context.Context, c *cli.Command) error {
			args := c.Args().Slice()
			if len(args) != 3 {
				return goerr.New("exactly three ratings are required: severity, exposure, controllability")
			}

			s, err := types.ParseSeverity(args[0])
			if err != nil {
				return err
			}
			e, err := types.ParseExposure(args[1])
			if err != nil {
				return err
			}
			cl, err := types.ParseControllability(args[2])
			if err != nil {
				return err
			}

			asil, err := types.ClassifyASIL(s, e, cl)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "%s / %s / %s -> %s\n", s, e.Normalize(), cl, report.ColorASIL(asil))
			if asil.RequiresSafetyGoal() {
				fmt.Fprintln(os.Stdout, "A safety goal is required for this hazardous event.")
			}
			return nil
		},
	}
}
