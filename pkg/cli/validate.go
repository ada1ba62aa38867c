package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fusa-lab/talos/pkg/cli/config"
	"github.com/fusa-lab/talos/pkg/utils/logging"
)

func cmdValidate() *cli.Command {
	var policyCfg config.Policy

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the policy file and the resulting situation catalog",
		Flags:   policyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			f, err := policyCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "policy validation failed")
			}
			logger.Info("Policy file validated",
				"path", policyCfg.Path(),
				"custom_situations", len(f.Situations),
			)

			svc, err := policyCfg.Catalog()
			if err != nil {
				return goerr.Wrap(err, "catalog validation failed")
			}
			logger.Info("Situation catalog built", "entries", svc.Len())

			if svc := policyCfg.ItemDef(); svc != nil {
				logger.Info("Item definition lookup configured")
			}

			logger.Info("Validation passed")
			return nil
		},
	}
}
