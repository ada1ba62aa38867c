package cli

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fusa-lab/talos/pkg/cli/config"
	httpctrl "github.com/fusa-lab/talos/pkg/controller/http"
	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/usecase"
	"github.com/fusa-lab/talos/pkg/utils/logging"
)

// closeRepo closes repository backends that hold external connections.
func closeRepo(repo interfaces.Repository) {
	if c, ok := repo.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}
}

// buildUseCases wires the repository, catalog, item definitions and the
// optional LLM client into the use case aggregate.
func buildUseCases(ctx context.Context, repoCfg *config.Repository, geminiCfg *config.Gemini, policyCfg *config.Policy) (*usecase.UseCases, interfaces.Repository, error) {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}

	catalogSvc, err := policyCfg.Catalog()
	if err != nil {
		closeRepo(repo)
		return nil, nil, goerr.Wrap(err, "failed to build situation catalog")
	}

	ucOpts := []usecase.Option{}
	if svc := policyCfg.ItemDef(); svc != nil {
		ucOpts = append(ucOpts, usecase.WithItemDef(svc))
	}

	llmClient, err := geminiCfg.Configure(ctx)
	if err != nil {
		closeRepo(repo)
		return nil, nil, goerr.Wrap(err, "failed to configure LLM client")
	}
	if llmClient != nil {
		ucOpts = append(ucOpts, usecase.WithLLMClient(llmClient))
		logging.Default().Info("Gemini LLM client enabled")
	} else {
		logging.Default().Info("Gemini not configured, agent features are disabled")
	}

	return usecase.New(repo, catalogSvc, ucOpts...), repo, nil
}

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TALOS_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, repo, err := buildUseCases(ctx, &repoCfg, &geminiCfg, &policyCfg)
			if err != nil {
				return err
			}
			defer closeRepo(repo)

			handler := httpctrl.New(uc)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
