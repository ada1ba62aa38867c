package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fusa-lab/talos/pkg/cli/config"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/usecase"
)

func cmdChat() *cli.Command {
	var sessionID string
	var itemName string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "session",
			Usage:       "Existing session ID to continue",
			Sources:     cli.EnvVars("TALOS_CHAT_SESSION"),
			Destination: &sessionID,
		},
		&cli.StringFlag{
			Name:        "item",
			Usage:       "Item name to start a new session for",
			Sources:     cli.EnvVars("TALOS_CHAT_ITEM"),
			Destination: &itemName,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Drive a HARA session interactively with the agent",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if sessionID == "" && itemName == "" {
				return goerr.New("either --session or --item is required")
			}

			uc, repo, err := buildUseCases(ctx, &repoCfg, &geminiCfg, &policyCfg)
			if err != nil {
				return err
			}
			defer closeRepo(repo)

			if uc.Chat == nil {
				return goerr.Wrap(usecase.ErrLLMNotConfigured, "chat requires --gemini-project")
			}

			id := model.SessionID(sessionID)
			if id == "" {
				sess, err := uc.Session.Create(ctx, itemName, "")
				if err != nil {
					return err
				}
				id = sess.ID
				fmt.Printf("Started session %s for %q\n", id, itemName)
			} else {
				sess, err := uc.Session.Get(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("Continuing session %s for %q (stage: %s)\n", id, sess.ItemName, sess.Stage)
			}
			fmt.Println(`Type a message, or "exit" to quit.`)

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				reply, err := uc.Chat.Chat(ctx, id, line)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
					continue
				}
				fmt.Println(reply)
			}
			return scanner.Err()
		},
	}
}
