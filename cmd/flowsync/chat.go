package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/kmare/flowsync/pkg/chat"
	"github.com/kmare/flowsync/pkg/log"
	"github.com/kmare/flowsync/pkg/models"
)

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Converse with a flow, one run per message",
		Flags: append(executorFlags(),
			&cli.StringFlag{
				Name:     "flow",
				Aliases:  []string{"f"},
				Usage:    "Path to the flow definition JSON file",
				Required: true,
			},
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("chat")

			definition, err := loadFlow(command.String("flow"))
			if err != nil {
				return err
			}

			ed, err := newEditor(ctx, command, logger)
			if err != nil {
				return err
			}
			defer ed.Close()

			err = ed.Graph.Load(definition)
			if err != nil {
				return err
			}

			fmt.Printf("chatting with %q (empty line exits)\n", definition.Name)

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() || scanner.Text() == "" {
					return scanner.Err()
				}

				err := ed.Chat.Send(ctx, scanner.Text())
				if err != nil && !errors.Is(err, chat.ErrNoFlow) {
					logger.Warn("Run failed", "error", err)
				}

				messages := ed.Chat.Messages()
				if len(messages) == 0 {
					continue
				}

				last := messages[len(messages)-1]
				if last.Role != models.ChatRoleUser {
					fmt.Printf("%s: %s\n", last.Role, last.Content)
				}
			}
		},
	}
}
