// Command flowsync runs, validates and chats with flow definitions from
// the terminal.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/kmare/flowsync/pkg/log"
)

func main() {
	logger := log.WithModule("cli")

	command := &cli.Command{
		Name:                  "flowsync",
		Usage:                 "Run and inspect agent flows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			validateCommand(),
			chatCommand(),
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		logger.Error("Failed to run flowsync", "error", err)
		os.Exit(1)
	}
}
