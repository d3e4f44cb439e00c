package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/kmare/flowsync/pkg/graph"
	"github.com/kmare/flowsync/pkg/log"
	"github.com/kmare/flowsync/pkg/registry"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check a flow definition against the graph invariants",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "flow",
				Aliases:  []string{"f"},
				Usage:    "Path to the flow definition JSON file",
				Required: true,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("validate")

			definition, err := loadFlow(command.String("flow"))
			if err != nil {
				return err
			}

			model := graph.NewModel(registry.Default(), logger)

			err = model.Load(definition)
			if err != nil {
				return fmt.Errorf("flow %q is invalid: %w", definition.Name, err)
			}

			fmt.Printf("flow %q is valid: %d nodes, %d edges\n",
				definition.Name, len(definition.Nodes), len(definition.Edges))

			return nil
		},
	}
}
