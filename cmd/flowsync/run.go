package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	cli "github.com/urfave/cli/v3"

	"github.com/kmare/flowsync/pkg/channels/gochannel"
	"github.com/kmare/flowsync/pkg/editor"
	"github.com/kmare/flowsync/pkg/execution"
	"github.com/kmare/flowsync/pkg/log"
	"github.com/kmare/flowsync/pkg/models"
	"github.com/kmare/flowsync/pkg/registry"
	"github.com/kmare/flowsync/pkg/telemetry"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute a flow against an executor and print its output",
		Flags: append(executorFlags(),
			&cli.StringFlag{
				Name:     "flow",
				Aliases:  []string{"f"},
				Usage:    "Path to the flow definition JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "User input for the run",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Abort the run if no terminal event arrives in time",
				Value: 2 * time.Minute,
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OpenTelemetry traces for the run",
				Sources: cli.EnvVars("FLOWSYNC_TRACING"),
			},
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("run")

			if command.Bool("tracing") {
				shutdown, err := telemetry.Setup(ctx, "flowsync")
				if err != nil {
					return fmt.Errorf("set up tracing: %w", err)
				}

				defer func() {
					if err := shutdown(context.Background()); err != nil {
						logger.Warn("Failed to flush traces", "error", err)
					}
				}()
			}

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

			runCtx, cancel := context.WithTimeout(ctx, command.Duration("timeout"))
			defer cancel()

			err = ed.Client.ExecuteFlow(runCtx, ed.Graph.Definition(definition.Name, definition.Description), command.String("input"))
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}

			for _, node := range ed.Graph.Nodes() {
				logger.Debug("node finished", "node", node.ID, "kind", node.Kind, "status", node.Status)
			}

			output, ok := ed.Graph.OutputText()
			if !ok {
				logger.Warn("The flow completed without producing output")

				return nil
			}

			fmt.Println(output)

			return nil
		},
	}
}

func executorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "executor-url",
			Usage:   "WebSocket URL of the flow executor",
			Value:   "ws://localhost:8765/ws",
			Sources: cli.EnvVars("EXECUTOR_URL"),
		},
		&cli.BoolFlag{
			Name:  "local",
			Usage: "Run against the in-process stub executor instead of a backend",
		},
	}
}

// newEditor wires an editor against either the websocket executor or the
// in-process stub.
func newEditor(ctx context.Context, command *cli.Command, logger *slog.Logger) (*editor.Editor, error) {
	reg := registry.Default()

	if !command.Bool("local") {
		transport := execution.NewWebsocketTransport(command.String("executor-url"), logger)

		return editor.New(reg, transport, logger), nil
	}

	pubsub := gochannel.NewChannel(watermill.NewSlogLogger(logger))

	err := gochannel.NewLocalExecutor(pubsub, logger).Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("start local executor: %w", err)
	}

	return editor.New(reg, gochannel.NewTransport(pubsub), logger), nil
}

func loadFlow(path string) (*models.FlowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow file: %w", err)
	}

	var definition models.FlowDefinition

	err = json.Unmarshal(data, &definition)
	if err != nil {
		return nil, fmt.Errorf("decode flow file: %w", err)
	}

	return &definition, nil
}
