package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/vision-rename/internal/cli"
	"github.com/fpang/vision-rename/internal/journal"
	"github.com/fpang/vision-rename/internal/mcpserver"
	"github.com/fpang/vision-rename/internal/rename"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models offered by the model server",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc, err := cli.NewService(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create model client")
		}
		models, err := svc.ListModels(ctx)
		if err != nil {
			log.Fatal().Err(err).Str("server", serverLabel()).Msg("Failed to list models")
		}
		if len(models) == 0 {
			fmt.Fprintln(os.Stderr, "No models available")
			os.Exit(1)
		}
		fmt.Print(cli.FormatModels(models))
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether the model server is reachable (exit status 0 or 1)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := cli.NewService(context.Background(), cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create model client")
		}
		if !svc.CheckConnection(context.Background()) {
			fmt.Printf("Cannot reach %s\n", serverLabel())
			os.Exit(1)
		}
		fmt.Printf("Connected to %s\n", serverLabel())
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <journal>",
	Short: "Revert the renames recorded in a journal, newest first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		entries, err := journal.Read(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("journal", args[0]).Msg("Failed to read journal")
		}

		results, err := journal.Undo(ctx, entries)
		restored := 0
		for _, r := range results {
			fmt.Println(cli.FormatUndo(r))
			if r.Restored {
				restored++
			}
		}
		fmt.Printf("Restored %d of %d\n", restored, len(entries))
		if err != nil {
			log.Fatal().Err(err).Msg("Undo interrupted")
		}
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve check_connection, list_models and rename_images as MCP tools over stdio",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		svc, err := cli.NewService(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create model client")
		}

		logRun("mcp", map[string]bool{"datePrefix": cfg.DatePrefix})

		srv := mcpserver.New(version, &mcpserver.Dependencies{
			Service:      svc,
			Preparer:     cli.NewPreprocessor(cfg),
			Options:      rename.Options{DatePrefix: cfg.DatePrefix},
			DefaultModel: cli.DefaultModel(cfg),
		})
		if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("MCP server stopped")
		}
	},
}
