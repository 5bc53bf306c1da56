package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/vision-rename/internal/cli"
	"github.com/fpang/vision-rename/internal/filehandler"
	"github.com/fpang/vision-rename/internal/journal"
	"github.com/fpang/vision-rename/internal/rename"
)

// Rename flags
var (
	pickFlag       bool
	recursiveFlag  bool
	dryRunFlag     bool
	datePrefixFlag bool
	journalFlag    string
)

var renameCmd = &cobra.Command{
	Use:   "rename [paths...]",
	Short: "Rename images (same as running vision-rename with paths)",
	Args:  cobra.ArbitraryArgs,
	Run:   runRename,
}

func addRenameFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose images with the native file dialog")
	cmd.Flags().BoolVarP(&recursiveFlag, "recursive", "r", false, "Walk directory arguments recursively")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show the new names without renaming anything")
	cmd.Flags().BoolVar(&datePrefixFlag, "date-prefix", false, "Prefix names with the EXIF capture date (YYYY-MM-DD_)")
	cmd.Flags().StringVar(&journalFlag, "journal", "", "Append applied renames to this journal (.zst for compressed)")
}

func init() {
	addRenameFlags(renameCmd)
}

// runRename is the main execution logic for a rename batch.
func runRename(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	paths := args
	if pickFlag {
		picked, err := cli.PickImages()
		if err != nil {
			log.Fatal().Err(err).Msg("File picker failed")
		}
		paths = append(paths, picked...)
	}

	expanded, err := filehandler.ExpandPaths(paths, filehandler.ScanOptions{Recursive: recursiveFlag})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read selection")
	}
	tasks := rename.NewTasks(expanded)

	svc, err := cli.NewService(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model client")
	}

	models, err := rename.CheckPreconditions(ctx, svc, tasks)
	if err != nil {
		cli.HandlePreconditionError(err, serverLabel())
	}

	model := cli.DefaultModel(cfg)
	if model == "" {
		model, err = cli.PromptForModel(os.Stdin, os.Stderr, models)
		if err != nil {
			log.Fatal().Err(err).Msg("No model selected")
		}
	}

	logRun("rename", map[string]bool{
		"dryRun":     dryRunFlag,
		"datePrefix": cfg.DatePrefix,
		"recursive":  recursiveFlag,
	})

	var observers []rename.Observer
	observers = append(observers, cli.NewReporter(os.Stdout, len(tasks)))

	var jw *journal.Writer
	if cfg.Journal != "" && !dryRunFlag {
		jw, err = journal.Create(cfg.Journal)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open journal")
		}
		observers = append(observers, jw)
	}

	log.Info().
		Int("images", len(tasks)).
		Str("model", model).
		Bool("dry_run", dryRunFlag).
		Msg("Starting rename batch")

	if dryRunFlag {
		fmt.Println("Mode: DRY RUN (no files will be renamed)")
	}

	renamer := rename.NewRenamer(cli.NewPreprocessor(cfg), svc, model, rename.Options{
		DryRun:     dryRunFlag,
		DatePrefix: cfg.DatePrefix,
	})

	start := time.Now()
	_, summary := rename.NewRunner(renamer, observers...).Run(ctx, tasks)
	fmt.Println(cli.FormatSummary(summary, time.Since(start)))

	if jw != nil {
		if err := jw.Close(); err != nil {
			log.Error().Err(err).Str("journal", cfg.Journal).Msg("Journal incomplete")
		} else if jw.Len() > 0 {
			fmt.Printf("Journal: %s (undo with: vision-rename undo %s)\n", cfg.Journal, cfg.Journal)
		}
	}

	if summary.SuccessCount < summary.Total {
		os.Exit(1)
	}
}
