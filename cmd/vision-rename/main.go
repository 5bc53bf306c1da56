package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fpang/vision-rename/internal/config"
	"github.com/fpang/vision-rename/internal/logging"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=... -X main.buildTime=...".
var (
	version   = "dev"
	commit    = ""
	buildTime = ""
)

// Global flags
var (
	configFlag   string
	baseURLFlag  string
	providerFlag string
	logLevelFlag string
	modelFlag    string
)

// cfg is resolved in PersistentPreRunE before any command runs.
var (
	cfg       config.Config
	startedAt time.Time
)

// rootCmd renames the given images; the subcommands cover the rest.
var rootCmd = &cobra.Command{
	Use:   "vision-rename [paths...]",
	Short: "Rename images with names suggested by a local vision model",
	Long: `vision-rename sends each image to a vision-capable model served by LM Studio
(or any OpenAI-compatible server) and renames the file to the short descriptive
name the model suggests. Images are processed one at a time, in order; a failure
on one image never stops the rest. Names never overwrite an existing file:
collisions get a _1, _2, ... suffix.

Examples:
  vision-rename ~/Pictures/IMG_0001.jpg ~/Pictures/IMG_0002.png
  vision-rename -m llava-v1.5-7b ~/Pictures/trip --recursive
  vision-rename --pick --dry-run
  vision-rename --journal renames.jsonl.zst ~/Pictures/trip
  vision-rename undo renames.jsonl.zst`,
	Version:           version,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	Run:               runRename,
	SilenceUsage:      true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFlag, "config", "", "Config file (default $XDG_CONFIG_HOME/vision-rename/config.yaml)")
	pf.StringVar(&baseURLFlag, "base-url", "", "Model server address (default http://localhost:1234)")
	pf.StringVar(&providerFlag, "provider", "", "Model provider: local or gemini")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVarP(&modelFlag, "model", "m", "", "Model id (prompted from the listed models when empty)")

	addRenameFlags(rootCmd)
	rootCmd.AddCommand(renameCmd, modelsCmd, checkCmd, undoCmd, mcpCmd)
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"base-url":    config.KeyBaseURL,
	"provider":    config.KeyProvider,
	"log-level":   config.KeyLogLevel,
	"model":       config.KeyModel,
	"date-prefix": config.KeyDatePrefix,
	"journal":     config.KeyJournal,
}

// loadConfig resolves flags, environment and config file into cfg.
func loadConfig(cmd *cobra.Command, _ []string) error {
	startedAt = time.Now()
	logging.Init(logLevelFlag)

	v := config.New(configFlag)
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(v)
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel)
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func logRun(name string, features map[string]bool) {
	c := cfg.Redacted()
	r := logging.NewRunLogger(name).
		Version(version).
		CommitHash(commit).
		BuildTime(buildTime).
		Config(config.KeyProvider, c.Provider).
		Config(config.KeyBaseURL, c.BaseURL).
		Config(config.KeyModel, c.Model).
		Config(config.KeyGeminiAPIKey, c.GeminiAPIKey).
		Config(config.KeyMaxDimension, fmt.Sprint(c.MaxDimension)).
		Config(config.KeyJPEGQuality, fmt.Sprint(c.JPEGQuality)).
		Config(config.KeyCheckTimeout, c.CheckTimeout.String()).
		Config(config.KeyRequestTimeout, c.RequestTimeout.String()).
		Config(config.KeyDatePrefix, fmt.Sprint(c.DatePrefix)).
		Config(config.KeyJournal, c.Journal).
		Config(config.KeyLogLevel, c.LogLevel).
		Config(config.KeyScratchDir, c.ScratchDir).
		StartupDuration(time.Since(startedAt))
	for k, on := range features {
		r.Feature(k, on)
	}
	r.Log()
}

// serverLabel names the model server in user-facing messages.
func serverLabel() string {
	if cfg.Provider == config.ProviderGemini {
		return "the Gemini API"
	}
	return cfg.BaseURL
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
