package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

// defaultConfigName is the conventional config file looked for in the working
// directory; its absence just means defaults.
const defaultConfigName = "curator.yaml"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curator",
		Short: "Curator - dataset curation pipeline for coding conversations",
		Long: `Curator distills a conversational code dataset into scored training data.

It runs a staged pipeline: load a pinned dataset snapshot, filter turns down
to English prompts with non-trivial code, score the code with static analysis,
and grade each turn with an LLM judge. Every stage caches its output keyed by
its effective parameters and resumes from a checkpoint log after interruption.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", defaultConfigName, "Path to config file")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newLoadCommand())
	cmd.AddCommand(newFilterCommand())
	cmd.AddCommand(newSyntaxCommand())
	cmd.AddCommand(newSemanticCommand())
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newCacheCommand())
	cmd.AddCommand(newPushCommand())

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
