package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codechat/curator/internal/record"
	"github.com/codechat/curator/internal/report"
)

func newFilterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Select turns with English prompts and non-trivial code",
		Long: `Filter the dataset down to the turns worth scoring.

A turn is kept when its prompt is English and the assistant's reply contains
at least one fenced code block in a configured language with more meaningful
lines than the configured threshold. Results are cached by the filter
parameters; a finished filter run is a no-op until they change.`,
		RunE: filterE,
	}
	return cmd
}

func filterE(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	convs, err := a.loadConversations()
	if err != nil {
		return err
	}

	stage, err := a.filterStage()
	if err != nil {
		return err
	}
	kept, cached, err := runStage(cmd.Context(), stage, convs)
	if err != nil {
		return err
	}

	if cached {
		fmt.Println("filter: using cached result")
	}
	if len(convs) > 0 {
		fmt.Printf("filter: kept %d turns from %d conversations (%.1f%% of turns qualify)\n",
			len(kept), len(convs), turnPercent(convs, len(kept)))
	}

	info, err := a.store.Stat(stage.Name, stage.Key)
	if err != nil {
		return err
	}
	report.CacheStats(os.Stdout, stage.Name, info)
	return nil
}

func turnPercent(convs []record.Conversation, kept int) float64 {
	total := 0
	for _, c := range convs {
		total += len(c.Turns)
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(kept) / float64(total)
}
