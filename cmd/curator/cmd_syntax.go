package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codechat/curator/internal/report"
)

func newSyntaxCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "syntax",
		Short: "Score filtered turns with static analysis",
		Long: `Score each filtered turn's code with static analysis.

Measures parseability, meaningful line count, cyclomatic complexity and a
maintainability index in-process, and categorized lint findings through the
configured linter. Requires the filter stage's output.`,
		RunE: syntaxE,
	}
	return cmd
}

func syntaxE(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	turns, err := a.upstreamTurns()
	if err != nil {
		return err
	}

	stage, err := a.syntaxStage()
	if err != nil {
		return err
	}
	scores, cached, err := runStage(cmd.Context(), stage, turns)
	if err != nil {
		return err
	}

	if cached {
		fmt.Println("syntax: using cached result")
	}
	fmt.Printf("syntax: scored %d turns\n", len(scores))

	tbl, err := a.store.Load(stage.Name, stage.Key)
	if err != nil {
		return err
	}
	if pct := report.ParseablePercent(tbl); pct >= 0 {
		fmt.Printf("  parseable: %.1f%%\n", pct)
	}
	report.NumericOverview(os.Stdout, tbl)

	info, err := a.store.Stat(stage.Name, stage.Key)
	if err != nil {
		return err
	}
	report.CacheStats(os.Stdout, stage.Name, info)
	return nil
}
