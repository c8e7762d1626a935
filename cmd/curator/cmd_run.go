package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/codechat/curator/internal/report"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline end to end",
		Long: `Run load, filter, syntax and semantic in sequence.

Stages whose artifacts are already cached for the current parameters are
skipped. The run stops at the first stage failure; re-running resumes from
that stage's checkpoint log.`,
		RunE: runE,
	}
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt before the judge stage")
	return cmd
}

func runE(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	started := time.Now()
	a.logger.Info("pipeline run starting", "run_id", runID,
		"dataset", a.cfg.Dataset.Name, "revision", a.cfg.Dataset.Revision)

	// load
	path, err := a.source().Fetch(cmd.Context(), a.cfg.DataDir)
	if err != nil {
		return err
	}
	fmt.Printf("dataset: %s\n", path)

	// filter
	convs, err := a.loadConversations()
	if err != nil {
		return err
	}
	filterStage, err := a.filterStage()
	if err != nil {
		return err
	}
	turns, _, err := runStage(cmd.Context(), filterStage, convs)
	if err != nil {
		return err
	}
	fmt.Printf("filter: %d turns kept\n", len(turns))

	// syntax
	syntaxStage, err := a.syntaxStage()
	if err != nil {
		return err
	}
	scores, _, err := runStage(cmd.Context(), syntaxStage, turns)
	if err != nil {
		return err
	}
	fmt.Printf("syntax: %d turns scored\n", len(scores))

	// semantic
	semanticStage, err := a.semanticStage(cmd.Context())
	if err != nil {
		return err
	}
	skipConfirm, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}
	if !skipConfirm && !semanticStage.Cached() {
		ok, err := confirmJudgeRun(len(scores), a.cfg.Judge.Model)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("semantic: aborted")
			return nil
		}
	}
	graded, _, err := runStage(cmd.Context(), semanticStage, scores)
	if err != nil {
		return err
	}
	fmt.Printf("semantic: %d turns graded\n", len(graded))

	tbl, err := a.store.Load(semanticStage.Name, semanticStage.Key)
	if err != nil {
		return err
	}
	report.NumericOverview(os.Stdout, tbl)
	report.ScoreConfidence(os.Stdout, tbl, a.cfg.Judge.Dimensions)

	a.logger.Info("pipeline run finished", "run_id", runID,
		"records", len(graded), "elapsed", time.Since(started).Round(time.Second))
	return nil
}
