package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/codechat/curator/internal/report"
)

func newSemanticCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "semantic",
		Short: "Grade scored turns with the LLM judge",
		Long: `Grade each syntax-scored turn against the review rubric using the
configured Ollama model.

This is the expensive stage: every turn costs a model round trip, so a
confirmation is asked before starting unless --yes is given or the result is
already cached. Requires the syntax stage's output and a running Ollama
server with the configured model pulled.`,
		RunE: semanticE,
	}
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	return cmd
}

func semanticE(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	scores, err := a.upstreamScores()
	if err != nil {
		return err
	}

	stage, err := a.semanticStage(cmd.Context())
	if err != nil {
		return err
	}

	skipConfirm, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}
	if !skipConfirm && !stage.Cached() {
		ok, err := confirmJudgeRun(len(scores), a.cfg.Judge.Model)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("semantic: aborted")
			return nil
		}
	}

	graded, cached, err := runStage(cmd.Context(), stage, scores)
	if err != nil {
		return err
	}

	if cached {
		fmt.Println("semantic: using cached result")
	}
	fmt.Printf("semantic: graded %d turns\n", len(graded))

	tbl, err := a.store.Load(stage.Name, stage.Key)
	if err != nil {
		return err
	}
	report.NumericOverview(os.Stdout, tbl)
	report.ScoreConfidence(os.Stdout, tbl, a.cfg.Judge.Dimensions)

	info, err := a.store.Stat(stage.Name, stage.Key)
	if err != nil {
		return err
	}
	report.CacheStats(os.Stdout, stage.Name, info)
	return nil
}

func confirmJudgeRun(turns int, model string) (bool, error) {
	ok := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Grade %d turns with %s?", turns, model)).
				Description("Each turn costs one model round trip.").
				Value(&ok),
		),
	)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return ok, nil
}
