package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codechat/curator/internal/remote"
	"github.com/codechat/curator/internal/spinner"
)

func newPushCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Mirror cached artifacts to blob storage",
		Long: `Upload every published stage artifact to the configured Azure Blob
Storage container.

Authentication uses the default Azure credential chain ('az login',
environment variables, or workload identity). Checkpoint logs are resume
state for unfinished runs and are never uploaded.`,
		RunE: pushE,
	}
	return cmd
}

func pushE(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	mirror, err := remote.NewMirror(a.cfg.Remote.AccountURL, a.cfg.Remote.Container, a.logger)
	if err != nil {
		return err
	}

	stopSpin := spinner.Start(os.Stderr, "uploading artifacts")
	n, err := mirror.Push(cmd.Context(), a.store)
	stopSpin()
	if err != nil {
		return err
	}
	fmt.Printf("pushed %d artifacts to %s/%s\n", n, a.cfg.Remote.AccountURL, a.cfg.Remote.Container)
	return nil
}
