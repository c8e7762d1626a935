package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/codechat/curator/internal/pipeline"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0   // Requested work completed
	ExitStageFailed = 1   // A pipeline stage failed partway through
	ExitError       = 2   // Configuration or runtime error
	ExitInterrupted = 130 // Interrupted by SIGINT/SIGTERM
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		if errors.Is(err, context.Canceled) {
			os.Exit(ExitInterrupted)
		}
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			os.Exit(ExitStageFailed)
		}

		// Everything else is a configuration/runtime error
		os.Exit(ExitError)
	}
}
