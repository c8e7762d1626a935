package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage stage artifact cache",
		Long: `Manage the stage artifact cache.

Each pipeline stage stores its output keyed by its effective parameters, so
re-running with unchanged parameters reads the artifact instead of
recomputing. Checkpoint logs for unfinished runs live alongside artifacts.`,
	}

	cmd.AddCommand(newCacheInfoCommand())
	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "List cached artifacts and checkpoint logs",
		RunE:  cacheInfoE,
	}
}

func cacheInfoE(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	paths, err := a.store.List()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Printf("cache is empty: %s\n", a.store.Dir())
		return nil
	}

	fmt.Printf("cache: %s\n", a.store.Dir())
	var total int64
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		total += fi.Size()
		fmt.Printf("  %-60s %10d bytes\n", filepath.Base(path), fi.Size())
	}
	fmt.Printf("  total: %d files, %d bytes\n", len(paths), total)
	return nil
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached artifacts and checkpoint logs",
		Long: `Delete every cached stage artifact and checkpoint log.

The dataset snapshot is kept; the next pipeline run recomputes all stages
from it.`,
		RunE: cacheClearE,
	}
}

func cacheClearE(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	paths, err := a.store.List()
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	fmt.Printf("cache cleared: %d files removed from %s\n", len(paths), a.store.Dir())
	return nil
}
