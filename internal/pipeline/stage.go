// Package pipeline composes the artifact cache, checkpoint log and bounded
// executor into resumable stages.
//
// A stage consults the artifact cache first; on a miss it replays the
// checkpoint log, dispatches only the inputs not already done, appends each
// completed input's outputs to the log as they finish, and publishes the
// merged, id-sorted table. The log is discarded only once the artifact exists,
// so an interruption at any point loses at most the in-flight batch.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/codechat/curator/internal/artifact"
	"github.com/codechat/curator/internal/checkpoint"
	"github.com/codechat/curator/internal/executor"
	"github.com/codechat/curator/internal/progress"
	"github.com/codechat/curator/internal/record"
)

// Stage is one resumable pipeline step mapping inputs of type I to outputs of
// type O. The evaluator returns zero or more outputs per input (filtering) or
// exactly one (scoring). Any error it returns is stage-fatal: evaluators
// absorb transient per-record problems themselves and raise only typed
// config/protocol failures.
type Stage[I record.Keyed, O record.Keyed] struct {
	Name     string
	Key      string
	Schema   []record.Field
	Store    *artifact.Store
	Workers  int
	Evaluate func(ctx context.Context, in I) ([]O, error)

	// Observer, when set, receives progress snapshots during computation.
	Observer progress.Observer
}

// CheckpointPath returns the stage's checkpoint log location, alongside the
// artifacts.
func (s *Stage[I, O]) CheckpointPath() string {
	return filepath.Join(s.Store.Dir(), s.Name+"_"+s.Key+".checkpoint.jsonl")
}

// Cached reports whether the stage's artifact is already published.
func (s *Stage[I, O]) Cached() bool {
	return s.Store.Exists(s.Name, s.Key)
}

// Run produces the stage's output table, transparently resuming from the
// checkpoint log and populating the artifact cache on completion. The bool
// result is true when the table came from cache without any computation.
func (s *Stage[I, O]) Run(ctx context.Context, inputs []I) ([]O, bool, error) {
	log := checkpoint.NewLog[O](s.CheckpointPath())

	tbl, cached, err := s.Store.GetOrCompute(s.Name, s.Key, s.Schema, func() ([]map[string]any, error) {
		outputs, err := s.compute(ctx, log, inputs)
		if err != nil {
			return nil, err
		}
		return record.ToRows(outputs)
	})
	if err != nil {
		// Keep the checkpoint log: completed work survives for the next run.
		if cerr := log.Close(); cerr != nil {
			return nil, false, fmt.Errorf("%w (also: %v)", err, cerr)
		}
		return nil, false, err
	}

	// The artifact exists now; the log has served its purpose.
	if err := log.Discard(); err != nil {
		return nil, false, err
	}

	outputs, err := record.FromRows[O](tbl.Rows)
	if err != nil {
		return nil, false, fmt.Errorf("stage %s: decoding table: %w", s.Name, err)
	}
	return outputs, cached, nil
}

func (s *Stage[I, O]) compute(ctx context.Context, log *checkpoint.Log[O], inputs []I) ([]O, error) {
	entries, err := log.Load()
	if err != nil {
		return nil, err
	}

	done := checkpoint.DoneIDs(entries)
	var outputs []O
	for _, e := range entries {
		outputs = append(outputs, e.Records...)
	}

	var remaining []I
	for _, in := range inputs {
		if !done[in.ID()] {
			remaining = append(remaining, in)
		}
	}

	var opts []progress.Option
	if s.Observer != nil {
		opts = append(opts, progress.WithObserver(s.Observer))
	}
	tracker := progress.NewTracker(len(inputs), len(done), opts...)

	err = executor.ForEach(ctx, executor.Config{Workers: s.Workers}, remaining,
		func(ctx context.Context, in I) ([]O, error) {
			return s.Evaluate(ctx, in)
		},
		func(index int, recs []O, err error) error {
			if err != nil {
				return fmt.Errorf("stage %s: record %s: %w", s.Name, remaining[index].ID(), err)
			}
			if err := log.Append(checkpoint.Entry[O]{SourceID: remaining[index].ID(), Records: recs}); err != nil {
				return err
			}
			outputs = append(outputs, recs...)
			tracker.Done(1)
			return nil
		})
	if err != nil {
		return nil, err
	}

	// The artifact store sorts rows by id before writing; outputs here may
	// still be in completion order.
	return outputs, nil
}
