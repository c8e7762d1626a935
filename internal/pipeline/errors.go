package pipeline

import (
	"fmt"
	"strings"
)

// ConfigError is a fatal environment or configuration problem (missing lint
// binary, unreachable judge, absent prerequisite artifact). It is raised
// before bulk work starts and carries remediation text for the user.
type ConfigError struct {
	Msg    string
	Remedy string
}

func (e *ConfigError) Error() string {
	if e.Remedy == "" {
		return e.Msg
	}
	return e.Msg + " -- " + e.Remedy
}

// StageError marks a failure that happened while a stage was computing, as
// opposed to a configuration problem caught before work started. The CLI maps
// the two classes to different exit codes.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ProtocolError is a per-record protocol failure that survived retry: the
// judge response stayed unparsable or incomplete. It aborts the batch, because
// partial semantic scores would silently corrupt the dataset.
type ProtocolError struct {
	RecordID string
	Missing  []string
	Detail   string
}

func (e *ProtocolError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "record %s: judge response invalid after retry", e.RecordID)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing dimensions %s", strings.Join(e.Missing, ", "))
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}
