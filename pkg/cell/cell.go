// Package cell models the partitions reported by the Jailhouse
// administration tool and parses its `cell list` table.
package cell

import (
	"github.com/google/uuid"

	"cellrun/pkg/cpuset"
)

// State is the normalized cell state. The tool reports four literal strings;
// anything else becomes StateUnknown so that enumeration keeps working
// against newer tool versions.
type State int

const (
	StateRunning State = iota
	StateRunningLocked
	StateShutdown
	StateFailed
	StateUnknown
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateRunningLocked:
		return "running/locked"
	case StateShutdown:
		return "shut down"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Active reports whether the cell is executing. Failed cells are not active.
func (s State) Active() bool {
	return s == StateRunning || s == StateRunningLocked
}

// Cell is one row of the `cell list` table. The id is assigned by the
// hypervisor and may be reused after a cell disappears; the name is the
// user-visible identity. The UUID is minted by the driver and is not part of
// the tool output.
type Cell struct {
	ID           int
	Name         string
	State        State
	AssignedCPUs cpuset.CPUSet
	FailedCPUs   cpuset.CPUSet
	UUID         uuid.UUID
}
