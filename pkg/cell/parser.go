package cell

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	defs "cellrun/definitions"
	er "cellrun/errors"
	"cellrun/pkg/cpuset"
)

// ParseList converts the captured stdout of `cell list` into the ordered
// sequence of cells. The table is a single header line followed by one
// fixed-width row per cell; rows shorter than the full width (trailing pad
// spaces stripped in transit) are padded back before slicing.
//
// Parsing is all-or-nothing: every bad row is reported, and no cells are
// returned if any row fails.
func ParseList(output []byte) ([]Cell, error) {
	lines := strings.Split(string(output), "\n")
	if len(lines) < 2 && strings.TrimSpace(lines[0]) == "" {
		return nil, errors.Wrap(er.ParseFailed, "missing table header")
	}

	cells := make([]Cell, 0, len(lines)-1)
	var merr *multierror.Error
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		c, err := parseRow(line)
		if err != nil {
			merr = multierror.Append(merr, errors.Wrapf(err, "row %d", i+1))
			continue
		}
		cells = append(cells, c)
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cells, nil
}

func parseRow(line string) (Cell, error) {
	if len(line) < defs.RowWidth {
		line += strings.Repeat(" ", defs.RowWidth-len(line))
	}

	var c Cell
	var err error

	idField := line[:defs.IDWidth]
	c.ID, err = strconv.Atoi(strings.TrimSpace(idField))
	if err != nil || c.ID < 0 {
		return Cell{}, errors.Wrapf(er.ParseFailed, "bad cell id %q", strings.TrimSpace(idField))
	}

	nameField := line[defs.IDWidth : defs.IDWidth+defs.NameWidth]
	c.Name = strings.TrimRight(nameField, " ")
	if c.Name == "" {
		return Cell{}, errors.Wrapf(er.ParseFailed, "empty cell name for id %d", c.ID)
	}

	stateOff := defs.IDWidth + defs.NameWidth
	c.State = stateFromColumn(line[stateOff : stateOff+defs.StateWidth])

	assignedOff := stateOff + defs.StateWidth
	c.AssignedCPUs, err = cpuset.Parse(line[assignedOff : assignedOff+defs.CPUWidth])
	if err != nil {
		return Cell{}, errors.Wrapf(er.ParseFailed, "cell %q assigned CPUs: %v", c.Name, err)
	}

	failedOff := assignedOff + defs.CPUWidth
	c.FailedCPUs, err = cpuset.Parse(line[failedOff : failedOff+defs.CPUWidth])
	if err != nil {
		return Cell{}, errors.Wrapf(er.ParseFailed, "cell %q failed CPUs: %v", c.Name, err)
	}

	return c, nil
}

// stateFromColumn matches the 16-byte state column against the documented
// literals, trailing padding included.
func stateFromColumn(col string) State {
	switch col {
	case defs.StateRunningString:
		return StateRunning
	case defs.StateRunningLockedString:
		return StateRunningLocked
	case defs.StateShutdownString:
		return StateShutdown
	case defs.StateFailedString:
		return StateFailed
	default:
		return StateUnknown
	}
}
