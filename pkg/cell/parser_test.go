package cell

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	er "cellrun/errors"
	"github.com/pkg/errors"
)

const listHeader = "ID      Name                    State           Assigned CPUs           Failed CPUs             "

func row(id int, name, state, assigned, failed string) string {
	return fmt.Sprintf("%-8d%-24s%-16s%-24s%-24s", id, name, state, assigned, failed)
}

func table(rows ...string) []byte {
	return []byte(listHeader + "\n" + strings.Join(rows, "\n") + "\n")
}

func TestParseListEmptyHypervisor(t *testing.T) {
	cells, err := ParseList([]byte(listHeader + "\n"))
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestParseListMissingHeader(t *testing.T) {
	_, err := ParseList([]byte(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, er.ParseFailed))
}

func TestParseListSingleRootCell(t *testing.T) {
	cells, err := ParseList(table(row(0, "QEMU-VM", "running", "0-3", "")))
	require.NoError(t, err)
	require.Len(t, cells, 1)

	c := cells[0]
	assert.Equal(t, 0, c.ID)
	assert.Equal(t, "QEMU-VM", c.Name)
	assert.Equal(t, StateRunning, c.State)
	assert.Equal(t, []int{0, 1, 2, 3}, c.AssignedCPUs.ToSlice())
	assert.True(t, c.FailedCPUs.IsEmpty())
}

func TestParseListStates(t *testing.T) {
	tests := []struct {
		column string
		want   State
	}{
		{"running", StateRunning},
		{"running/locked", StateRunningLocked},
		{"shut down", StateShutdown},
		{"failed", StateFailed},
		{"suspended", StateUnknown},
		{"", StateUnknown},
	}

	for _, tt := range tests {
		cells, err := ParseList(table(row(1, "inmate", tt.column, "1", "")))
		require.NoError(t, err, "state %q", tt.column)
		require.Len(t, cells, 1)
		assert.Equal(t, tt.want, cells[0].State, "state %q", tt.column)
	}
}

func TestParseListRowOrderPreserved(t *testing.T) {
	cells, err := ParseList(table(
		row(0, "root", "running", "0,1", ""),
		row(3, "gic-demo", "shut down", "2", ""),
		row(1, "uart-demo", "running/locked", "3", "3"),
	))
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.Equal(t, []int{0, 3, 1}, []int{cells[0].ID, cells[1].ID, cells[2].ID})
	assert.Equal(t, "gic-demo", cells[1].Name)
}

func TestParseListFailedCPUsRecordedFaithfully(t *testing.T) {
	// The tool may report CPUs failed that are no longer assigned.
	cells, err := ParseList(table(row(2, "ivshmem-demo", "failed", "4", "4,5")))
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, []int{4}, cells[0].AssignedCPUs.ToSlice())
	assert.Equal(t, []int{4, 5}, cells[0].FailedCPUs.ToSlice())
}

func TestParseListShortRowPadded(t *testing.T) {
	// Trailing pad spaces are often stripped in transit; the row must still
	// slice cleanly.
	line := strings.TrimRight(row(0, "root", "running", "0-3", ""), " ")
	cells, err := ParseList([]byte(listHeader + "\n" + line + "\n"))
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, []int{0, 1, 2, 3}, cells[0].AssignedCPUs.ToSlice())
	assert.True(t, cells[0].FailedCPUs.IsEmpty())
}

func TestParseListBadRows(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{
			name: "non-numeric id",
			rows: []string{fmt.Sprintf("%-8s%-24s%-16s%-24s%-24s", "x", "root", "running", "0", "")},
		},
		{
			name: "negative id",
			rows: []string{fmt.Sprintf("%-8s%-24s%-16s%-24s%-24s", "-1", "root", "running", "0", "")},
		},
		{
			name: "empty name",
			rows: []string{row(7, "", "running", "0", "")},
		},
		{
			name: "reversed cpu range",
			rows: []string{row(1, "inmate", "running", "3-1", "")},
		},
		{
			name: "garbage assigned cpus",
			rows: []string{row(1, "inmate", "running", "a-b", "")},
		},
		{
			name: "bad failed cpus",
			rows: []string{row(1, "inmate", "failed", "1", "2-")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells, err := ParseList(table(tt.rows...))
			require.Error(t, err)
			assert.True(t, errors.Is(err, er.ParseFailed))
			assert.Nil(t, cells)
		})
	}
}

func TestParseListReportsEveryBadRow(t *testing.T) {
	_, err := ParseList(table(
		row(0, "root", "running", "0", ""),
		row(1, "bad-one", "running", "3-1", ""),
		row(2, "bad-two", "running", "x", ""),
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-one")
	assert.Contains(t, err.Error(), "bad-two")
}

func TestParseListNameTrimmedNotSplit(t *testing.T) {
	// Names may contain '-' and digits; only trailing padding is trimmed.
	cells, err := ParseList(table(row(1, "linux-demo-2", "running", "1", "")))
	require.NoError(t, err)
	assert.Equal(t, "linux-demo-2", cells[0].Name)
}
