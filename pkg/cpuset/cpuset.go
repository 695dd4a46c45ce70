// Package cpuset implements the compact "N,M-P,Q" CPU list encoding used by
// the Jailhouse administration tool.
package cpuset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CPUSet represents a set of CPUs. Decoding keeps the CPUs in order of first
// appearance and does not collapse duplicates, so a parsed set reproduces the
// tool output faithfully. Encoding always emits sorted, deduplicated ranges.
type CPUSet struct {
	cpus []int
}

// NewCPUSet creates a new CPUSet with the specified CPUs.
func NewCPUSet(cpus ...int) CPUSet {
	set := CPUSet{
		cpus: make([]int, 0, len(cpus)),
	}
	for _, cpu := range cpus {
		set.cpus = append(set.cpus, cpu)
	}
	return set
}

// Parse parses a CPU list string (e.g. "0,2-4,7") into a CPUSet. The value
// ends at the first space, a fixed-width table column can be passed as-is; a
// leading space or an empty string yields the empty set. Errors carry the
// byte offset of the offending term.
func Parse(s string) (CPUSet, error) {
	set := CPUSet{}

	if i := strings.IndexByte(s, ' '); i == 0 {
		return set, nil
	} else if i > 0 {
		s = s[:i]
	}
	if s == "" {
		return set, nil
	}

	offset := 0
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			return CPUSet{}, fmt.Errorf("empty CPU term at offset %d", offset)
		}

		if dash := strings.IndexByte(part, '-'); dash >= 0 {
			start, err := strconv.Atoi(part[:dash])
			if err != nil {
				return CPUSet{}, fmt.Errorf("invalid CPU range start %q at offset %d", part, offset)
			}
			end, err := strconv.Atoi(part[dash+1:])
			if err != nil {
				return CPUSet{}, fmt.Errorf("invalid CPU range end %q at offset %d", part, offset)
			}
			if start > end {
				return CPUSet{}, fmt.Errorf("invalid CPU range %q at offset %d: start > end", part, offset)
			}
			for i := start; i <= end; i++ {
				set.cpus = append(set.cpus, i)
			}
		} else {
			cpu, err := strconv.Atoi(part)
			if err != nil {
				return CPUSet{}, fmt.Errorf("invalid CPU number %q at offset %d", part, offset)
			}
			if cpu < 0 {
				return CPUSet{}, fmt.Errorf("negative CPU number %q at offset %d", part, offset)
			}
			set.cpus = append(set.cpus, cpu)
		}

		offset += len(part) + 1
	}

	return set, nil
}

// Contains checks if the CPU set contains the specified CPU.
func (set CPUSet) Contains(cpu int) bool {
	for _, c := range set.cpus {
		if c == cpu {
			return true
		}
	}
	return false
}

// Size returns the number of CPUs in the set, duplicates included.
func (set CPUSet) Size() int {
	return len(set.cpus)
}

// IsEmpty returns true if the CPU set is empty.
func (set CPUSet) IsEmpty() bool {
	return len(set.cpus) == 0
}

// ToSlice returns a copy of the CPUs in first-appearance order.
func (set CPUSet) ToSlice() []int {
	cpus := make([]int, len(set.cpus))
	copy(cpus, set.cpus)
	return cpus
}

// sorted returns the CPUs sorted ascending with duplicates removed.
func (set CPUSet) sorted() []int {
	cpus := set.ToSlice()
	sort.Ints(cpus)
	unique := cpus[:0]
	for i, cpu := range cpus {
		if i == 0 || cpu != unique[len(unique)-1] {
			unique = append(unique, cpu)
		}
	}
	return unique
}

// String returns the canonical encoding of the CPU set: sorted, deduplicated,
// consecutive CPUs collapsed into "A-B" ranges. The empty set encodes as "".
func (set CPUSet) String() string {
	if len(set.cpus) == 0 {
		return ""
	}

	cpus := set.sorted()

	var parts []string
	i := 0
	for i < len(cpus) {
		start := cpus[i]
		end := start
		for i+1 < len(cpus) && cpus[i+1] == cpus[i]+1 {
			i++
			end = cpus[i]
		}
		if start == end {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, end))
		}
		i++
	}

	return strings.Join(parts, ",")
}

// Equals compares the two sets as sets: order and duplicates are ignored.
func (set CPUSet) Equals(other CPUSet) bool {
	a, b := set.sorted(), other.sorted()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Union returns a new CPU set containing the union of the two sets.
func (set CPUSet) Union(other CPUSet) CPUSet {
	result := NewCPUSet(set.sorted()...)
	for _, cpu := range other.sorted() {
		if !result.Contains(cpu) {
			result.cpus = append(result.cpus, cpu)
		}
	}
	return result
}
