package cpuset

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{
			name:  "sparse list",
			input: "0,2-4,7",
			want:  []int{0, 2, 3, 4, 7},
		},
		{
			name:  "single cpu",
			input: "3",
			want:  []int{3},
		},
		{
			name:  "single range",
			input: "0-3",
			want:  []int{0, 1, 2, 3},
		},
		{
			name:  "degenerate range",
			input: "5-5",
			want:  []int{5},
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "all spaces column",
			input: "                        ",
			want:  nil,
		},
		{
			name:  "value terminated by padding",
			input: "0-3                     ",
			want:  []int{0, 1, 2, 3},
		},
		{
			name:  "appearance order kept",
			input: "7,2,0",
			want:  []int{7, 2, 0},
		},
		{
			name:  "duplicates kept on decode",
			input: "1,1,2",
			want:  []int{1, 1, 2},
		},
		{
			name:    "reversed range",
			input:   "3-1",
			wantErr: true,
		},
		{
			name:    "dangling range",
			input:   "1-",
			wantErr: true,
		},
		{
			name:    "missing range start",
			input:   "-3",
			wantErr: true,
		},
		{
			name:    "garbage term",
			input:   "0,x,2",
			wantErr: true,
		},
		{
			name:    "trailing comma",
			input:   "0,",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.input, set.ToSlice())
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			got := set.ToSlice()
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		cpus []int
		want string
	}{
		{"empty", nil, ""},
		{"single", []int{4}, "4"},
		{"range", []int{0, 1, 2, 3}, "0-3"},
		{"sparse", []int{0, 2, 3, 4, 7}, "0,2-4,7"},
		{"unsorted input", []int{7, 0, 1}, "0-1,7"},
		{"duplicates collapsed", []int{1, 1, 2}, "1-2"},
		{"pair is not a range", []int{3, 5}, "3,5"},
	}

	for _, tt := range tests {
		if got := NewCPUSet(tt.cpus...).String(); got != tt.want {
			t.Errorf("%s: String(%v) = %q, want %q", tt.name, tt.cpus, got, tt.want)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sets := [][]int{
		{},
		{0},
		{255},
		{0, 1, 2, 3},
		{0, 2, 3, 4, 7},
		{1, 3, 5, 7, 9, 11},
		{0, 64, 128, 192, 255},
		{10, 11, 12, 20, 21, 30},
	}

	for _, cpus := range sets {
		orig := NewCPUSet(cpus...)
		decoded, err := Parse(orig.String())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", orig.String(), err)
		}
		if !decoded.Equals(orig) {
			t.Errorf("round trip of %v: got %v", cpus, decoded.ToSlice())
		}
	}
}

func TestSetOperations(t *testing.T) {
	set := NewCPUSet(0, 2, 4)

	if !set.Contains(2) || set.Contains(3) {
		t.Errorf("Contains is wrong for %v", set.ToSlice())
	}
	if set.Size() != 3 {
		t.Errorf("Size() = %d, want 3", set.Size())
	}
	if NewCPUSet().IsEmpty() != true || set.IsEmpty() {
		t.Error("IsEmpty is wrong")
	}
	if !set.Equals(NewCPUSet(4, 2, 0)) {
		t.Error("Equals must ignore order")
	}
	if !set.Equals(NewCPUSet(0, 0, 2, 4)) {
		t.Error("Equals must ignore duplicates")
	}
	if set.Equals(NewCPUSet(0, 2)) {
		t.Error("Equals must detect missing members")
	}

	union := set.Union(NewCPUSet(1, 2))
	if union.String() != "0-2,4" {
		t.Errorf("Union = %q, want %q", union.String(), "0-2,4")
	}
}
