package tracker

import (
	"testing"
	"time"
)

func TestParseEntityIDs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int64
		wantErr  bool
	}{
		{"Braces", "{1,2,3}", []int64{1, 2, 3}, false},
		{"Brackets", "[3, 1, 2]", []int64{1, 2, 3}, false},
		{"PlainList", "4, 5", []int64{4, 5}, false},
		{"Quoted", `"{7,8}"`, []int64{7, 8}, false},
		{"QuotedItems", `["9","10"]`, []int64{9, 10}, false},
		{"Duplicates", "{1,1,2}", []int64{1, 2}, false},
		{"EmptyBraces", "{}", []int64{}, false},
		{"Blank", "   ", []int64{}, false},
		{"Garbage", "{1,abc}", []int64{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntityIDs(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			sorted := got.Sorted()
			if len(sorted) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, sorted)
			}
			for i := range sorted {
				if sorted[i] != tt.expected[i] {
					t.Errorf("Expected %v, got %v", tt.expected, sorted)
				}
			}
		})
	}
}

func TestParseEstimation(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"3600", 3600, true},
		{"7200.0", 7200, true},
		{"1800,5", 1800.5, true},
		{"", 0, true},
		{"-10", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseEstimation(tt.input)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("ParseEstimation(%q): expected (%v, %v), got (%v, %v)", tt.input, tt.expected, tt.ok, got, ok)
		}
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 10, 1, 9, 30, 0, 0, time.UTC)
	inputs := []string{
		"2024-10-01T09:30:00Z",
		"2024-10-01 09:30:00.000000",
		"2024-10-01 09:30:00",
		"10/01/24 09:30",
		"01.10.2024 09:30",
	}
	for _, in := range inputs {
		got, err := ParseTime(in)
		if err != nil {
			t.Errorf("ParseTime(%q) failed: %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTime(%q): expected %v, got %v", in, want, got)
		}
	}

	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("Expected error for unrecognised timestamp")
	}
}

func TestSnapshot_Lookups(t *testing.T) {
	tasks := []Task{
		{EntityID: 1, Area: "Core", Workgroup: "Alpha"},
		{EntityID: 2, Area: "Core", Workgroup: "Beta"},
		{EntityID: 3, Area: "Billing"},
	}
	sprints := []Sprint{{Name: "S1", EntityIDs: NewEntitySet(1, 2, 99)}}
	snap := NewSnapshot(tasks, sprints, nil)

	if _, ok := snap.Task(2); !ok {
		t.Error("Expected task 2 to be found")
	}
	if _, ok := snap.Sprint("S2"); ok {
		t.Error("Expected unknown sprint lookup to fail")
	}
	if got := snap.DanglingRefs()["S1"]; got != 1 {
		t.Errorf("Expected 1 dangling reference, got %d", got)
	}

	areas := snap.GroupValues("area")
	if len(areas) != 2 || areas[0].Name != "Billing" || areas[1].Count != 2 {
		t.Errorf("Unexpected area grouping: %+v", areas)
	}
	teams := snap.GroupValues("workgroup")
	if len(teams) != 2 {
		t.Errorf("Expected 2 workgroups, got %+v", teams)
	}
}
