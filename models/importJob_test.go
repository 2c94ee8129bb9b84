package models

import "testing"

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		processed, total, want int
	}{
		{0, 0, 0},
		{0, 100, 0},
		{50, 100, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 7, 14},
		{999, 1000, 99},
		{100, 100, 100},
		{150, 100, 100},
		{10, -5, 0},
	}
	for _, tc := range cases {
		if got := ProgressPercent(tc.processed, tc.total); got != tc.want {
			t.Fatalf("ProgressPercent(%d, %d) = %d, want %d", tc.processed, tc.total, got, tc.want)
		}
	}
}

func TestProgressPercent_Monotonic(t *testing.T) {
	prev := 0
	for processed := 0; processed <= 1000; processed++ {
		got := ProgressPercent(processed, 1000)
		if got < prev {
			t.Fatalf("progress went backwards at %d: %d < %d", processed, got, prev)
		}
		if got == 100 && processed < 1000 {
			t.Fatalf("progress hit 100 at %d of 1000 rows", processed)
		}
		prev = got
	}
}

func TestRowLogAppendCapped(t *testing.T) {
	log := RowLogEntries{}
	for i := 0; i < MaxRowLogEntries+50; i++ {
		log = log.AppendCapped(RowLogEntry{Row: i + 2, Outcome: "failed"})
	}
	if len(log) != MaxRowLogEntries {
		t.Fatalf("log length = %d, want %d", len(log), MaxRowLogEntries)
	}
	if last := log[len(log)-1].Row; last != MaxRowLogEntries+51 {
		t.Fatalf("newest entry row = %d, want %d", last, MaxRowLogEntries+51)
	}
	if log[0].Row != 52 {
		t.Fatalf("oldest surviving row = %d, want 52; oldest entries must be the ones dropped", log[0].Row)
	}
}

func TestValidDuplicatePolicy(t *testing.T) {
	for _, p := range []DuplicatePolicy{PolicySkip, PolicyUpdate, PolicyCreate, PolicyReview} {
		if !ValidDuplicatePolicy(p) {
			t.Fatalf("%s should be valid", p)
		}
	}
	if ValidDuplicatePolicy("overwrite") {
		t.Fatal("unknown policy should be invalid")
	}
}
