package models

import (
	"testing"
	"time"
)

func TestFormatDailyNumber(t *testing.T) {
	day := time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		prefix string
		seq    int
		want   string
	}{
		{"B", 1, "B-20250101-0001"},
		{"T", 42, "T-20250101-0042"},
		{"R", 999, "R-20250101-0999"},
		{"C", 10000, "C-20250101-10000"},
	}
	for _, tc := range cases {
		if got := FormatDailyNumber(tc.prefix, day, tc.seq); got != tc.want {
			t.Fatalf("FormatDailyNumber(%s, %d) = %s, want %s", tc.prefix, tc.seq, got, tc.want)
		}
	}
}

func TestFormatDailyNumber_DayBoundary(t *testing.T) {
	dec31 := time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if FormatDailyNumber("C", dec31, 1) == FormatDailyNumber("C", jan1, 1) {
		t.Fatal("numbers on different days must differ even at the same sequence")
	}
}
