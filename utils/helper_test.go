package utils

import (
	"testing"
	"time"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Business Name", "business name"},
		{"  OWNER   NAME  ", "owner name"},
		{"Tax\tID", "tax id"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeHeader(tc.in); got != tc.want {
			t.Fatalf("NormalizeHeader(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal(" 50000.25 ")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "50000.25" {
		t.Fatalf("got %s", d.String())
	}

	if _, err := ParseDecimal(""); err == nil {
		t.Fatal("empty string must fail")
	}
	if _, err := ParseDecimal("fifty"); err == nil {
		t.Fatal("non-numeric must fail")
	}
}

func TestParseCellDate(t *testing.T) {
	want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-01-15", "15/01/2025", "15-01-2025", "2025/01/15"} {
		got, err := ParseCellDate(in)
		if err != nil {
			t.Fatalf("ParseCellDate(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseCellDate(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseCellDate("someday"); err == nil {
		t.Fatal("unparseable date must fail")
	}
}

func TestNilIfEmpty(t *testing.T) {
	if NilIfEmpty("") != nil {
		t.Fatal("empty string should map to nil")
	}
	if p := NilIfEmpty("x"); p == nil || *p != "x" {
		t.Fatal("non-empty string should be returned as pointer")
	}
}
