package utils

import "testing"

func TestExtractObjectKeyFromURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"imports/2025_source.xlsx", "imports/2025_source.xlsx"},
		{"imports/../secrets.env", ""},
		{"gs://tax-control/imports/source.xlsx", "imports/source.xlsx"},
		{"https://storage.googleapis.com/tax-control/imports/source.xlsx", "imports/source.xlsx"},
		{"https://storage.cloud.google.com/tax-control/imports/source.xlsx", "imports/source.xlsx"},
		{"https://tax-control.storage.googleapis.com/imports/source.xlsx", "imports/source.xlsx"},
		{"", ""},
	}
	for _, c := range cases {
		if got := ExtractObjectKeyFromURL(c.in); got != c.want {
			t.Fatalf("ExtractObjectKeyFromURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
