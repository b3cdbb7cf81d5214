package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"  demo  ":        "demo",
		"a/b\\c:d*e":      "a-b-c-d-e",
		`what? "now" <x>`: "what now x",
		"":                "",
	}
	for in, want := range tests {
		if got := SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
