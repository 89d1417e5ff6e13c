package dashboard

import (
	"strings"
	"testing"
)

func TestMaskedKey(t *testing.T) {
	long := strings.Repeat("a", 40)
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"short", "sk-short"},
		{long, "sk-" + long[:32]},
	}
	for _, tc := range cases {
		if got := MaskedKey(tc.in); got != tc.want {
			t.Fatalf("MaskedKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBaseEndpoint(t *testing.T) {
	if got := BaseEndpoint("https://pool.example.com/"); got != "https://pool.example.com/v1" {
		t.Fatalf("BaseEndpoint = %q", got)
	}
	if got := BaseEndpoint("http://127.0.0.1:8000"); got != "http://127.0.0.1:8000/v1" {
		t.Fatalf("BaseEndpoint = %q", got)
	}
}
