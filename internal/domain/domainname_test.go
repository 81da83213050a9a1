package domain

import (
	"errors"
	"testing"
)

func TestCanonicalDomain(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"bare domain", "example.com", "example.com"},
		{"subdomain stripped", "www.example.com", "example.com"},
		{"url with scheme port and path", "https://www.example.com:8080/path", "example.com"},
		{"http scheme", "http://sub.example.org/index.html", "example.org"},
		{"multi part suffix", "sub.domain.co.uk", "domain.co.uk"},
		{"host with port", "example.com:443", "example.com"},
		{"uppercase normalized", "WWW.Example.COM", "example.com"},
		{"trailing dot", "example.com.", "example.com"},
		{"deep subdomain", "a.b.c.example.co.uk", "example.co.uk"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CanonicalDomain(tc.input)
			if err != nil {
				t.Fatalf("CanonicalDomain(%q) returned error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("CanonicalDomain(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCanonicalDomainRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"single label", "google"},
		{"bare localhost", "localhost"},
		{"localhost with port", "localhost:8080"},
		{"ipv4 literal", "192.168.1.1"},
		{"ipv6 literal with port", "[::1]:8080"},
		{"scheme without host", "https://"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CanonicalDomain(tc.input)
			if err == nil {
				t.Fatalf("CanonicalDomain(%q) = %q, want error", tc.input, got)
			}
			if !errors.Is(err, ErrInvalidDomain) {
				t.Fatalf("CanonicalDomain(%q) error = %v, want ErrInvalidDomain", tc.input, err)
			}
		})
	}
}
