package eid

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := []Endpoint{
		New(1, 2),
		New(0, 0),
		New(^uint64(0), ^uint64(0)),
		New(100, 1),
	}
	for _, e := range cases {
		s := e.String()
		got, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) errored: %v", s, err)
		}
		if got != e {
			t.Errorf("Parse(%q) = %+v, want %+v", s, got, e)
		}
	}
}

func TestWildcard(t *testing.T) {
	e, err := Parse("ipn:42.*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.Wildcard || e.Node != 42 {
		t.Errorf("got %+v", e)
	}
	if e.String() != "ipn:42.*" {
		t.Errorf("String() = %q", e.String())
	}
}

func TestParseRejects(t *testing.T) {
	bad := []string{
		"42.1",          // missing prefix
		"ipn:42",        // missing dot
		"ipn:42.1.3",    // duplicate dot
		"ipn:.1",        // empty node
		"ipn:42.",       // empty service
		"ipn:.42.1",     // leading dot
		"ipn:42.1.",     // trailing dot
		"ipn:abc.1",     // non-numeric node
		"ipn:1.abc",     // non-numeric service
		"ipn:18446744073709551616.1", // node overflows u64
	}
	for _, s := range bad {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) unexpectedly succeeded", s)
		}
	}
}

func TestParseCString(t *testing.T) {
	data := append([]byte("ipn:7.9"), 0, 'x', 'x')
	e, consumed, err := ParseCString(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e != New(7, 9) {
		t.Errorf("got %+v", e)
	}
	if consumed != 8 {
		t.Errorf("consumed = %d, want 8", consumed)
	}
}

func TestParseCStringNoTerminator(t *testing.T) {
	if _, _, err := ParseCString([]byte("ipn:7.9")); err == nil {
		t.Fatal("expected error for missing NUL terminator")
	}
}
