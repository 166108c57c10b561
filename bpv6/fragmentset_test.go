package bpv6

import "testing"

func TestSetCoalesces(t *testing.T) {
	var s Set
	s.Add(1)
	s.Add(2)
	s.Add(3)
	ivs := s.Intervals()
	if len(ivs) != 1 || ivs[0] != (Interval{1, 4}) {
		t.Fatalf("got %+v", ivs)
	}
}

func TestSetDisjoint(t *testing.T) {
	var s Set
	s.Add(1)
	s.Add(10)
	ivs := s.Intervals()
	if len(ivs) != 2 {
		t.Fatalf("got %+v", ivs)
	}
}

func TestSetMergesBridgingInterval(t *testing.T) {
	var s Set
	s.Add(1)
	s.Add(3)
	s.Add(2)
	ivs := s.Intervals()
	if len(ivs) != 1 || ivs[0] != (Interval{1, 4}) {
		t.Fatalf("got %+v", ivs)
	}
}

func TestSetContainsEntirely(t *testing.T) {
	var s Set
	s.Insert(Interval{0, 100})
	if !s.ContainsEntirely(10, 20) {
		t.Error("expected containment")
	}
	if s.ContainsEntirely(90, 200) {
		t.Error("unexpected containment")
	}
}
