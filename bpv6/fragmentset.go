package bpv6

import "sort"

// Interval is a half-open range [Begin, End) of custody IDs or byte
// offsets, depending on context.
type Interval struct {
	Begin, End uint64
}

// Len returns the number of IDs the interval covers.
func (iv Interval) Len() uint64 { return iv.End - iv.Begin }

// Set is a sorted, coalesced set of non-overlapping, non-adjacent
// Intervals, used both to track the custody IDs an aggregate custody
// signal covers and to track which byte ranges of a fragmented bundle's
// payload have been received, mirroring HDTN's fragment-set bookkeeping.
type Set struct {
	intervals []Interval
}

// Add inserts the single id into the set.
func (s *Set) Add(id uint64) {
	s.Insert(Interval{Begin: id, End: id + 1})
}

// Insert merges [begin, end) into the set, coalescing with any
// overlapping or adjacent existing intervals.
func (s *Set) Insert(iv Interval) {
	if iv.Begin >= iv.End {
		return
	}
	merged := make([]Interval, 0, len(s.intervals)+1)
	inserted := false
	for _, cur := range s.intervals {
		switch {
		case cur.End < iv.Begin:
			merged = append(merged, cur)
		case iv.End < cur.Begin:
			if !inserted {
				merged = append(merged, iv)
				inserted = true
			}
			merged = append(merged, cur)
		default:
			if cur.Begin < iv.Begin {
				iv.Begin = cur.Begin
			}
			if cur.End > iv.End {
				iv.End = cur.End
			}
		}
	}
	if !inserted {
		merged = append(merged, iv)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Begin < merged[j].Begin })
	s.intervals = merged
}

// ContainsEntirely reports whether [begin, end) is fully covered by s.
func (s *Set) ContainsEntirely(begin, end uint64) bool {
	for _, iv := range s.intervals {
		if iv.Begin <= begin && end <= iv.End {
			return true
		}
	}
	return false
}

// Contains reports whether the single id is covered by s.
func (s *Set) Contains(id uint64) bool {
	return s.ContainsEntirely(id, id+1)
}

// Empty reports whether s has no intervals.
func (s *Set) Empty() bool { return len(s.intervals) == 0 }

// Intervals returns a copy of s's sorted, coalesced intervals.
func (s *Set) Intervals() []Interval {
	out := make([]Interval, len(s.intervals))
	copy(out, s.intervals)
	return out
}

// Total returns the sum of Len() across every interval in s.
func (s *Set) Total() uint64 {
	var n uint64
	for _, iv := range s.intervals {
		n += iv.Len()
	}
	return n
}
