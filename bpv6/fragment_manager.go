package bpv6

import (
	"sync"

	"github.com/dtn7/dtn7-bpv6-core/eid"
)

// fragmentInfo collects the fragments received so far for one original
// bundle, plus the byte ranges of its payload those fragments cover, so
// FragmentManager can tell when an assembly attempt will succeed without
// re-scanning every fragment's offset each time.
type fragmentInfo struct {
	fragments []*View
	have      Set
	total     uint64
}

// FragmentManager collects fragments received off the wire, keyed by
// source EID and creation timestamp, and reports when enough of them have
// arrived to reassemble the original bundle. It mirrors the teacher's
// dirty-tracking View in spirit: incremental bookkeeping rather than a
// rescan of everything held so far.
type FragmentManager struct {
	mu  sync.Mutex
	set map[fragmentKey]*fragmentInfo
}

// NewFragmentManager returns an empty FragmentManager.
func NewFragmentManager() *FragmentManager {
	return &FragmentManager{set: make(map[fragmentKey]*fragmentInfo)}
}

// AddFragment records one received fragment bundle. If it is the one that
// completes its original bundle's payload, AddFragment assembles and
// returns it with complete == true, and drops the fragments it was built
// from. If v is not itself a fragment, it is returned unchanged with
// complete == true, since there is nothing to wait for.
func (fm *FragmentManager) AddFragment(v *View) (complete bool, assembled *View, err error) {
	if !v.Primary.IsFragment() {
		return true, v, nil
	}
	payload, ok := v.Payload()
	if !ok {
		return false, nil, malformed("fragment manager: fragment has no payload block")
	}

	key := fragmentKeyOf(v.Primary)
	off := v.Primary.FragmentOffset
	end := off + uint64(len(payload.Data))
	total := v.Primary.TotalADULength

	fm.mu.Lock()
	info := fm.set[key]
	if info == nil {
		info = &fragmentInfo{total: total}
		fm.set[key] = info
	}
	info.fragments = append(info.fragments, v)
	info.have.Insert(Interval{Begin: off, End: end})

	if !info.have.ContainsEntirely(0, info.total) {
		fm.mu.Unlock()
		return false, nil, nil
	}
	fragments := info.fragments
	delete(fm.set, key)
	fm.mu.Unlock()

	result, err := Assemble(fragments)
	if err != nil {
		return false, nil, err
	}
	return true, result, nil
}

// Pending reports how many distinct original bundles currently have at
// least one fragment held without yet being complete.
func (fm *FragmentManager) Pending() int {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return len(fm.set)
}

// Drop discards any fragments held for the bundle identified by source and
// creation, e.g. once its lifetime has expired. It reports whether
// anything was held.
func (fm *FragmentManager) Drop(source eid.Endpoint, creation CreationTimestamp) bool {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	key := fragmentKey{Source: source.String(), Creation: creation}
	if _, ok := fm.set[key]; !ok {
		return false
	}
	delete(fm.set, key)
	return true
}
