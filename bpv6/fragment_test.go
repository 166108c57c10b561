package bpv6

import (
	"bytes"
	"testing"

	"github.com/dtn7/dtn7-bpv6-core/eid"
)

func buildLargeView(payloadLen int) *View {
	v := NewView(samplePrimary())
	v.AddBlock(Canonical{Value: &PHIB{Hop: eid.New(9, 0)}})
	v.AddBlock(Canonical{Flags: BlockReplicateInEveryFragment, Value: &CTEB{CustodyID: 1, Creator: eid.New(1, 0)}})
	data := make([]byte, payloadLen)
	for i := range data {
		data[i] = byte(i)
	}
	v.AddBlock(Canonical{Value: &Payload{Data: data}})
	v.AddBlock(Canonical{Value: &BundleAge{Microseconds: 1}})
	return v
}

func TestCalcNumFragments(t *testing.T) {
	cases := []struct{ total, max, want uint64 }{
		{0, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{100, 30, 4},
	}
	for _, c := range cases {
		if got := CalcNumFragments(c.total, c.max); got != c.want {
			t.Errorf("CalcNumFragments(%d, %d) = %d, want %d", c.total, c.max, got, c.want)
		}
	}
}

func TestFragmentNotNeeded(t *testing.T) {
	v := buildLargeView(10)
	frags, err := Fragment(v, 100)
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}
	if len(frags) != 1 || frags[0] != v {
		t.Fatalf("expected Fragment to return v unchanged")
	}
}

func TestFragmentAssembleRoundTrip(t *testing.T) {
	v := buildLargeView(1000)
	frags, err := Fragment(v, 300)
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}
	if len(frags) != 4 {
		t.Fatalf("got %d fragments, want 4", len(frags))
	}

	for i, f := range frags {
		if !f.Primary.IsFragment() {
			t.Errorf("fragment %d: missing IsFragment flag", i)
		}
		if f.Primary.TotalADULength != 1000 {
			t.Errorf("fragment %d: TotalADULength = %d, want 1000", i, f.Primary.TotalADULength)
		}
		blocks := f.Blocks()
		hasPhib := false
		hasCteb := false
		hasAge := false
		for _, b := range blocks {
			switch b.Value.(type) {
			case *PHIB:
				hasPhib = true
			case *CTEB:
				hasCteb = true
			case *BundleAge:
				hasAge = true
			}
		}
		if !hasCteb {
			t.Errorf("fragment %d: missing replicated CTEB block", i)
		}
		if i == 0 && !hasPhib {
			t.Errorf("fragment 0: missing before-payload PHIB block")
		}
		if i != 0 && hasPhib {
			t.Errorf("fragment %d: unexpectedly carries before-payload PHIB block", i)
		}
		if i == len(frags)-1 && !hasAge {
			t.Errorf("fragment %d: missing after-payload BundleAge block", i)
		}
		if i != len(frags)-1 && hasAge {
			t.Errorf("fragment %d: unexpectedly carries after-payload BundleAge block", i)
		}
	}

	assembled, err := Assemble(frags)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if assembled.Primary.IsFragment() {
		t.Error("assembled bundle should not have IsFragment set")
	}

	original, _ := v.Payload()
	reassembled, _ := assembled.Payload()
	if !bytes.Equal(original.Data, reassembled.Data) {
		t.Error("reassembled payload does not match original")
	}
	if len(assembled.Blocks()) != 4 {
		t.Errorf("assembled bundle has %d blocks, want 4", len(assembled.Blocks()))
	}
}

func TestAssembleRejectsMissingFragment(t *testing.T) {
	v := buildLargeView(1000)
	frags, err := Fragment(v, 300)
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}
	incomplete := append([]*View{}, frags[0], frags[2], frags[3])
	if _, err := Assemble(incomplete); err == nil {
		t.Fatal("expected rejection of incomplete fragment set")
	}
}

func TestAssembleRejectsMismatchedSource(t *testing.T) {
	v := buildLargeView(1000)
	frags, err := Fragment(v, 300)
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}
	frags[1].Primary.Source = eid.New(99, 0)
	if _, err := Assemble(frags); err == nil {
		t.Fatal("expected rejection of mismatched source EID")
	}
}

func TestFragmentRejectsMustNotFragment(t *testing.T) {
	v := buildLargeView(1000)
	v.Primary.Flags |= MustNotFragment
	if _, err := Fragment(v, 300); err == nil {
		t.Fatal("expected rejection of must-not-fragment bundle")
	}
}
