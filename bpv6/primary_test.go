package bpv6

import (
	"testing"

	"github.com/dtn7/dtn7-bpv6-core/eid"
)

func samplePrimary() Primary {
	return Primary{
		Flags:       SingletonDestination | PriorityExpedited | CustodyTransfer,
		Destination: eid.New(2, 0),
		Source:      eid.New(1, 0),
		ReportTo:    eid.New(1, 0),
		Custodian:   eid.New(1, 0),
		Creation:    CreationTimestamp{Seconds: 123456, Sequence: 3},
		Lifetime:    3600,
	}
}

func TestPrimaryRoundTrip(t *testing.T) {
	p := samplePrimary()
	out := p.Serialize(nil)
	if len(out) != p.SerializedSize() {
		t.Fatalf("Serialize produced %d bytes, SerializedSize said %d", len(out), p.SerializedSize())
	}

	got, consumed, err := DeserializePrimary(out)
	if err != nil {
		t.Fatalf("DeserializePrimary: %v", err)
	}
	if consumed != len(out) {
		t.Errorf("consumed %d, want %d", consumed, len(out))
	}
	if got != p {
		t.Errorf("got %+v, want %+v", got, p)
	}
}

func TestPrimaryFragmentRoundTrip(t *testing.T) {
	p := samplePrimary()
	p.Flags |= IsFragment
	p.FragmentOffset = 1400
	p.TotalADULength = 9000

	out := p.Serialize(nil)
	got, consumed, err := DeserializePrimary(out)
	if err != nil {
		t.Fatalf("DeserializePrimary: %v", err)
	}
	if consumed != len(out) {
		t.Errorf("consumed %d, want %d", consumed, len(out))
	}
	if got != p {
		t.Errorf("got %+v, want %+v", got, p)
	}
}

func TestPrimaryRejectsNonCBHE(t *testing.T) {
	p := samplePrimary()
	out := p.Serialize(nil)

	// Corrupt the dictionary-length SDNV (the last field before any
	// fragment fields) to a nonzero value by re-encoding a bundle with a
	// hand-built body: simplest is to flip the trailing zero byte, which
	// for this sample bundle is exactly the dictionary-length field.
	out[len(out)-1] = 0x01
	if _, _, err := DeserializePrimary(out); err == nil {
		t.Fatal("expected rejection of non-CBHE dictionary length")
	}
}

func TestPrimaryRejectsTruncated(t *testing.T) {
	p := samplePrimary()
	out := p.Serialize(nil)
	for i := range out {
		if _, _, err := DeserializePrimary(out[:i]); err == nil {
			t.Errorf("truncation to %d bytes unexpectedly succeeded", i)
		}
	}
}

func TestPrimaryRejectsWrongVersion(t *testing.T) {
	p := samplePrimary()
	out := p.Serialize(nil)
	out[0] = 7
	if _, _, err := DeserializePrimary(out); err == nil {
		t.Fatal("expected rejection of wrong version byte")
	}
}
