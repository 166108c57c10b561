package bpv6

import (
	"bytes"
	"testing"

	"github.com/dtn7/dtn7-bpv6-core/eid"
)

func buildSampleView() *View {
	v := NewView(samplePrimary())
	v.AddBlock(Canonical{Value: &Payload{Data: []byte("hello")}})
	v.AddBlock(Canonical{Value: &CTEB{CustodyID: 1, Creator: eid.New(1, 0)}})
	return v
}

func TestViewRoundTrip(t *testing.T) {
	v := buildSampleView()
	rendered, err := v.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	got, err := Load(rendered)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	rendered2, err := got.Render()
	if err != nil {
		t.Fatalf("re-Render: %v", err)
	}
	if !bytes.Equal(rendered, rendered2) {
		t.Errorf("Load(Render(v)) did not round-trip byte-for-byte")
	}

	if got.Primary != v.Primary {
		t.Errorf("primary mismatch: got %+v, want %+v", got.Primary, v.Primary)
	}
	if len(got.Blocks()) != 2 {
		t.Fatalf("got %d blocks, want 2", len(got.Blocks()))
	}
}

func TestViewLastBlockFlagLandsOnLastBlock(t *testing.T) {
	v := buildSampleView()
	rendered, err := v.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got, err := Load(rendered)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	blocks := got.Blocks()
	for i, b := range blocks {
		want := i == len(blocks)-1
		if b.Flags.Has(BlockIsLastBlock) != want {
			t.Errorf("block %d: IS_LAST_BLOCK = %v, want %v", i, b.Flags.Has(BlockIsLastBlock), want)
		}
	}
}

func TestViewMarkForDeletion(t *testing.T) {
	v := buildSampleView()
	v.MarkForDeletion(1)
	if len(v.Blocks()) != 1 {
		t.Fatalf("got %d blocks after deletion, want 1", len(v.Blocks()))
	}
	rendered, err := v.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got, err := Load(rendered)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Blocks()) != 1 {
		t.Fatalf("got %d blocks after round trip, want 1", len(got.Blocks()))
	}
	if _, ok := got.Payload(); !ok {
		t.Error("expected payload block to survive")
	}
}

func TestViewRejectsDataAfterLastBlock(t *testing.T) {
	v := buildSampleView()
	rendered, err := v.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// Append a stray byte after the block carrying IS_LAST_BLOCK, which
	// Load's check for data following the last block will reject.
	corrupted := append(append([]byte{}, rendered...), 0xff)
	if _, err := Load(corrupted); err == nil {
		t.Fatal("expected rejection of trailing garbage after last block")
	}
}

func TestViewAdminRecordDecoding(t *testing.T) {
	p := samplePrimary()
	p.Flags |= IsAdminRecord
	p.Flags &^= CustodyTransfer
	v := NewView(p)

	rec := &AdminRecord{Content: &CustodySignal{
		Succeeded:    true,
		Reason:       ReasonNoAdditionalInformation,
		TimeOfSignal: DTNTime{Seconds: 1, Nanoseconds: 2},
		Creation:     CreationTimestamp{Seconds: 1, Sequence: 0},
		Source:       eid.New(1, 0),
	}}
	v.AddBlock(Canonical{Value: &Payload{Data: rec.Serialize(nil)}})

	rendered, err := v.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got, err := Load(rendered)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	payload, ok := got.Payload()
	if !ok {
		t.Fatal("expected payload block")
	}
	if payload.Record == nil {
		t.Fatal("expected administrative record to be decoded")
	}
	if _, ok := payload.Record.Content.(*CustodySignal); !ok {
		t.Errorf("got %T, want *CustodySignal", payload.Record.Content)
	}
}
