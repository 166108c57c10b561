package tcpclv4

import (
	"bytes"
	"io"
	"testing"

	"github.com/dtn7/dtn7-bpv6-core/bpv6"
	"github.com/dtn7/dtn7-bpv6-core/eid"
)

func TestOutgoingIncomingTransferRoundTrip(t *testing.T) {
	p := bpv6.Primary{
		Flags:       bpv6.SingletonDestination,
		Destination: eid.New(2, 0),
		Source:      eid.New(1, 0),
		ReportTo:    eid.New(1, 0),
		Creation:    bpv6.CreationTimestamp{Seconds: 1},
		Lifetime:    3600,
	}
	v := bpv6.NewView(p)
	v.AddBlock(bpv6.Canonical{Value: &bpv6.Payload{Data: bytes.Repeat([]byte("x"), 500)}})

	out, err := NewOutgoingTransfer(1, v)
	if err != nil {
		t.Fatalf("NewOutgoingTransfer: %v", err)
	}

	in := NewIncomingTransfer(1)
	for {
		dtm, segErr := out.NextSegment(64)
		if segErr == io.EOF {
			break
		}
		if segErr != nil {
			t.Fatalf("NextSegment: %v", segErr)
		}

		if _, ackErr := in.NextSegment(dtm); ackErr != nil {
			t.Fatalf("in.NextSegment: %v", ackErr)
		}
	}

	if !in.IsFinished() {
		t.Fatal("expected incoming transfer to be finished")
	}

	got, err := in.ToView()
	if err != nil {
		t.Fatalf("ToView: %v", err)
	}

	payload, ok := got.Payload()
	if !ok {
		t.Fatal("expected a payload block")
	}
	if len(payload.Data) != 500 {
		t.Errorf("payload length = %d, want 500", len(payload.Data))
	}
}
