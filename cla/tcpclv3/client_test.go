package tcpclv3

import (
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dtn7/dtn7-bpv6-core/bpv6"
	"github.com/dtn7/dtn7-bpv6-core/eid"
)

func sampleView() *bpv6.View {
	p := bpv6.Primary{
		Flags:       bpv6.SingletonDestination,
		Destination: eid.New(2, 0),
		Source:      eid.New(1, 0),
		ReportTo:    eid.New(1, 0),
		Creation:    bpv6.CreationTimestamp{Seconds: 1, Sequence: 0},
		Lifetime:    3600,
	}
	v := bpv6.NewView(p)
	v.AddBlock(bpv6.Canonical{Value: &bpv6.Payload{Data: []byte("hello tcpclv3")}})
	return v
}

func TestClientLoopbackHandshakeAndTransfer(t *testing.T) {
	logrus.SetLevel(logrus.ErrorLevel)

	clientConn, serverConn := net.Pipe()

	active := DialClient("unused", eid.New(1, 0), false, logrus.NewEntry(logrus.StandardLogger()))
	active.conn = clientConn
	active.address = "pipe-active"

	passive := NewClient(serverConn, eid.New(2, 0), logrus.NewEntry(logrus.StandardLogger()))

	if err, _ := active.Start(); err != nil {
		t.Fatalf("active.Start: %v", err)
	}
	if err, _ := passive.Start(); err != nil {
		t.Fatalf("passive.Start: %v", err)
	}
	defer active.Close()
	defer passive.Close()

	deadline := time.After(5 * time.Second)
	for !active.state.isEstablished() || !passive.state.isEstablished() {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for session establishment")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if active.GetPeerEndpointID() != eid.New(2, 0) {
		t.Errorf("active's peer EID = %v, want ipn:2.0", active.GetPeerEndpointID())
	}

	v := sampleView()
	sendErr := make(chan error, 1)
	go func() { sendErr <- active.Send(v) }()

	select {
	case err := <-sendErr:
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out sending bundle")
	}

	select {
	case rec := <-passive.Channel():
		payload, ok := rec.View.Payload()
		if !ok {
			t.Fatal("received view has no payload")
		}
		if string(payload.Data) != "hello tcpclv3" {
			t.Errorf("payload = %q, want %q", payload.Data, "hello tcpclv3")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for received bundle")
	}
}
