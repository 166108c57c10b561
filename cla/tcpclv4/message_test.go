package tcpclv4

import (
	"bytes"
	"reflect"
	"testing"
)

func TestSessionInitRoundTrip(t *testing.T) {
	si := NewSessionInitMessage(10, 1024, 0xFFFF, "ipn:1.0")

	var buf bytes.Buffer
	if err := si.Marshal(&buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got SessionInitMessage
	if err := got.Unmarshal(&buf); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, si) {
		t.Errorf("got %+v, want %+v", got, si)
	}
}

func TestKeepaliveRoundTrip(t *testing.T) {
	km := NewKeepaliveMessage()

	var buf bytes.Buffer
	if err := km.Marshal(&buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if buf.Bytes()[0] != KEEPALIVE {
		t.Fatalf("wire byte = %#x, want %#x", buf.Bytes()[0], KEEPALIVE)
	}

	var got KeepaliveMessage
	if err := got.Unmarshal(&buf); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
}

func TestXferSegmentRoundTrip(t *testing.T) {
	dtm := NewDataTransmissionMessage(SegmentStart|SegmentEnd, 7, []byte("payload"))

	var buf bytes.Buffer
	if err := dtm.Marshal(&buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got DataTransmissionMessage
	if err := got.Unmarshal(&buf); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.TransferId != dtm.TransferId || got.Flags != dtm.Flags || !bytes.Equal(got.Data, dtm.Data) {
		t.Errorf("got %+v, want %+v", got, dtm)
	}
}

func TestReadMessageDispatchesByTypeCode(t *testing.T) {
	km := NewKeepaliveMessage()
	var buf bytes.Buffer
	if err := km.Marshal(&buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	msg, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if _, ok := msg.(*KeepaliveMessage); !ok {
		t.Fatalf("got %T, want *KeepaliveMessage", msg)
	}
}

func TestReadMessageDispatchesContactHeader(t *testing.T) {
	ch := NewContactHeader(0)
	var buf bytes.Buffer
	if err := ch.Marshal(&buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	msg, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if _, ok := msg.(*ContactHeader); !ok {
		t.Fatalf("got %T, want *ContactHeader", msg)
	}
}

func TestSessionTerminationRejectsInvalidReason(t *testing.T) {
	data := []byte{SESS_TERM, 0, 0xFF}
	var stm SessionTerminationMessage
	if err := stm.Unmarshal(bytes.NewReader(data)); err == nil {
		t.Fatal("expected an error for an invalid reason code")
	}
}
