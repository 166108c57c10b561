package tcpclv3

import (
	"bytes"
	"reflect"
	"testing"
)

func TestContactHeaderRoundTrip(t *testing.T) {
	ch := NewContactHeader(ContactBundleAck|ContactSupportLength, 10, "ipn:1.0")

	var buf bytes.Buffer
	if err := ch.Marshal(&buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got ContactHeader
	if err := got.Unmarshal(&buf); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, ch) {
		t.Errorf("got %+v, want %+v", got, ch)
	}
}

func TestContactHeaderRejectsBadMagic(t *testing.T) {
	var ch ContactHeader
	buf := bytes.NewReader([]byte{'x', 't', 'n', '!', 3, 0, 0, 0, 0, 0, 0, 0})
	if err := ch.Unmarshal(buf); err == nil {
		t.Fatal("expected an error for bad magic")
	}
}

func TestDataSegmentRoundTrip(t *testing.T) {
	dsm := NewDataSegmentMessage(SegmentStart|SegmentEnd, []byte("payload"))

	var buf bytes.Buffer
	if err := dsm.Marshal(&buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got DataSegmentMessage
	if err := got.Unmarshal(&buf); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Flags != dsm.Flags || !bytes.Equal(got.Data, dsm.Data) {
		t.Errorf("got %+v, want %+v", got, dsm)
	}
}

func TestAckSegmentRoundTrip(t *testing.T) {
	asm := NewAckSegmentMessage(12345)

	var buf bytes.Buffer
	if err := asm.Marshal(&buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got AckSegmentMessage
	if err := got.Unmarshal(&buf); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.AckLen != asm.AckLen {
		t.Errorf("got %+v, want %+v", got, asm)
	}
}

func TestShutdownRoundTripWithFields(t *testing.T) {
	sm := NewShutdownMessage(ShutdownBusy, true, 30, true)

	var buf bytes.Buffer
	if err := sm.Marshal(&buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got ShutdownMessage
	if err := got.Unmarshal(&buf); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, sm) {
		t.Errorf("got %+v, want %+v", got, sm)
	}
}

func TestShutdownRoundTripNoFields(t *testing.T) {
	sm := NewShutdownMessage(0, false, 0, false)

	var buf bytes.Buffer
	if err := sm.Marshal(&buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if buf.Len() != 1 {
		t.Fatalf("wire length = %d, want 1", buf.Len())
	}

	var got ShutdownMessage
	if err := got.Unmarshal(&buf); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.HasReason || got.HasReconnectDelay {
		t.Errorf("got %+v, want no optional fields", got)
	}
}

func TestReadMessageDispatchesByTypeNibble(t *testing.T) {
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
	ch := NewContactHeader(0, 10, "ipn:1.0")
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

func TestLengthRoundTrip(t *testing.T) {
	lm := NewLengthMessage(999999)

	var buf bytes.Buffer
	if err := lm.Marshal(&buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got LengthMessage
	if err := got.Unmarshal(&buf); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Length != lm.Length {
		t.Errorf("got %+v, want %+v", got, lm)
	}
}
