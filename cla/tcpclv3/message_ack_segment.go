package tcpclv3

import (
	"fmt"
	"io"

	"github.com/dtn7/dtn7-bpv6-core/sdnv"
)

const msgTypeAckSegment uint8 = 0x2

// AckSegmentMessage acknowledges the cumulative byte length received so far
// of the current bundle transfer.
type AckSegmentMessage struct {
	AckLen uint64
}

// NewAckSegmentMessage creates a new AckSegmentMessage.
func NewAckSegmentMessage(ackLen uint64) AckSegmentMessage {
	return AckSegmentMessage{AckLen: ackLen}
}

func (asm AckSegmentMessage) String() string {
	return fmt.Sprintf("ACK_SEGMENT(AckLen=%d)", asm.AckLen)
}

func (asm AckSegmentMessage) Marshal(w io.Writer) error {
	header := byte(msgTypeAckSegment << 4)
	if _, err := w.Write([]byte{header}); err != nil {
		return err
	}
	_, err := w.Write(sdnv.EncodeAlloc(asm.AckLen))
	return err
}

func (asm *AckSegmentMessage) Unmarshal(r io.Reader) error {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	if header[0]>>4 != msgTypeAckSegment {
		return fmt.Errorf("tcpclv3: ACK_SEGMENT header type is %#x, want %#x", header[0]>>4, msgTypeAckSegment)
	}

	ackLen, err := takeSdnv(r)
	if err != nil {
		return err
	}
	asm.AckLen = ackLen
	return nil
}
