package tcpclv4

import (
	"encoding/binary"
	"fmt"
	"io"
)

// XFER_ACK is the message type code for a Data Acknowledgement Message.
const XFER_ACK uint8 = 0x02

// DataAcknowledgementMessage acknowledges a received XFER_SEGMENT.
type DataAcknowledgementMessage struct {
	Flags      SegmentFlags
	TransferId uint64
	AckLen     uint64
}

// NewDataAcknowledgementMessage creates a new DataAcknowledgementMessage.
func NewDataAcknowledgementMessage(flags SegmentFlags, tid, ackLen uint64) DataAcknowledgementMessage {
	return DataAcknowledgementMessage{Flags: flags, TransferId: tid, AckLen: ackLen}
}

func (dam DataAcknowledgementMessage) String() string {
	return fmt.Sprintf("XFER_ACK(Flags=%v, TransferID=%d, AckLen=%d)", dam.Flags, dam.TransferId, dam.AckLen)
}

func (dam DataAcknowledgementMessage) Marshal(w io.Writer) error {
	fields := []interface{}{XFER_ACK, dam.Flags, dam.TransferId, dam.AckLen}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func (dam *DataAcknowledgementMessage) Unmarshal(r io.Reader) error {
	var hdr uint8
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return err
	} else if hdr != XFER_ACK {
		return fmt.Errorf("tcpclv4: XFER_ACK header is %#x, want %#x", hdr, XFER_ACK)
	}

	fields := []interface{}{&dam.Flags, &dam.TransferId, &dam.AckLen}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}
