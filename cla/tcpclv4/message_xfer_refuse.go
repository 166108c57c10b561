package tcpclv4

import (
	"encoding/binary"
	"fmt"
	"io"
)

// TransferRefusalCode is the one-octet reason code for a XFER_REFUSE message.
type TransferRefusalCode uint8

const (
	RefusalUnknown         TransferRefusalCode = 0x00
	RefusalCompleted       TransferRefusalCode = 0x01
	RefusalNoResources     TransferRefusalCode = 0x02
	RefusalRetransmitted   TransferRefusalCode = 0x03
	RefusalNotAcceptable   TransferRefusalCode = 0x04
	RefusalExtensionFailed TransferRefusalCode = 0x05
	RefusalSessionTerminating TransferRefusalCode = 0x06
)

// XFER_REFUSE is the message type code for a Transfer Refusal Message.
const XFER_REFUSE uint8 = 0x03

// TransferRefusalMessage refuses further XFER_SEGMENTs of a transfer.
type TransferRefusalMessage struct {
	ReasonCode TransferRefusalCode
	TransferId uint64
}

// NewTransferRefusalMessage creates a new TransferRefusalMessage.
func NewTransferRefusalMessage(reason TransferRefusalCode, tid uint64) TransferRefusalMessage {
	return TransferRefusalMessage{ReasonCode: reason, TransferId: tid}
}

func (trm TransferRefusalMessage) String() string {
	return fmt.Sprintf("XFER_REFUSE(Reason=%d, TransferID=%d)", trm.ReasonCode, trm.TransferId)
}

func (trm TransferRefusalMessage) Marshal(w io.Writer) error {
	fields := []interface{}{XFER_REFUSE, trm.ReasonCode, trm.TransferId}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func (trm *TransferRefusalMessage) Unmarshal(r io.Reader) error {
	var hdr uint8
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return err
	} else if hdr != XFER_REFUSE {
		return fmt.Errorf("tcpclv4: XFER_REFUSE header is %#x, want %#x", hdr, XFER_REFUSE)
	}

	fields := []interface{}{&trm.ReasonCode, &trm.TransferId}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}
