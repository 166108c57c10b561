package tcpclv4

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// SegmentFlags are single-bit flags on a XFER_SEGMENT message.
type SegmentFlags uint8

const (
	// SegmentEnd marks the last segment of a transfer.
	SegmentEnd SegmentFlags = 0x01

	// SegmentStart marks the first segment of a transfer.
	SegmentStart SegmentFlags = 0x02
)

func (sf SegmentFlags) String() string {
	var flags []string
	if sf&SegmentStart != 0 {
		flags = append(flags, "START")
	}
	if sf&SegmentEnd != 0 {
		flags = append(flags, "END")
	}
	return strings.Join(flags, ",")
}

// XFER_SEGMENT is the message type code for a Data Transmission Message.
const XFER_SEGMENT uint8 = 0x01

// DataTransmissionMessage carries one chunk of a bundle transfer.
type DataTransmissionMessage struct {
	Flags      SegmentFlags
	TransferId uint64
	Data       []byte

	// Transfer Extension Items are not implemented: an empty list is
	// produced, and a received list is skipped unparsed.
}

// NewDataTransmissionMessage creates a new DataTransmissionMessage.
func NewDataTransmissionMessage(flags SegmentFlags, tid uint64, data []byte) DataTransmissionMessage {
	return DataTransmissionMessage{Flags: flags, TransferId: tid, Data: data}
}

func (dtm DataTransmissionMessage) String() string {
	return fmt.Sprintf("XFER_SEGMENT(Flags=%v, TransferID=%d, len(Data)=%d)", dtm.Flags, dtm.TransferId, len(dtm.Data))
}

func (dtm DataTransmissionMessage) Marshal(w io.Writer) error {
	fields := []interface{}{XFER_SEGMENT, dtm.Flags, dtm.TransferId, uint32(0), uint64(len(dtm.Data))}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}

	if n, err := w.Write(dtm.Data); err != nil {
		return err
	} else if n != len(dtm.Data) {
		return fmt.Errorf("tcpclv4: XFER_SEGMENT data length %d, wrote %d bytes", len(dtm.Data), n)
	}
	return nil
}

func (dtm *DataTransmissionMessage) Unmarshal(r io.Reader) error {
	var hdr uint8
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return err
	} else if hdr != XFER_SEGMENT {
		return fmt.Errorf("tcpclv4: XFER_SEGMENT header is %#x, want %#x", hdr, XFER_SEGMENT)
	}

	var extLen uint32
	fields := []interface{}{&dtm.Flags, &dtm.TransferId, &extLen}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return err
		}
	}

	if extLen > 0 {
		extBuf := make([]byte, extLen)
		if _, err := io.ReadFull(r, extBuf); err != nil {
			return err
		}
	}

	var dataLen uint64
	if err := binary.Read(r, binary.BigEndian, &dataLen); err != nil {
		return err
	} else if dataLen > 0 {
		dtm.Data = make([]byte, dataLen)
		if _, err := io.ReadFull(r, dtm.Data); err != nil {
			return err
		}
	}

	return nil
}
