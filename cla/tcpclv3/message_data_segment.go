package tcpclv3

import (
	"fmt"
	"io"
	"strings"

	"github.com/dtn7/dtn7-bpv6-core/sdnv"
)

const msgTypeDataSegment uint8 = 0x1

// SegmentFlags are the low-nibble, single-bit flags of a DATA_SEGMENT header byte.
type SegmentFlags uint8

const (
	// SegmentEnd marks the last segment of a transfer.
	SegmentEnd SegmentFlags = 0x1

	// SegmentStart marks the first segment of a transfer.
	SegmentStart SegmentFlags = 0x2
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

// DataSegmentMessage carries one chunk of bundle data. Unlike TCPCLv4, a
// DATA_SEGMENT has no transfer ID; segments are implicitly sequenced on
// the connection and delimited only by the START/END flags.
type DataSegmentMessage struct {
	Flags SegmentFlags
	Data  []byte
}

// NewDataSegmentMessage creates a new DataSegmentMessage.
func NewDataSegmentMessage(flags SegmentFlags, data []byte) DataSegmentMessage {
	return DataSegmentMessage{Flags: flags, Data: data}
}

func (dsm DataSegmentMessage) String() string {
	return fmt.Sprintf("DATA_SEGMENT(Flags=%v, len(Data)=%d)", dsm.Flags, len(dsm.Data))
}

func (dsm DataSegmentMessage) Marshal(w io.Writer) error {
	header := byte(msgTypeDataSegment<<4) | byte(dsm.Flags)
	if _, err := w.Write([]byte{header}); err != nil {
		return err
	}

	lenBuf := sdnv.EncodeAlloc(uint64(len(dsm.Data)))
	if _, err := w.Write(lenBuf); err != nil {
		return err
	}

	if n, err := w.Write(dsm.Data); err != nil {
		return err
	} else if n != len(dsm.Data) {
		return fmt.Errorf("tcpclv3: DATA_SEGMENT length %d, wrote %d bytes", len(dsm.Data), n)
	}

	return nil
}

func (dsm *DataSegmentMessage) Unmarshal(r io.Reader) error {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	if header[0]>>4 != msgTypeDataSegment {
		return fmt.Errorf("tcpclv3: DATA_SEGMENT header type is %#x, want %#x", header[0]>>4, msgTypeDataSegment)
	}
	dsm.Flags = SegmentFlags(header[0] & 0x0f)

	length, err := takeSdnv(r)
	if err != nil {
		return err
	}

	dsm.Data = make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, dsm.Data); err != nil {
			return err
		}
	}

	return nil
}
