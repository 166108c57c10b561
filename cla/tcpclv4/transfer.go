package tcpclv4

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dtn7/dtn7-bpv6-core/bpv6"
)

// OutgoingTransfer segments a rendered bundle view into XFER_SEGMENT
// messages no larger than the peer's segment MRU.
type OutgoingTransfer struct {
	Id uint64

	data      []byte
	offset    int
	startSent bool
}

// NewOutgoingTransfer renders v and prepares it for segmented transmission.
func NewOutgoingTransfer(id uint64, v *bpv6.View) (*OutgoingTransfer, error) {
	data, err := v.Render()
	if err != nil {
		return nil, fmt.Errorf("tcpclv4: rendering outgoing bundle: %w", err)
	}
	return &OutgoingTransfer{Id: id, data: data}, nil
}

func (t OutgoingTransfer) String() string {
	return fmt.Sprintf("OUTGOING_TRANSFER(%d)", t.Id)
}

// NextSegment produces the next XFER_SEGMENT for the given MRU, or io.EOF
// once the whole transfer has been segmented.
func (t *OutgoingTransfer) NextSegment(mru uint64) (dtm DataTransmissionMessage, err error) {
	if t.offset >= len(t.data) && t.startSent {
		return dtm, io.EOF
	}

	var flags SegmentFlags
	if !t.startSent {
		flags |= SegmentStart
		t.startSent = true
	}

	if mru == 0 {
		mru = uint64(len(t.data))
	}

	end := t.offset + int(mru)
	if end >= len(t.data) {
		end = len(t.data)
		flags |= SegmentEnd
	}

	chunk := t.data[t.offset:end]
	t.offset = end

	if len(t.data) == 0 {
		flags |= SegmentEnd
	}

	return NewDataTransmissionMessage(flags, t.Id, chunk), nil
}

// IncomingTransfer reassembles XFER_SEGMENT messages sharing a transfer ID
// into one bundle view.
type IncomingTransfer struct {
	Id      uint64
	endFlag bool
	buf     bytes.Buffer
}

// NewIncomingTransfer creates a new IncomingTransfer for the given transfer ID.
func NewIncomingTransfer(id uint64) *IncomingTransfer {
	return &IncomingTransfer{Id: id}
}

func (t *IncomingTransfer) String() string {
	return fmt.Sprintf("INCOMING_TRANSFER(%d)", t.Id)
}

// IsFinished reports whether the end-flagged segment has been received.
func (t *IncomingTransfer) IsFinished() bool {
	return t.endFlag
}

// NextSegment appends dtm's data to the transfer and returns the XFER_ACK
// to send in response.
func (t *IncomingTransfer) NextSegment(dtm DataTransmissionMessage) (dam DataAcknowledgementMessage, err error) {
	if t.endFlag {
		return dam, fmt.Errorf("tcpclv4: transfer %d already received its end segment", t.Id)
	}
	if t.Id != dtm.TransferId {
		return dam, fmt.Errorf("tcpclv4: XFER_SEGMENT transfer id %d mismatches %d", dtm.TransferId, t.Id)
	}

	if _, err := t.buf.Write(dtm.Data); err != nil {
		return dam, err
	}

	if dtm.Flags&SegmentEnd != 0 {
		t.endFlag = true
	}

	return NewDataAcknowledgementMessage(dtm.Flags, dtm.TransferId, uint64(t.buf.Len())), nil
}

// ToView decodes the finished transfer's bytes into a bundle view.
func (t *IncomingTransfer) ToView() (*bpv6.View, error) {
	if !t.endFlag {
		return nil, fmt.Errorf("tcpclv4: transfer %d has not finished", t.Id)
	}
	return bpv6.Load(t.buf.Bytes())
}
