package tcpclv3

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dtn7/dtn7-bpv6-core/bpv6"
)

// OutgoingTransfer segments a rendered bundle view into DATA_SEGMENT
// messages no larger than the maximum segment size passed to NextSegment.
type OutgoingTransfer struct {
	data      []byte
	offset    int
	startSent bool
}

// NewOutgoingTransfer renders v and prepares it for segmented transmission.
func NewOutgoingTransfer(v *bpv6.View) (*OutgoingTransfer, error) {
	data, err := v.Render()
	if err != nil {
		return nil, fmt.Errorf("tcpclv3: rendering outgoing bundle: %w", err)
	}
	return &OutgoingTransfer{data: data}, nil
}

// NextSegment produces the next DATA_SEGMENT for the given maximum segment
// size, or io.EOF once the whole transfer has been segmented.
func (t *OutgoingTransfer) NextSegment(maxSegmentSize uint64) (dsm DataSegmentMessage, err error) {
	if t.offset >= len(t.data) && t.startSent {
		return dsm, io.EOF
	}

	var flags SegmentFlags
	if !t.startSent {
		flags |= SegmentStart
		t.startSent = true
	}

	if maxSegmentSize == 0 {
		maxSegmentSize = uint64(len(t.data))
	}

	end := t.offset + int(maxSegmentSize)
	if end >= len(t.data) {
		end = len(t.data)
		flags |= SegmentEnd
	}
	if len(t.data) == 0 {
		flags |= SegmentEnd
	}

	chunk := t.data[t.offset:end]
	t.offset = end

	return NewDataSegmentMessage(flags, chunk), nil
}

// IncomingTransfer reassembles DATA_SEGMENT messages into one bundle view.
type IncomingTransfer struct {
	endFlag bool
	buf     bytes.Buffer
}

// NewIncomingTransfer creates a new, empty IncomingTransfer.
func NewIncomingTransfer() *IncomingTransfer {
	return &IncomingTransfer{}
}

// IsFinished reports whether the end-flagged segment has been received.
func (t *IncomingTransfer) IsFinished() bool {
	return t.endFlag
}

// NextSegment appends dsm's data to the transfer and returns the
// cumulative byte length to acknowledge.
func (t *IncomingTransfer) NextSegment(dsm DataSegmentMessage) (ackLen uint64, err error) {
	if t.endFlag {
		return 0, fmt.Errorf("tcpclv3: transfer already received its end segment")
	}

	if _, err := t.buf.Write(dsm.Data); err != nil {
		return 0, err
	}

	if dsm.Flags&SegmentEnd != 0 {
		t.endFlag = true
	}

	return uint64(t.buf.Len()), nil
}

// ToView decodes the finished transfer's bytes into a bundle view.
func (t *IncomingTransfer) ToView() (*bpv6.View, error) {
	if !t.endFlag {
		return nil, fmt.Errorf("tcpclv3: transfer has not finished")
	}
	return bpv6.Load(t.buf.Bytes())
}
