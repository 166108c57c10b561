package tcpclv4

import (
	"encoding/binary"
	"fmt"
	"io"
)

// SESS_INIT is the message type code for a Session Initialization Message.
const SESS_INIT uint8 = 0x07

// SessionInitMessage negotiates session parameters: keepalive interval,
// segment and transfer MRUs, and the node's own EID.
type SessionInitMessage struct {
	KeepaliveInterval uint16
	SegmentMru        uint64
	TransferMru       uint64
	Eid               string

	// Session Extension Items are not implemented: an empty list is
	// produced, and a received list is skipped unparsed, so critical items
	// are not detected.
}

// NewSessionInitMessage creates a new SessionInitMessage with the given fields.
func NewSessionInitMessage(keepaliveInterval uint16, segmentMru, transferMru uint64, eid string) SessionInitMessage {
	return SessionInitMessage{
		KeepaliveInterval: keepaliveInterval,
		SegmentMru:        segmentMru,
		TransferMru:       transferMru,
		Eid:               eid,
	}
}

func (si SessionInitMessage) String() string {
	return fmt.Sprintf(
		"SESS_INIT(Keepalive=%d, SegmentMRU=%d, TransferMRU=%d, EID=%s)",
		si.KeepaliveInterval, si.SegmentMru, si.TransferMru, si.Eid)
}

func (si SessionInitMessage) Marshal(w io.Writer) error {
	fields := []interface{}{SESS_INIT, si.KeepaliveInterval, si.SegmentMru, si.TransferMru, uint16(len(si.Eid))}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}

	if n, err := io.WriteString(w, si.Eid); err != nil {
		return err
	} else if n != len(si.Eid) {
		return fmt.Errorf("tcpclv4: SESS_INIT EID length %d, wrote %d bytes", len(si.Eid), n)
	}

	// Session Extension Items Length, always zero.
	return binary.Write(w, binary.BigEndian, uint32(0))
}

func (si *SessionInitMessage) Unmarshal(r io.Reader) error {
	var hdr uint8
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return err
	} else if hdr != SESS_INIT {
		return fmt.Errorf("tcpclv4: SESS_INIT header is %#x, want %#x", hdr, SESS_INIT)
	}

	var eidLen uint16
	fields := []interface{}{&si.KeepaliveInterval, &si.SegmentMru, &si.TransferMru, &eidLen}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return err
		}
	}

	eidBuf := make([]byte, eidLen)
	if _, err := io.ReadFull(r, eidBuf); err != nil {
		return err
	}
	si.Eid = string(eidBuf)

	var extLen uint32
	if err := binary.Read(r, binary.BigEndian, &extLen); err != nil {
		return err
	} else if extLen > 0 {
		extBuf := make([]byte, extLen)
		if _, err := io.ReadFull(r, extBuf); err != nil {
			return err
		}
	}

	return nil
}
