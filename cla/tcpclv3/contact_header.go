package tcpclv3

import (
	"encoding/binary"
	"fmt"
	"io"
)

// version is the fixed TCPCLv3 protocol version from RFC 7242 section 4.1.
const version uint8 = 3

// ContactFlags are single-bit flags carried in the Contact Header.
type ContactFlags uint8

const (
	// ContactBundleAck requests acknowledgement of each received bundle
	// (RFC 7242 always requires this in practice; the bit is negotiated
	// for forward compatibility with older implementations).
	ContactBundleAck ContactFlags = 0x01

	// ContactReactiveFragmentation indicates the sender supports
	// reactive fragmentation of in-flight bundles.
	ContactReactiveFragmentation ContactFlags = 0x02

	// ContactSupportRefuseBundle indicates the sender supports the
	// REFUSE_BUNDLE message.
	ContactSupportRefuseBundle ContactFlags = 0x04

	// ContactSupportLength indicates the sender supports the LENGTH message.
	ContactSupportLength ContactFlags = 0x08
)

var contactMagic = [4]byte{'d', 't', 'n', '!'}

// ContactHeader is the fixed-prefix, variable-tail preamble exchanged by
// both peers immediately after the TCP connection is established.
type ContactHeader struct {
	Flags             ContactFlags
	KeepaliveInterval uint16
	Eid               string
}

// NewContactHeader creates a new ContactHeader.
func NewContactHeader(flags ContactFlags, keepaliveInterval uint16, eid string) ContactHeader {
	return ContactHeader{Flags: flags, KeepaliveInterval: keepaliveInterval, Eid: eid}
}

func (ch ContactHeader) String() string {
	return fmt.Sprintf("ContactHeader(Flags=%#x, Keepalive=%d, EID=%s)", ch.Flags, ch.KeepaliveInterval, ch.Eid)
}

func (ch ContactHeader) Marshal(w io.Writer) error {
	if _, err := w.Write(contactMagic[:]); err != nil {
		return err
	}

	fields := []interface{}{version, byte(ch.Flags), ch.KeepaliveInterval, uint32(len(ch.Eid))}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}

	if n, err := io.WriteString(w, ch.Eid); err != nil {
		return err
	} else if n != len(ch.Eid) {
		return fmt.Errorf("tcpclv3: contact header EID length %d, wrote %d bytes", len(ch.Eid), n)
	}

	return nil
}

func (ch *ContactHeader) Unmarshal(r io.Reader) error {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return err
	}
	if magic != contactMagic {
		return fmt.Errorf("tcpclv3: contact header magic mismatch: %x", magic)
	}

	var ver, flags uint8
	if err := binary.Read(r, binary.BigEndian, &ver); err != nil {
		return err
	} else if ver != version {
		return fmt.Errorf("tcpclv3: contact header version %d, want %d", ver, version)
	}

	if err := binary.Read(r, binary.BigEndian, &flags); err != nil {
		return err
	}
	ch.Flags = ContactFlags(flags)

	if err := binary.Read(r, binary.BigEndian, &ch.KeepaliveInterval); err != nil {
		return err
	}

	var eidLen uint32
	if err := binary.Read(r, binary.BigEndian, &eidLen); err != nil {
		return err
	}

	eidBuf := make([]byte, eidLen)
	if _, err := io.ReadFull(r, eidBuf); err != nil {
		return err
	}
	ch.Eid = string(eidBuf)

	return nil
}
