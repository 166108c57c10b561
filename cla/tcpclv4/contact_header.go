package tcpclv4

import (
	"fmt"
	"io"
)

// version is the fixed TCPCLv4 protocol version from RFC 9174 section 4.2.
const version uint8 = 4

// ContactFlags are single-bit session extension flags carried in the
// Contact Header.
type ContactFlags uint8

const (
	// ContactCanTls indicates the sender is capable of TLS security, per
	// RFC 9174 section 4.2. This implementation never negotiates TLS: it
	// sends the flag cleared, and the flag of a received Contact Header is
	// not inspected, so no session is refused over TLS.
	ContactCanTls ContactFlags = 0x01
)

var contactMagic = [4]byte{'d', 't', 'n', '!'}

// ContactHeader is the fixed-format preamble exchanged by both peers
// immediately after a TCP connection is established, before any other
// TCPCLv4 message.
type ContactHeader struct {
	Flags ContactFlags
}

// NewContactHeader creates a new ContactHeader with the given flags.
func NewContactHeader(flags ContactFlags) ContactHeader {
	return ContactHeader{Flags: flags}
}

func (ch ContactHeader) String() string {
	return fmt.Sprintf("ContactHeader(Flags=%#x)", ch.Flags)
}

func (ch ContactHeader) Marshal(w io.Writer) error {
	buf := []byte{contactMagic[0], contactMagic[1], contactMagic[2], contactMagic[3], version, byte(ch.Flags)}
	_, err := w.Write(buf)
	return err
}

func (ch *ContactHeader) Unmarshal(r io.Reader) error {
	var buf [6]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}

	if buf[0] != contactMagic[0] || buf[1] != contactMagic[1] || buf[2] != contactMagic[2] || buf[3] != contactMagic[3] {
		return fmt.Errorf("tcpclv4: contact header magic mismatch: %x", buf[:4])
	}
	if buf[4] != version {
		return fmt.Errorf("tcpclv4: contact header version %d, want %d", buf[4], version)
	}

	ch.Flags = ContactFlags(buf[5])
	return nil
}
