package tcpclv4

import (
	"fmt"
	"io"
)

// KEEPALIVE is the message type code for a Keepalive Message.
const KEEPALIVE uint8 = 0x04

// KeepaliveMessage carries no payload; its sole purpose is to keep an idle
// session's liveness detectable.
type KeepaliveMessage struct{}

// NewKeepaliveMessage creates a new KeepaliveMessage.
func NewKeepaliveMessage() KeepaliveMessage {
	return KeepaliveMessage{}
}

func (KeepaliveMessage) String() string {
	return "KEEPALIVE"
}

func (KeepaliveMessage) Marshal(w io.Writer) error {
	_, err := w.Write([]byte{KEEPALIVE})
	return err
}

func (km *KeepaliveMessage) Unmarshal(r io.Reader) error {
	var hdr [1]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	} else if hdr[0] != KEEPALIVE {
		return fmt.Errorf("tcpclv4: KEEPALIVE header is %#x, want %#x", hdr[0], KEEPALIVE)
	}
	return nil
}
