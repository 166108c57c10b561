// Package tcpclv4 implements the TCPCL version 4 convergence layer
// (RFC 9174): a bidirectional, connection-oriented link over a single TCP
// socket carrying the contact header handshake, a SESS_INIT parameter
// negotiation, bundle transfers framed as XFER_SEGMENT/XFER_ACK/XFER_REFUSE,
// idle-session KEEPALIVEs and a SESS_TERM teardown handshake.
package tcpclv4

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// Message describes all kinds of TCPCLv4 messages, which have their
// serialization and deserialization in common.
type Message interface {
	Marshal(w io.Writer) error
	Unmarshal(r io.Reader) error
}

// messages maps the TCPCLv4 message type codes to an example instance of
// their type. 0x64 is not a message type code; it is the reserved slot
// under which the Contact Header (which carries no type byte of its own
// on the wire) is registered for ReadMessage's benefit.
var messages = map[uint8]Message{
	SESS_INIT:       &SessionInitMessage{},
	SESS_TERM:       &SessionTerminationMessage{},
	XFER_SEGMENT:    &DataTransmissionMessage{},
	XFER_ACK:        &DataAcknowledgementMessage{},
	XFER_REFUSE:     &TransferRefusalMessage{},
	KEEPALIVE:       &KeepaliveMessage{},
	MSG_REJECT:      &MessageRejectionMessage{},
	contactMagic[0]: &ContactHeader{},
}

// NewMessage creates a new Message type for a given type code.
func NewMessage(typeCode uint8) (msg Message, err error) {
	msgType, exists := messages[typeCode]
	if !exists {
		return nil, fmt.Errorf("tcpclv4: no message registered for type code %#x", typeCode)
	}

	msgElem := reflect.TypeOf(msgType).Elem()
	return reflect.New(msgElem).Interface().(Message), nil
}

// ReadMessage parses the next TCPCLv4 message from the Reader.
func ReadMessage(r io.Reader) (msg Message, err error) {
	var typeByte [1]byte
	if _, err = io.ReadFull(r, typeByte[:]); err != nil {
		return nil, err
	}

	msg, err = NewMessage(typeByte[0])
	if err != nil {
		return nil, err
	}

	mr := io.MultiReader(bytes.NewReader(typeByte[:]), r)
	err = msg.Unmarshal(mr)
	return
}
