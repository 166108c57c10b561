// Package tcpclv3 implements the TCPCL version 3 convergence layer
// (RFC 7242): a bidirectional link over one TCP socket whose messages pack
// a message type into the top nibble and per-type flags into the bottom
// nibble of a single header byte, and use SDNVs rather than fixed-width
// integers for segment and acknowledgement lengths.
package tcpclv3

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// Message describes all kinds of TCPCLv3 messages.
type Message interface {
	Marshal(w io.Writer) error
	Unmarshal(r io.Reader) error
}

// messages maps the TCPCLv3 message type codes (the top nibble of the
// header byte) to an example instance of their type. 0x64 ('d', the first
// byte of the "dtn!" magic) is reserved for dispatching the Contact Header,
// which carries no type nibble of its own.
var messages = map[uint8]Message{
	msgTypeDataSegment:  &DataSegmentMessage{},
	msgTypeAckSegment:   &AckSegmentMessage{},
	msgTypeRefuseBundle: &RefuseBundleMessage{},
	msgTypeKeepalive:    &KeepaliveMessage{},
	msgTypeShutdown:     &ShutdownMessage{},
	msgTypeLength:       &LengthMessage{},
	contactMagic[0]:     &ContactHeader{},
}

// NewMessage creates a new Message type for a given header byte. For the
// four-bit-flagged message types, only the top nibble is significant here;
// Unmarshal re-derives the flags from the full header byte it reads itself.
func NewMessage(headerByte uint8) (msg Message, err error) {
	typeCode := headerByte
	if headerByte != contactMagic[0] {
		typeCode = headerByte >> 4
	}

	msgType, exists := messages[typeCode]
	if !exists {
		return nil, fmt.Errorf("tcpclv3: no message registered for type code %#x", typeCode)
	}

	msgElem := reflect.TypeOf(msgType).Elem()
	return reflect.New(msgElem).Interface().(Message), nil
}

// ReadMessage parses the next TCPCLv3 message from the Reader.
func ReadMessage(r io.Reader) (msg Message, err error) {
	var headerByte [1]byte
	if _, err = io.ReadFull(r, headerByte[:]); err != nil {
		return nil, err
	}

	msg, err = NewMessage(headerByte[0])
	if err != nil {
		return nil, err
	}

	mr := io.MultiReader(bytes.NewReader(headerByte[:]), r)
	err = msg.Unmarshal(mr)
	return
}
