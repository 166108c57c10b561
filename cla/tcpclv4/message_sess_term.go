package tcpclv4

import (
	"encoding/binary"
	"fmt"
	"io"
)

// SessionTerminationFlags are single-bit flags for a SESS_TERM message.
type SessionTerminationFlags uint8

const (
	// TerminationReply marks this message as an acknowledgement of an
	// earlier SESS_TERM.
	TerminationReply SessionTerminationFlags = 0x01
)

func (stf SessionTerminationFlags) String() string {
	if stf&TerminationReply != 0 {
		return "REPLY"
	}
	return ""
}

// SessionTerminationCode is the one-octet reason code for a SESS_TERM message.
type SessionTerminationCode uint8

const (
	TerminationUnknown           SessionTerminationCode = 0x00
	TerminationIdleTimeout        SessionTerminationCode = 0x01
	TerminationVersionMismatch    SessionTerminationCode = 0x02
	TerminationBusy               SessionTerminationCode = 0x03
	TerminationContactFailure     SessionTerminationCode = 0x04
	TerminationResourceExhaustion SessionTerminationCode = 0x05
)

// IsValid reports whether stc is one of the codes RFC 9174 section 4.6 defines.
func (stc SessionTerminationCode) IsValid() bool {
	switch stc {
	case TerminationUnknown, TerminationIdleTimeout, TerminationVersionMismatch,
		TerminationBusy, TerminationContactFailure, TerminationResourceExhaustion:
		return true
	default:
		return false
	}
}

func (stc SessionTerminationCode) String() string {
	switch stc {
	case TerminationUnknown:
		return "unknown"
	case TerminationIdleTimeout:
		return "idle timeout"
	case TerminationVersionMismatch:
		return "version mismatch"
	case TerminationBusy:
		return "busy"
	case TerminationContactFailure:
		return "contact failure"
	case TerminationResourceExhaustion:
		return "resource exhaustion"
	default:
		return "invalid"
	}
}

// SESS_TERM is the message type code for a Session Termination Message.
const SESS_TERM uint8 = 0x05

// SessionTerminationMessage begins or acknowledges an orderly session shutdown.
type SessionTerminationMessage struct {
	Flags      SessionTerminationFlags
	ReasonCode SessionTerminationCode
}

// NewSessionTerminationMessage creates a new SessionTerminationMessage.
func NewSessionTerminationMessage(flags SessionTerminationFlags, reason SessionTerminationCode) SessionTerminationMessage {
	return SessionTerminationMessage{Flags: flags, ReasonCode: reason}
}

func (stm SessionTerminationMessage) String() string {
	return fmt.Sprintf("SESS_TERM(Flags=%v, Reason=%v)", stm.Flags, stm.ReasonCode)
}

func (stm SessionTerminationMessage) Marshal(w io.Writer) error {
	fields := []interface{}{SESS_TERM, stm.Flags, stm.ReasonCode}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func (stm *SessionTerminationMessage) Unmarshal(r io.Reader) error {
	var hdr uint8
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return err
	} else if hdr != SESS_TERM {
		return fmt.Errorf("tcpclv4: SESS_TERM header is %#x, want %#x", hdr, SESS_TERM)
	}

	fields := []interface{}{&stm.Flags, &stm.ReasonCode}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return err
		}
	}

	if !stm.ReasonCode.IsValid() {
		return fmt.Errorf("tcpclv4: SESS_TERM reason code %#x invalid", stm.ReasonCode)
	}
	return nil
}
