package tcpclv3

import (
	"fmt"
	"io"

	"github.com/dtn7/dtn7-bpv6-core/sdnv"
)

const msgTypeShutdown uint8 = 0x5

// shutdownFlagHasReason and shutdownFlagHasDelay are the low-nibble bits
// of a SHUTDOWN header byte indicating which optional trailing fields follow.
const (
	shutdownFlagHasReason uint8 = 0x2
	shutdownFlagHasDelay  uint8 = 0x1
)

// ShutdownReason is the one-octet reason code of a SHUTDOWN message.
type ShutdownReason uint8

const (
	ShutdownIdleTimeout    ShutdownReason = 0x0
	ShutdownVersionMismatch ShutdownReason = 0x1
	ShutdownBusy           ShutdownReason = 0x2
)

func (sr ShutdownReason) String() string {
	switch sr {
	case ShutdownIdleTimeout:
		return "idle timeout"
	case ShutdownVersionMismatch:
		return "version mismatch"
	case ShutdownBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// ShutdownMessage begins an orderly session teardown, optionally carrying a
// reason code and/or a reconnection delay in seconds the peer should wait
// before reconnecting.
type ShutdownMessage struct {
	HasReason          bool
	Reason             ShutdownReason
	HasReconnectDelay  bool
	ReconnectDelaySecs uint64
}

// NewShutdownMessage creates a new ShutdownMessage.
func NewShutdownMessage(reason ShutdownReason, hasReason bool, reconnectDelaySecs uint64, hasDelay bool) ShutdownMessage {
	return ShutdownMessage{
		HasReason:          hasReason,
		Reason:             reason,
		HasReconnectDelay:  hasDelay,
		ReconnectDelaySecs: reconnectDelaySecs,
	}
}

func (sm ShutdownMessage) String() string {
	return fmt.Sprintf("SHUTDOWN(HasReason=%t, Reason=%v, HasDelay=%t, Delay=%ds)",
		sm.HasReason, sm.Reason, sm.HasReconnectDelay, sm.ReconnectDelaySecs)
}

func (sm ShutdownMessage) Marshal(w io.Writer) error {
	var flags uint8
	if sm.HasReason {
		flags |= shutdownFlagHasReason
	}
	if sm.HasReconnectDelay {
		flags |= shutdownFlagHasDelay
	}

	if _, err := w.Write([]byte{byte(msgTypeShutdown<<4) | flags}); err != nil {
		return err
	}

	if sm.HasReason {
		if _, err := w.Write([]byte{byte(sm.Reason)}); err != nil {
			return err
		}
	}
	if sm.HasReconnectDelay {
		if _, err := w.Write(sdnv.EncodeAlloc(sm.ReconnectDelaySecs)); err != nil {
			return err
		}
	}

	return nil
}

func (sm *ShutdownMessage) Unmarshal(r io.Reader) error {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	if header[0]>>4 != msgTypeShutdown {
		return fmt.Errorf("tcpclv3: SHUTDOWN header type is %#x, want %#x", header[0]>>4, msgTypeShutdown)
	}

	flags := header[0] & 0x0f
	sm.HasReason = flags&shutdownFlagHasReason != 0
	sm.HasReconnectDelay = flags&shutdownFlagHasDelay != 0

	if sm.HasReason {
		var reasonByte [1]byte
		if _, err := io.ReadFull(r, reasonByte[:]); err != nil {
			return err
		}
		sm.Reason = ShutdownReason(reasonByte[0])
	}

	if sm.HasReconnectDelay {
		delay, err := takeSdnv(r)
		if err != nil {
			return err
		}
		sm.ReconnectDelaySecs = delay
	}

	return nil
}
