package tcpclv3

import (
	"fmt"
	"io"

	"github.com/dtn7/dtn7-bpv6-core/sdnv"
)

const msgTypeLength uint8 = 0x6

// LengthMessage announces the total length of the next bundle transfer
// before any of its DATA_SEGMENTs are sent, letting the receiver
// pre-allocate or reject it early.
type LengthMessage struct {
	Length uint64
}

// NewLengthMessage creates a new LengthMessage.
func NewLengthMessage(length uint64) LengthMessage {
	return LengthMessage{Length: length}
}

func (lm LengthMessage) String() string {
	return fmt.Sprintf("LENGTH(%d)", lm.Length)
}

func (lm LengthMessage) Marshal(w io.Writer) error {
	if _, err := w.Write([]byte{msgTypeLength << 4}); err != nil {
		return err
	}
	_, err := w.Write(sdnv.EncodeAlloc(lm.Length))
	return err
}

func (lm *LengthMessage) Unmarshal(r io.Reader) error {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	if header[0]>>4 != msgTypeLength {
		return fmt.Errorf("tcpclv3: LENGTH header type is %#x, want %#x", header[0]>>4, msgTypeLength)
	}

	length, err := takeSdnv(r)
	if err != nil {
		return err
	}
	lm.Length = length
	return nil
}
