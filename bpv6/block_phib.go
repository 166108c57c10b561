package bpv6

import (
	"bytes"

	"github.com/dtn7/dtn7-bpv6-core/eid"
)

// PHIB is the Previous Hop Insertion Block: it records the EID of the
// node that most recently forwarded this bundle. Its wire form is two
// consecutive null-terminated strings, a scheme name ("ipn") and an
// SSP ("node.service"), which is the same byte layout as a single
// null-terminated "ipn:node.service" string with its ':' replaced by a
// second NUL.
type PHIB struct {
	Hop eid.Endpoint
}

func (b *PHIB) BlockType() BlockType { return BlockTypePreviousHopInsertion }

func (b *PHIB) SerializedSize() int {
	// "ipn\x00" + "node.service\x00"
	return len("ipn") + 1 + len(b.Hop.String()[len("ipn:"):]) + 1
}

func (b *PHIB) Serialize(out []byte) []byte {
	out = append(out, "ipn"...)
	out = append(out, 0)
	out = append(out, b.Hop.String()[len("ipn:"):]...)
	return append(out, 0)
}

func deserializePHIB(body []byte) (BlockValue, error) {
	nul := bytes.IndexByte(body, 0)
	if nul < 0 {
		return nil, malformed("PHIB: scheme string is not null-terminated")
	}
	scheme := string(body[:nul])
	if scheme != "ipn" {
		return nil, malformed("PHIB: unsupported scheme %q", scheme)
	}
	rest := body[nul+1:]
	nul = bytes.IndexByte(rest, 0)
	if nul < 0 {
		return nil, malformed("PHIB: SSP string is not null-terminated")
	}
	ssp := rest[:nul]
	if len(rest[nul+1:]) != 0 {
		return nil, malformed("PHIB: %d trailing bytes after SSP", len(rest[nul+1:]))
	}

	hop, err := eid.Parse("ipn:" + string(ssp))
	if err != nil {
		return nil, malformed("PHIB: previous hop EID: %v", err)
	}
	return &PHIB{Hop: hop}, nil
}
