package bpv6

import (
	"github.com/dtn7/dtn7-bpv6-core/eid"
)

// Version is the Bundle Protocol version this package implements.
const Version = 6

// Primary is the BPv6 primary bundle block (RFC 5050 section 4.5), encoded
// on the wire using Compressed Bundle Header Encoding (RFC 6260): every
// Endpoint Identifier is an ipn:node.service pair carried directly as a
// pair of SDNVs, the dictionary is always empty, and its length field is
// always zero, signalling CBHE mode to a receiver that also understands
// the classic dictionary-based scheme.
type Primary struct {
	Flags BundleControlFlags

	Destination eid.Endpoint
	Source      eid.Endpoint
	ReportTo    eid.Endpoint
	Custodian   eid.Endpoint

	Creation CreationTimestamp
	Lifetime uint64

	// FragmentOffset and TotalADULength are only meaningful, and only
	// present on the wire, when Flags.Has(IsFragment).
	FragmentOffset uint64
	TotalADULength uint64
}

// IsFragment reports whether p.Flags carries the IsFragment bit.
func (p *Primary) IsFragment() bool {
	return p.Flags.Has(IsFragment)
}

// remainderSize returns the encoded length of every primary-block field
// after the block-length SDNV itself, i.e. the value the block-length
// SDNV must carry.
func (p *Primary) remainderSize() int {
	n := sdnvLen(p.Destination.Node) + sdnvLen(p.Destination.Service)
	n += sdnvLen(p.Source.Node) + sdnvLen(p.Source.Service)
	n += sdnvLen(p.ReportTo.Node) + sdnvLen(p.ReportTo.Service)
	n += sdnvLen(p.Custodian.Node) + sdnvLen(p.Custodian.Service)
	n += p.Creation.sdnvSize()
	n += sdnvLen(p.Lifetime)
	n += sdnvLen(0) // dictionary length, always zero in CBHE mode
	if p.IsFragment() {
		n += sdnvLen(p.FragmentOffset) + sdnvLen(p.TotalADULength)
	}
	return n
}

// SerializedSize returns the total number of bytes Serialize will produce.
func (p *Primary) SerializedSize() int {
	rem := p.remainderSize()
	return 1 + sdnvLen(uint64(p.Flags)) + sdnvLen(uint64(rem)) + rem
}

// Serialize appends the wire encoding of p to out and returns the result.
func (p *Primary) Serialize(out []byte) []byte {
	out = append(out, Version)
	out = putSdnv(out, uint64(p.Flags))

	rem := p.remainderSize()
	out = putSdnv(out, uint64(rem))

	out = putSdnv(out, p.Destination.Node)
	out = putSdnv(out, p.Destination.Service)
	out = putSdnv(out, p.Source.Node)
	out = putSdnv(out, p.Source.Service)
	out = putSdnv(out, p.ReportTo.Node)
	out = putSdnv(out, p.ReportTo.Service)
	out = putSdnv(out, p.Custodian.Node)
	out = putSdnv(out, p.Custodian.Service)
	out = putSdnv(out, p.Creation.Seconds)
	out = putSdnv(out, p.Creation.Sequence)
	out = putSdnv(out, p.Lifetime)
	out = putSdnv(out, 0) // dictionary length

	if p.IsFragment() {
		out = putSdnv(out, p.FragmentOffset)
		out = putSdnv(out, p.TotalADULength)
	}
	return out
}

// DeserializePrimary decodes a primary block from the front of data,
// returning the decoded block and the number of bytes consumed.
func DeserializePrimary(data []byte) (p Primary, consumed int, err error) {
	if len(data) < 1 {
		return Primary{}, 0, malformed("primary block: empty input")
	}
	if data[0] != Version {
		return Primary{}, 0, malformed("primary block: unsupported version %d", data[0])
	}
	rest := data[1:]

	flagsVal, rest, err := takeSdnv(rest)
	if err != nil {
		return Primary{}, 0, malformed("primary block: flags: %v", err)
	}
	p.Flags = BundleControlFlags(flagsVal)

	blockLen, rest, err := takeSdnv(rest)
	if err != nil {
		return Primary{}, 0, malformed("primary block: block length: %v", err)
	}
	headerLen := len(data) - len(rest)
	if uint64(len(rest)) < blockLen {
		return Primary{}, 0, malformed("primary block: declared length %d exceeds available %d bytes", blockLen, len(rest))
	}
	body := rest[:blockLen]

	var dictLen uint64
	readPair := func() (node, service uint64, err error) {
		node, body, err = takeSdnv(body)
		if err != nil {
			return 0, 0, err
		}
		service, body, err = takeSdnv(body)
		return node, service, err
	}

	if p.Destination.Node, p.Destination.Service, err = readPair(); err != nil {
		return Primary{}, 0, malformed("primary block: destination: %v", err)
	}
	if p.Source.Node, p.Source.Service, err = readPair(); err != nil {
		return Primary{}, 0, malformed("primary block: source: %v", err)
	}
	if p.ReportTo.Node, p.ReportTo.Service, err = readPair(); err != nil {
		return Primary{}, 0, malformed("primary block: report-to: %v", err)
	}
	if p.Custodian.Node, p.Custodian.Service, err = readPair(); err != nil {
		return Primary{}, 0, malformed("primary block: custodian: %v", err)
	}
	if p.Creation.Seconds, body, err = takeSdnv(body); err != nil {
		return Primary{}, 0, malformed("primary block: creation timestamp seconds: %v", err)
	}
	if p.Creation.Sequence, body, err = takeSdnv(body); err != nil {
		return Primary{}, 0, malformed("primary block: creation timestamp sequence: %v", err)
	}
	if p.Lifetime, body, err = takeSdnv(body); err != nil {
		return Primary{}, 0, malformed("primary block: lifetime: %v", err)
	}
	if dictLen, body, err = takeSdnv(body); err != nil {
		return Primary{}, 0, malformed("primary block: dictionary length: %v", err)
	}
	if dictLen != 0 {
		return Primary{}, 0, malformed("primary block: non-CBHE bundles (dictionary length %d) are not supported", dictLen)
	}

	if p.IsFragment() {
		if p.FragmentOffset, body, err = takeSdnv(body); err != nil {
			return Primary{}, 0, malformed("primary block: fragment offset: %v", err)
		}
		if p.TotalADULength, body, err = takeSdnv(body); err != nil {
			return Primary{}, 0, malformed("primary block: total ADU length: %v", err)
		}
	}

	if len(body) != 0 {
		return Primary{}, 0, malformed("primary block: %d trailing bytes not consumed", len(body))
	}

	consumed = headerLen + int(blockLen)
	return p, consumed, nil
}
