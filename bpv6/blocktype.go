package bpv6

// BlockType identifies a canonical block's content format (RFC 5050
// section 4.3). Only Payload is fixed by RFC 5050 itself;
// BlockTypeCustodyTransferEnhancement (the CTEB) is fixed by the
// custody-transfer extension this module implements. The remaining codes
// are this implementation's own assignment, matching common deployment
// practice, since no single authoritative registry value was available
// for them in the source material this package was built from.
type BlockType uint8

const (
	BlockTypePayload               BlockType = 1
	BlockTypePreviousHopInsertion  BlockType = 5
	BlockTypeBundleAge             BlockType = 6
	BlockTypeMetadataExtension     BlockType = 8
	BlockTypeCustodyTransferEnhancement BlockType = 0x0a
)

func (t BlockType) String() string {
	switch t {
	case BlockTypePayload:
		return "payload"
	case BlockTypePreviousHopInsertion:
		return "previous-hop-insertion"
	case BlockTypeBundleAge:
		return "bundle-age"
	case BlockTypeMetadataExtension:
		return "metadata-extension"
	case BlockTypeCustodyTransferEnhancement:
		return "custody-transfer-enhancement"
	default:
		return "unknown"
	}
}
