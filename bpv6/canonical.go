package bpv6

// BlockValue is implemented by every canonical block's typed payload. There
// is no pluggable registry: BPv6's canonical block set is closed (payload,
// CTEB, PHIB, metadata, bundle age, plus opaque blocks of unrecognized
// type), so decoding dispatches on BlockType with a plain switch in
// DeserializeCanonical rather than through reflection or a type registry.
type BlockValue interface {
	// BlockType returns the wire type code for this value.
	BlockType() BlockType
	// SerializedSize returns the encoded length of the block-type-specific
	// data only, excluding the canonical block header.
	SerializedSize() int
	// Serialize appends the block-type-specific data to out.
	Serialize(out []byte) []byte
}

// Canonical is one canonical (non-primary) bundle block (RFC 5050
// section 4.3): a type code, a set of processing flags, and a
// type-specific payload.
type Canonical struct {
	Flags BlockControlFlags
	Value BlockValue
}

// SerializedSize returns the total encoded length of c, including its
// header.
func (c *Canonical) SerializedSize() int {
	dataLen := c.Value.SerializedSize()
	n := 1 // type code
	n += sdnvLen(uint64(c.Flags))
	n += sdnvLen(uint64(dataLen))
	n += dataLen
	return n
}

// Serialize appends the wire encoding of c to out.
func (c *Canonical) Serialize(out []byte) []byte {
	out = append(out, byte(c.Value.BlockType()))
	out = putSdnv(out, uint64(c.Flags))
	out = putSdnv(out, uint64(c.Value.SerializedSize()))
	return c.Value.Serialize(out)
}

// DeserializeCanonical decodes one canonical block from the front of data,
// returning the decoded block and the number of bytes consumed.
func DeserializeCanonical(data []byte) (c Canonical, consumed int, err error) {
	if len(data) < 1 {
		return Canonical{}, 0, malformed("canonical block: empty input")
	}
	blockType := BlockType(data[0])
	rest := data[1:]

	flagsVal, rest, err := takeSdnv(rest)
	if err != nil {
		return Canonical{}, 0, malformed("canonical block: flags: %v", err)
	}
	c.Flags = BlockControlFlags(flagsVal)

	dataLen, rest, err := takeSdnv(rest)
	if err != nil {
		return Canonical{}, 0, malformed("canonical block: length: %v", err)
	}
	headerLen := len(data) - len(rest)
	if uint64(len(rest)) < dataLen {
		return Canonical{}, 0, malformed("canonical block: declared length %d exceeds available %d bytes", dataLen, len(rest))
	}
	body := rest[:dataLen]

	c.Value, err = deserializeBlockValue(blockType, body)
	if err != nil {
		return Canonical{}, 0, err
	}

	consumed = headerLen + int(dataLen)
	return c, consumed, nil
}

// deserializeBlockValue dispatches on blockType to build the concrete
// BlockValue, falling back to Opaque for any code this package does not
// know how to interpret, per RFC 5050 section 4.3's requirement that
// unrecognized blocks be preserved rather than rejected outright (the
// BlockDiscardIfUnprocessed / BlockDeleteBundleIfUnprocessed flags govern
// what a forwarder does with them, which this package leaves to its
// caller).
func deserializeBlockValue(blockType BlockType, body []byte) (BlockValue, error) {
	switch blockType {
	case BlockTypePayload:
		return deserializePayload(body)
	case BlockTypeCustodyTransferEnhancement:
		return deserializeCTEB(body)
	case BlockTypePreviousHopInsertion:
		return deserializePHIB(body)
	case BlockTypeMetadataExtension:
		return deserializeMetadata(body)
	case BlockTypeBundleAge:
		return deserializeBundleAge(body)
	default:
		return deserializeOpaque(blockType, body)
	}
}
