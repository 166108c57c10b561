package bpv6

// Payload carries a bundle's application data unit, or, when the primary
// block's IsAdminRecord flag is set, the encoded AdministrativeRecord
// instead. BPv6 has no distinct "administrative record" block type: an
// administrative record is simply the content of the sole payload block
// of a bundle whose primary declares IsAdminRecord, which is why Record
// is populated by Load rather than by deserializeBlockValue, which
// has no access to the primary's flags.
type Payload struct {
	Data []byte

	// Record is non-nil iff this payload was decoded in administrative-
	// record context. When set, Data still holds the raw bytes Record was
	// parsed from.
	Record *AdminRecord
}

func (p *Payload) BlockType() BlockType    { return BlockTypePayload }
func (p *Payload) SerializedSize() int     { return len(p.Data) }
func (p *Payload) Serialize(out []byte) []byte {
	return append(out, p.Data...)
}

func deserializePayload(body []byte) (BlockValue, error) {
	data := make([]byte, len(body))
	copy(data, body)
	return &Payload{Data: data}, nil
}
