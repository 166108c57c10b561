package bpv6

// Opaque holds the raw bytes of a canonical block whose type code this
// package does not interpret. Preserving it unmodified lets a forwarder
// carry the block along even though it cannot act on its contents,
// consistent with the block's own processing flags (BlockDiscardIfUnprocessed,
// BlockDeleteBundleIfUnprocessed) rather than this package's ability to
// decode it.
type Opaque struct {
	Type BlockType
	Data []byte
}

func (o *Opaque) BlockType() BlockType { return o.Type }
func (o *Opaque) SerializedSize() int  { return len(o.Data) }
func (o *Opaque) Serialize(out []byte) []byte {
	return append(out, o.Data...)
}

func deserializeOpaque(blockType BlockType, body []byte) (BlockValue, error) {
	data := make([]byte, len(body))
	copy(data, body)
	return &Opaque{Type: blockType, Data: data}, nil
}
