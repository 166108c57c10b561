package bpv6

// BundleAge is the Bundle Age Block: a running count of microseconds the
// bundle has spent in the network, maintained by nodes without a reliable
// wall clock as a substitute for comparing creation timestamps.
type BundleAge struct {
	Microseconds uint64
}

func (b *BundleAge) BlockType() BlockType { return BlockTypeBundleAge }
func (b *BundleAge) SerializedSize() int  { return sdnvLen(b.Microseconds) }
func (b *BundleAge) Serialize(out []byte) []byte {
	return putSdnv(out, b.Microseconds)
}

func deserializeBundleAge(body []byte) (BlockValue, error) {
	us, rest, err := takeSdnv(body)
	if err != nil {
		return nil, malformed("bundle age block: %v", err)
	}
	if len(rest) != 0 {
		return nil, malformed("bundle age block: %d trailing bytes", len(rest))
	}
	return &BundleAge{Microseconds: us}, nil
}
