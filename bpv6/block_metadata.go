package bpv6

import "github.com/dtn7/dtn7-bpv6-core/eid"

// MetadataTypeURI is the metadata-type code this package interprets as a
// list of null-terminated ipn URIs rather than opaque bytes.
const MetadataTypeURI uint64 = 1

// Metadata is the Metadata Extension Block: an application-defined,
// typed side-channel attached to a bundle alongside its payload.
type Metadata struct {
	MetadataType uint64

	// Data holds the raw metadata bytes for any MetadataType other than
	// MetadataTypeURI.
	Data []byte

	// URIs holds the decoded endpoint list when MetadataType ==
	// MetadataTypeURI; Data is left populated with the same raw bytes in
	// that case too, so a caller can always fall back to it.
	URIs []eid.Endpoint
}

func (m *Metadata) BlockType() BlockType { return BlockTypeMetadataExtension }

func (m *Metadata) SerializedSize() int {
	return sdnvLen(m.MetadataType) + len(m.Data)
}

func (m *Metadata) Serialize(out []byte) []byte {
	out = putSdnv(out, m.MetadataType)
	return append(out, m.Data...)
}

func deserializeMetadata(body []byte) (BlockValue, error) {
	metadataType, rest, err := takeSdnv(body)
	if err != nil {
		return nil, malformed("metadata block: type: %v", err)
	}
	data := make([]byte, len(rest))
	copy(data, rest)

	m := &Metadata{MetadataType: metadataType, Data: data}
	if metadataType == MetadataTypeURI {
		uris, err := decodeURIList(data)
		if err != nil {
			return nil, malformed("metadata block: URI list: %v", err)
		}
		m.URIs = uris
	}
	return m, nil
}

// decodeURIList decodes a concatenation of null-terminated ipn URI strings.
func decodeURIList(data []byte) ([]eid.Endpoint, error) {
	var out []eid.Endpoint
	for len(data) > 0 {
		e, n, err := eid.ParseCString(data)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		data = data[n:]
	}
	return out, nil
}

// encodeURIList builds the wire form of a list of ipn URIs.
func encodeURIList(uris []eid.Endpoint) []byte {
	var out []byte
	for _, e := range uris {
		out = putEidCString(out, e)
	}
	return out
}
