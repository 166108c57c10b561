package bpv6

import (
	"github.com/dtn7/dtn7-bpv6-core/eid"
	"github.com/dtn7/dtn7-bpv6-core/sdnv"
)

// sdnvLen is a short alias for sdnv.BytesRequired, used throughout the
// block Serialize/SerializedSize pairs in this package.
func sdnvLen(v uint64) int {
	return sdnv.BytesRequired(v)
}

// putSdnv appends the SDNV encoding of v to out.
func putSdnv(out []byte, v uint64) []byte {
	return sdnv.Encode(out, v)
}

// takeSdnv decodes one SDNV from the front of data and returns the
// remaining bytes, translating sdnv package errors into *Error values
// of Kind KindMalformedInput.
func takeSdnv(data []byte) (value uint64, rest []byte, err error) {
	v, n, derr := sdnv.Decode(data)
	if derr != nil {
		return 0, nil, malformed("%v", derr)
	}
	return v, data[n:], nil
}

// putEidString appends the raw (non-null-terminated) "ipn:node.service"
// encoding of e to out, as used by CTEB and administrative records.
func putEidString(out []byte, e eid.Endpoint) []byte {
	return append(out, e.String()...)
}

// putEidCString appends a null-terminated "ipn:node.service\x00" encoding
// of e to out, as used by metadata URI lists.
func putEidCString(out []byte, e eid.Endpoint) []byte {
	out = append(out, e.String()...)
	return append(out, 0)
}
