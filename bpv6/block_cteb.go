package bpv6

import "github.com/dtn7/dtn7-bpv6-core/eid"

// MaxCTEBEndpointLen bounds the ASCII ipn:node.service string a CTEB's
// creator field may carry: "ipn:" (4) + up to 20 digits for a uint64 node
// + "." (1) + up to 20 digits for a uint64 service = 45 bytes.
const MaxCTEBEndpointLen = 45

// CTEB is the Custody Transfer Enhancement Block: it names the custody ID
// this bundle was registered under and the endpoint that assigned it, so
// that an aggregate custody signal covering this ID can later be matched
// back to the custodian that issued it.
type CTEB struct {
	CustodyID uint64
	Creator   eid.Endpoint
}

func (c *CTEB) BlockType() BlockType { return BlockTypeCustodyTransferEnhancement }

func (c *CTEB) SerializedSize() int {
	return sdnvLen(c.CustodyID) + len(c.Creator.String())
}

func (c *CTEB) Serialize(out []byte) []byte {
	out = putSdnv(out, c.CustodyID)
	return putEidString(out, c.Creator)
}

func deserializeCTEB(body []byte) (BlockValue, error) {
	custodyID, rest, err := takeSdnv(body)
	if err != nil {
		return nil, malformed("CTEB: custody id: %v", err)
	}
	if len(rest) > MaxCTEBEndpointLen {
		return nil, malformed("CTEB: creator EID field of %d bytes exceeds maximum %d", len(rest), MaxCTEBEndpointLen)
	}
	creator, err := eid.Parse(string(rest))
	if err != nil {
		return nil, malformed("CTEB: creator EID: %v", err)
	}
	return &CTEB{CustodyID: custodyID, Creator: creator}, nil
}
