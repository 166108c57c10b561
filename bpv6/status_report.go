package bpv6

import "github.com/dtn7/dtn7-bpv6-core/eid"

// StatusFlags are the bundle status report status flags of RFC 5050
// section 6.1.1.
type StatusFlags uint8

const (
	StatusReportingNodeReceivedBundle StatusFlags = 1 << 0
	StatusReportingNodeAcceptedCustody StatusFlags = 1 << 1
	StatusReportingNodeForwardedBundle StatusFlags = 1 << 2
	StatusReportingNodeDeliveredBundle StatusFlags = 1 << 3
	StatusReportingNodeDeletedBundle    StatusFlags = 1 << 4
)

// Has reports whether all bits of mask are set in f.
func (f StatusFlags) Has(mask StatusFlags) bool { return f&mask == mask }

// StatusReport is the RFC 5050 section 6.1 bundle status report record.
// Each status flag that is set in Flags may carry a corresponding entry
// in Times giving the DTN time that event occurred; this package always
// includes a time for every set flag, which is the common case of a
// reporting node that has status-time reporting enabled, rather than
// modeling the rarer negotiated subset.
type StatusReport struct {
	Flags  StatusFlags
	Reason ReasonCode

	IsFragment     bool
	FragmentOffset uint64
	FragmentLength uint64

	Creation CreationTimestamp
	Source   eid.Endpoint

	Times map[StatusFlags]DTNTime
}

// statusReportTimeOrder fixes a deterministic serialization order for the
// per-flag timestamps, smallest bit first.
var statusReportTimeOrder = []StatusFlags{
	StatusReportingNodeReceivedBundle,
	StatusReportingNodeAcceptedCustody,
	StatusReportingNodeForwardedBundle,
	StatusReportingNodeDeliveredBundle,
	StatusReportingNodeDeletedBundle,
}

func (r *StatusReport) RecordType() AdminRecordType { return AdminRecordTypeStatusReport }

func (r *StatusReport) SerializedSize() int {
	n := 1 + 1 // status flags byte, reason byte
	if r.IsFragment {
		n += sdnvLen(r.FragmentOffset) + sdnvLen(r.FragmentLength)
	}
	for _, flag := range statusReportTimeOrder {
		if r.Flags.Has(flag) {
			n += r.Times[flag].sdnvSize()
		}
	}
	n += r.Creation.sdnvSize()
	srcStr := r.Source.String()
	n += sdnvLen(uint64(len(srcStr))) + len(srcStr)
	return n
}

func (r *StatusReport) Serialize(out []byte) []byte {
	out = append(out, byte(r.Flags))
	out = append(out, byte(r.Reason))
	if r.IsFragment {
		out = putSdnv(out, r.FragmentOffset)
		out = putSdnv(out, r.FragmentLength)
	}
	for _, flag := range statusReportTimeOrder {
		if r.Flags.Has(flag) {
			out = r.Times[flag].serialize(out)
		}
	}
	out = putSdnv(out, r.Creation.Seconds)
	out = putSdnv(out, r.Creation.Sequence)
	srcStr := r.Source.String()
	out = putSdnv(out, uint64(len(srcStr)))
	return append(out, srcStr...)
}

func deserializeStatusReport(body []byte, isFragment bool) (*StatusReport, error) {
	if len(body) < 2 {
		return nil, malformed("status report: truncated header")
	}
	r := &StatusReport{
		Flags:      StatusFlags(body[0]),
		Reason:     ReasonCode(body[1]),
		IsFragment: isFragment,
		Times:      make(map[StatusFlags]DTNTime),
	}
	body = body[2:]

	var err error
	if isFragment {
		if r.FragmentOffset, body, err = takeSdnv(body); err != nil {
			return nil, malformed("status report: fragment offset: %v", err)
		}
		if r.FragmentLength, body, err = takeSdnv(body); err != nil {
			return nil, malformed("status report: fragment length: %v", err)
		}
	}
	for _, flag := range statusReportTimeOrder {
		if !r.Flags.Has(flag) {
			continue
		}
		var t DTNTime
		if t, body, err = takeDTNTime(body); err != nil {
			return nil, malformed("status report: time for flag %d: %v", flag, err)
		}
		r.Times[flag] = t
	}
	if r.Creation.Seconds, body, err = takeSdnv(body); err != nil {
		return nil, malformed("status report: creation timestamp seconds: %v", err)
	}
	if r.Creation.Sequence, body, err = takeSdnv(body); err != nil {
		return nil, malformed("status report: creation timestamp sequence: %v", err)
	}
	srcLen, body, err := takeSdnv(body)
	if err != nil {
		return nil, malformed("status report: source EID length: %v", err)
	}
	if uint64(len(body)) != srcLen {
		return nil, malformed("status report: source EID length %d does not match remaining %d bytes", srcLen, len(body))
	}
	source, err := eid.Parse(string(body))
	if err != nil {
		return nil, malformed("status report: source EID: %v", err)
	}
	r.Source = source
	return r, nil
}
