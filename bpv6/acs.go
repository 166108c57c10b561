package bpv6

// AggregateCustodySignal is the Aggregate Custody Signal (ACS) record
// format: a single status/reason pair applied to a whole set of custody
// IDs, encoded as a delta-compressed, sorted list of (start-delta,
// length-1) SDNV pairs instead of one signal per bundle. This is the
// record GenerateAcsBundle produces and custody.Manager's custody-side
// bookkeeping consumes; it fans an entire held-custody batch out to one
// administrative-record bundle per custodian instead of one per custody
// transfer.
type AggregateCustodySignal struct {
	Succeeded bool
	Reason    ReasonCode
	Fills     Set
}

func (a *AggregateCustodySignal) RecordType() AdminRecordType {
	return AdminRecordTypeAggregateCustodySignal
}

func (a *AggregateCustodySignal) SerializedSize() int {
	n := 1 // status byte
	prevEnd := uint64(0)
	for _, iv := range a.Fills.Intervals() {
		n += sdnvLen(iv.Begin - prevEnd)
		n += sdnvLen(iv.Len() - 1)
		prevEnd = iv.End
	}
	return n
}

func (a *AggregateCustodySignal) Serialize(out []byte) []byte {
	out = append(out, statusByte(a.Succeeded, a.Reason))
	prevEnd := uint64(0)
	for _, iv := range a.Fills.Intervals() {
		out = putSdnv(out, iv.Begin-prevEnd)
		out = putSdnv(out, iv.Len()-1)
		prevEnd = iv.End
	}
	return out
}

func deserializeACS(body []byte) (*AggregateCustodySignal, error) {
	if len(body) < 1 {
		return nil, malformed("aggregate custody signal: empty body")
	}
	succeeded, reason := parseStatusByte(body[0])
	body = body[1:]

	a := &AggregateCustodySignal{Succeeded: succeeded, Reason: reason}
	prevEnd := uint64(0)
	for len(body) > 0 {
		var startDelta, lengthMinusOne uint64
		var err error
		if startDelta, body, err = takeSdnv(body); err != nil {
			return nil, malformed("aggregate custody signal: start delta: %v", err)
		}
		if lengthMinusOne, body, err = takeSdnv(body); err != nil {
			return nil, malformed("aggregate custody signal: length: %v", err)
		}
		begin := prevEnd + startDelta
		if begin < prevEnd {
			return nil, malformed("aggregate custody signal: start delta overflow")
		}
		end := begin + lengthMinusOne + 1
		if end <= begin {
			return nil, malformed("aggregate custody signal: length overflow")
		}
		a.Fills.Insert(Interval{Begin: begin, End: end})
		prevEnd = end
	}
	return a, nil
}
