package bpv6

import "github.com/dtn7/dtn7-bpv6-core/eid"

// DTNTime is the SDNV seconds + SDNV nanoseconds pair RFC 5050 uses for
// the "time of signal" field in custody signals and status reports,
// distinct from CreationTimestamp in that it carries sub-second
// resolution but no sequence number.
type DTNTime struct {
	Seconds     uint64
	Nanoseconds uint64
}

func (t DTNTime) sdnvSize() int {
	return sdnvLen(t.Seconds) + sdnvLen(t.Nanoseconds)
}

func (t DTNTime) serialize(out []byte) []byte {
	out = putSdnv(out, t.Seconds)
	return putSdnv(out, t.Nanoseconds)
}

func takeDTNTime(data []byte) (t DTNTime, rest []byte, err error) {
	if t.Seconds, data, err = takeSdnv(data); err != nil {
		return DTNTime{}, nil, err
	}
	if t.Nanoseconds, data, err = takeSdnv(data); err != nil {
		return DTNTime{}, nil, err
	}
	return t, data, nil
}

// CustodySignal is the RFC 5050 section 6.3 administrative record a
// custodian sends back to the previous custodian to accept or refuse
// custody of a single bundle.
type CustodySignal struct {
	Succeeded bool
	Reason    ReasonCode

	IsFragment     bool
	FragmentOffset uint64
	FragmentLength uint64

	TimeOfSignal DTNTime
	Creation     CreationTimestamp
	Source       eid.Endpoint
}

func (s *CustodySignal) RecordType() AdminRecordType { return AdminRecordTypeCustodySignal }

func (s *CustodySignal) SerializedSize() int {
	n := 1 // status byte
	if s.IsFragment {
		n += sdnvLen(s.FragmentOffset) + sdnvLen(s.FragmentLength)
	}
	n += s.TimeOfSignal.sdnvSize()
	n += s.Creation.sdnvSize()
	n += sdnvLen(uint64(len(s.Source.String()))) + len(s.Source.String())
	return n
}

func (s *CustodySignal) Serialize(out []byte) []byte {
	out = append(out, statusByte(s.Succeeded, s.Reason))
	if s.IsFragment {
		out = putSdnv(out, s.FragmentOffset)
		out = putSdnv(out, s.FragmentLength)
	}
	out = s.TimeOfSignal.serialize(out)
	out = putSdnv(out, s.Creation.Seconds)
	out = putSdnv(out, s.Creation.Sequence)
	srcStr := s.Source.String()
	out = putSdnv(out, uint64(len(srcStr)))
	return append(out, srcStr...)
}

func deserializeCustodySignal(body []byte, isFragment bool) (*CustodySignal, error) {
	if len(body) < 1 {
		return nil, malformed("custody signal: empty body")
	}
	succeeded, reason := parseStatusByte(body[0])
	body = body[1:]

	s := &CustodySignal{Succeeded: succeeded, Reason: reason, IsFragment: isFragment}

	var err error
	if isFragment {
		if s.FragmentOffset, body, err = takeSdnv(body); err != nil {
			return nil, malformed("custody signal: fragment offset: %v", err)
		}
		if s.FragmentLength, body, err = takeSdnv(body); err != nil {
			return nil, malformed("custody signal: fragment length: %v", err)
		}
	}
	if s.TimeOfSignal, body, err = takeDTNTime(body); err != nil {
		return nil, malformed("custody signal: time of signal: %v", err)
	}
	if s.Creation.Seconds, body, err = takeSdnv(body); err != nil {
		return nil, malformed("custody signal: creation timestamp seconds: %v", err)
	}
	if s.Creation.Sequence, body, err = takeSdnv(body); err != nil {
		return nil, malformed("custody signal: creation timestamp sequence: %v", err)
	}
	srcLen, body, err := takeSdnv(body)
	if err != nil {
		return nil, malformed("custody signal: source EID length: %v", err)
	}
	if uint64(len(body)) != srcLen {
		return nil, malformed("custody signal: source EID length %d does not match remaining %d bytes", srcLen, len(body))
	}
	source, err := eid.Parse(string(body))
	if err != nil {
		return nil, malformed("custody signal: source EID: %v", err)
	}
	s.Source = source
	return s, nil
}

func statusByte(succeeded bool, reason ReasonCode) byte {
	b := byte(reason & 0x7f)
	if succeeded {
		b |= 0x80
	}
	return b
}

func parseStatusByte(b byte) (succeeded bool, reason ReasonCode) {
	return b&0x80 != 0, ReasonCode(b & 0x7f)
}
