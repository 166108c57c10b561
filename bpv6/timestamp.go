package bpv6

import "time"

// dtnEpoch is 2000-01-01T00:00:00Z, the epoch BPv6 creation timestamps are
// counted from (RFC 5050 section 4.1.2), in contrast to the Unix epoch.
var dtnEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// CreationTimestamp identifies a bundle's creation instant together with a
// sequence number disambiguating bundles created within the same second by
// the same source.
type CreationTimestamp struct {
	Seconds  uint64
	Sequence uint64
}

// Time converts t to an absolute wall-clock time.
func (t CreationTimestamp) Time() time.Time {
	return dtnEpoch.Add(time.Duration(t.Seconds) * time.Second)
}

// CreationTimestampFromTime converts an absolute time into DTN seconds,
// truncating sub-second precision, leaving Sequence at zero.
func CreationTimestampFromTime(t time.Time) CreationTimestamp {
	d := t.Sub(dtnEpoch)
	if d < 0 {
		d = 0
	}
	return CreationTimestamp{Seconds: uint64(d / time.Second)}
}

func (t CreationTimestamp) sdnvSize() int {
	return sdnvLen(t.Seconds) + sdnvLen(t.Sequence)
}
