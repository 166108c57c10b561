package bpv6

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Kind classifies the errors this package and its sibling packages
// (custody, cla/tcpclv3, cla/tcpclv4) return, following the error taxonomy
// from the design: malformed wire data, policy decisions, protocol-level
// violations by a peer, local resource exhaustion and transient I/O faults
// are all distinguishable without string matching.
type Kind int

const (
	// KindMalformedInput covers SDNV overflow/truncation, unknown mandatory
	// fields, block length mismatches, duplicate primaries, more than one
	// payload or CTEB block, EID parse failures and admin-record truncation.
	KindMalformedInput Kind = iota

	// KindPolicyViolation covers a received bundle exceeding a configured
	// size limit, TLS required but not negotiated, a wrong peer EID, or
	// transfer-ID exhaustion.
	KindPolicyViolation

	// KindProtocolViolation covers an ack not matching the head of the send
	// ring, a segment received before a start segment, a wrong protocol
	// version, or a truncated message stream.
	KindProtocolViolation

	// KindResourceLimit covers an ack ring being full or a render buffer
	// being too small.
	KindResourceLimit

	// KindTransient covers socket read/write errors and a TLS shutdown in
	// progress.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInput:
		return "malformed input"
	case KindPolicyViolation:
		return "policy violation"
	case KindProtocolViolation:
		return "protocol violation"
	case KindResourceLimit:
		return "resource limit"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error is the error type returned across the bpv6, custody and cla/tcpcl*
// packages. It carries a Kind so callers can react programmatically
// (e.g. treat KindResourceLimit as back-pressure rather than a hard
// failure) instead of matching on message text.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("bpv6: %s: %s", e.Kind, e.Msg)
}

// newErr builds an *Error with a formatted message.
func newErr(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func malformed(format string, args ...interface{}) *Error {
	return newErr(KindMalformedInput, format, args...)
}

func resourceLimit(format string, args ...interface{}) *Error {
	return newErr(KindResourceLimit, format, args...)
}

// joinErrors collects zero or more validation failures into a single error,
// following the teacher repo's use of go-multierror for CheckValid-style
// validators. Returns nil if errs is empty.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, e := range errs {
		merr = multierror.Append(merr, e)
	}
	return merr
}
