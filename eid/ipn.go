// Package eid implements the ipn URI scheme used for Endpoint Identifiers
// in Compressed Bundle Header Encoding (CBHE), as defined in RFC 6260.
package eid

import (
	"fmt"
	"strconv"
	"strings"
)

// Endpoint is an ipn:<node>.<service> Endpoint Identifier. Service is
// meaningless when Wildcard is set; Wildcard endpoints are for policy
// matching only and must never be written to the wire.
type Endpoint struct {
	Node     uint64
	Service  uint64
	Wildcard bool
}

// New returns the singleton ipn:node.service Endpoint.
func New(node, service uint64) Endpoint {
	return Endpoint{Node: node, Service: service}
}

// NewWildcard returns the ipn:node.* policy-matching Endpoint.
func NewWildcard(node uint64) Endpoint {
	return Endpoint{Node: node, Wildcard: true}
}

func (e Endpoint) String() string {
	if e.Wildcard {
		return fmt.Sprintf("ipn:%d.*", e.Node)
	}
	return fmt.Sprintf("ipn:%d.%d", e.Node, e.Service)
}

// IsZero reports whether e is the unset Endpoint.
func (e Endpoint) IsZero() bool {
	return e == Endpoint{}
}

// Parse decodes "ipn:<node>.<service>" or the policy-only "ipn:<node>.*".
func Parse(uri string) (Endpoint, error) {
	const prefix = "ipn:"
	if !strings.HasPrefix(uri, prefix) {
		return Endpoint{}, fmt.Errorf("eid: missing %q prefix in %q", prefix, uri)
	}
	return parseSsp(uri[len(prefix):])
}

func parseSsp(ssp string) (Endpoint, error) {
	dot := strings.IndexByte(ssp, '.')
	if dot < 0 {
		return Endpoint{}, fmt.Errorf("eid: missing '.' separator in %q", ssp)
	}
	if strings.IndexByte(ssp[dot+1:], '.') >= 0 {
		return Endpoint{}, fmt.Errorf("eid: duplicate '.' separator in %q", ssp)
	}

	nodeStr, svcStr := ssp[:dot], ssp[dot+1:]
	if nodeStr == "" || svcStr == "" {
		return Endpoint{}, fmt.Errorf("eid: empty node or service in %q", ssp)
	}
	if strings.HasPrefix(nodeStr, ".") || strings.HasSuffix(svcStr, ".") {
		return Endpoint{}, fmt.Errorf("eid: leading or trailing '.' in %q", ssp)
	}

	node, err := strconv.ParseUint(nodeStr, 10, 64)
	if err != nil {
		return Endpoint{}, fmt.Errorf("eid: node number %q: %w", nodeStr, err)
	}

	if svcStr == "*" {
		return Endpoint{Node: node, Wildcard: true}, nil
	}

	service, err := strconv.ParseUint(svcStr, 10, 64)
	if err != nil {
		return Endpoint{}, fmt.Errorf("eid: service number %q: %w", svcStr, err)
	}

	return Endpoint{Node: node, Service: service}, nil
}

// ParseCString decodes a null-terminated "ipn:<node>.<service>\x00" string
// out of data, as used by metadata URI lists.
// It returns the bytes consumed including the terminating NUL.
func ParseCString(data []byte) (e Endpoint, consumed int, err error) {
	nul := -1
	for i, b := range data {
		if b == 0 {
			nul = i
			break
		}
	}
	if nul < 0 {
		return Endpoint{}, 0, fmt.Errorf("eid: no terminating NUL byte found")
	}

	e, err = Parse(string(data[:nul]))
	if err != nil {
		return Endpoint{}, 0, err
	}
	return e, nul + 1, nil
}
