// Package cla defines two interfaces for convergence layers.
//
// The ConvergenceReceiver specifies a type which receives bundles and forwards
// those to an exposed channel.
//
// The ConvergenceSender specifies a type which sends bundles to a remote
// endpoint.
//
// An implemented convergence layer can be a ConvergenceReceiver,
// ConvergenceSender or even both. This depends on the convergence layer's
// specification and is an implementation matter; both TCPCLv3 and TCPCLv4
// links in this module are both at once, since TCPCL is bidirectional.
package cla

import (
	"github.com/dtn7/dtn7-bpv6-core/bpv6"
	"github.com/dtn7/dtn7-bpv6-core/eid"
)

// RecBundle is a tuple struct to attach the receiving CLA's node ID to an
// incoming bundle view. Each ConvergenceReceiver returns its received
// bundles as a channel of RecBundles.
type RecBundle struct {
	View     *bpv6.View
	Receiver eid.Endpoint
}

// NewRecBundle returns a new RecBundle for the given bundle view and CLA.
func NewRecBundle(v *bpv6.View, rec eid.Endpoint) RecBundle {
	return RecBundle{
		View:     v,
		Receiver: rec,
	}
}

// Convergence is an interface to describe all kinds of Convergence Layer
// Adapters. There should not be a direct implementation of this interface.
// One must implement ConvergenceReceiver and/or ConvergenceSender, which
// are both extending this interface.
// A type can be both a ConvergenceReceiver and ConvergenceSender.
type Convergence interface {
	// Start starts this Convergence{Receiver,Sender} and might return an error
	// and a boolean indicating if another Start should be tried later.
	Start() (error, bool)

	// Close signals this Convergence{Receiver,Sender} to shut down.
	Close()

	// Address should return a unique address string to both identify this
	// Convergence{Receiver,Sender} and ensure it will not be opened twice.
	Address() string

	// IsPermanent returns true, if this CLA should not be removed after failures.
	IsPermanent() bool
}

// ConvergenceReceiver is an interface for types which are able to receive
// bundles and write them to a channel. This channel can be accessed through
// the Channel method.
type ConvergenceReceiver interface {
	Convergence

	// Channel returns a channel of received bundles.
	Channel() chan RecBundle

	// GetEndpointID returns the endpoint ID assigned to this CLA.
	GetEndpointID() eid.Endpoint
}

// ConvergenceSender is an interface for types which are able to transmit
// bundles to another node.
type ConvergenceSender interface {
	Convergence

	// Send transmits a bundle view to this ConvergenceSender's endpoint.
	// This method should be thread safe and finish transmitting one bundle,
	// before acting on the next.
	Send(v *bpv6.View) error

	// GetPeerEndpointID returns the endpoint ID assigned to this CLA's peer,
	// if it's known. Otherwise the zero endpoint will be returned.
	GetPeerEndpointID() eid.Endpoint
}
