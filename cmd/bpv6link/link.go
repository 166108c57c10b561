package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/dtn7/dtn7-bpv6-core/bpv6"
	"github.com/dtn7/dtn7-bpv6-core/cla"
	"github.com/dtn7/dtn7-bpv6-core/cla/tcpclv3"
	"github.com/dtn7/dtn7-bpv6-core/cla/tcpclv4"
	"github.com/dtn7/dtn7-bpv6-core/eid"
)

// Link is the subset of cla.ConvergenceReceiver/cla.ConvergenceSender this
// command drives, satisfied by both *tcpclv3.Client and *tcpclv4.Client.
type Link interface {
	Start() (error, bool)
	Close()
	Channel() chan cla.RecBundle
	Send(v *bpv6.View) error
}

// dialOrListen brings up the one TCPCL session described by cfg.Link: if
// Listen is set it waits for a single inbound connection, otherwise it
// dials Peer.
func dialOrListen(cfg *Config) (Link, error) {
	node, err := eid.Parse(cfg.Link.Node)
	if err != nil {
		return nil, fmt.Errorf("bpv6link: parsing link.node: %w", err)
	}

	entry := log.WithField("link", cfg.Link.Node)

	if cfg.Link.Listen != "" {
		return acceptOne(cfg, node, entry)
	}
	return dialOne(cfg, node, entry)
}

func dialOne(cfg *Config, node eid.Endpoint, entry *log.Entry) (Link, error) {
	switch cfg.Link.Version {
	case "v3":
		client := tcpclv3.DialClient(cfg.Link.Peer, node, true, entry)
		if err, _ := client.Start(); err != nil {
			return nil, err
		}
		return client, nil

	case "v4", "":
		client := tcpclv4.DialClient(cfg.Link.Peer, node, true, entry)
		if err, _ := client.Start(); err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("bpv6link: unknown link.version %q", cfg.Link.Version)
	}
}

func acceptOne(cfg *Config, node eid.Endpoint, entry *log.Entry) (Link, error) {
	switch cfg.Link.Version {
	case "v3":
		listener := tcpclv3.NewListener(cfg.Link.Listen, node, entry)
		if err := listener.Start(); err != nil {
			return nil, err
		}
		defer listener.Close()

		client := <-listener.Accepted
		if err, _ := client.Start(); err != nil {
			return nil, err
		}
		return client, nil

	case "v4", "":
		listener := tcpclv4.NewListener(cfg.Link.Listen, node, entry)
		if err := listener.Start(); err != nil {
			return nil, err
		}
		defer listener.Close()

		client := <-listener.Accepted
		if err, _ := client.Start(); err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("bpv6link: unknown link.version %q", cfg.Link.Version)
	}
}
