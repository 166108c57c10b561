package tcpclv3

import (
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dtn7/dtn7-bpv6-core/eid"
)

// Listener accepts incoming TCPCLv3 connections on a bound TCP port and
// hands each off on Accepted as a freshly constructed, unstarted Client.
type Listener struct {
	listenAddress string
	endpointID    eid.Endpoint
	log           *logrus.Entry

	// Accepted receives one Client per accepted connection. The caller
	// owns starting, registering and closing it.
	Accepted chan *Client

	stopSyn chan struct{}
	stopAck chan struct{}
}

// NewListener creates a Listener bound to listenAddress, advertising
// endpointID as this node's identifier during the Contact Header exchange.
func NewListener(listenAddress string, endpointID eid.Endpoint, log *logrus.Entry) *Listener {
	return &Listener{
		listenAddress: listenAddress,
		endpointID:    endpointID,
		log:           log,
		Accepted:      make(chan *Client, 16),
		stopSyn:       make(chan struct{}),
		stopAck:       make(chan struct{}),
	}
}

func (listener *Listener) Start() error {
	tcpAddr, err := net.ResolveTCPAddr("tcp", listener.listenAddress)
	if err != nil {
		return err
	}

	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-listener.stopSyn:
				_ = ln.Close()
				close(listener.stopAck)
				return

			default:
				if err := ln.SetDeadline(time.Now().Add(50 * time.Millisecond)); err != nil {
					listener.log.WithError(err).Warn("setting listener deadline failed")
					listener.Close()
					return
				}

				conn, acceptErr := ln.Accept()
				if acceptErr != nil {
					continue
				}

				listener.Accepted <- NewClient(conn, listener.endpointID, listener.log)
			}
		}
	}()

	return nil
}

func (listener *Listener) Close() {
	close(listener.stopSyn)
	<-listener.stopAck
}

func (listener *Listener) Address() string {
	return fmt.Sprintf("tcpclv3://%s", listener.listenAddress)
}
