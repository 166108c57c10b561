package tcpclv4

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dtn7/dtn7-bpv6-core/eid"
)

// defaultKeepalive, defaultSegmentMru and defaultTransferMru are this
// implementation's offered SESS_INIT parameters; the negotiated session
// uses the smaller of each parameter's two offers, per RFC 9174 section 4.3.
const (
	defaultKeepalive   = 10
	defaultSegmentMru  = 1 << 20
	defaultTransferMru = 0xFFFFFFFF
)

// handleSessInit manages the SESS_INIT negotiation.
func (client *Client) handleSessInit() error {
	switch {
	case client.active && !client.initSent, !client.active && !client.initSent && client.initRecv:
		client.sessInitSent = NewSessionInitMessage(defaultKeepalive, defaultSegmentMru, defaultTransferMru, client.endpointID.String())
		client.initSent = true
		client.msgsOut <- &client.sessInitSent
		client.logger().WithField("msg", client.sessInitSent).Debug("sent SESS_INIT")

	case !client.active && !client.initRecv, client.active && client.initSent && !client.initRecv:
		msg := <-client.msgsIn
		switch m := msg.(type) {
		case *SessionInitMessage:
			client.sessInitRecv = *m
			client.initRecv = true
			client.logger().WithField("msg", client.sessInitRecv).Debug("received SESS_INIT")
		case *SessionTerminationMessage:
			return sessTermErr
		default:
			return fmt.Errorf("tcpclv4: expected SESS_INIT, got %T", msg)
		}

	case client.initSent && client.initRecv:
		peer, err := eid.Parse(client.sessInitRecv.Eid)
		if err != nil {
			return fmt.Errorf("tcpclv4: parsing peer EID %q: %w", client.sessInitRecv.Eid, err)
		}
		client.peerEndpointID = peer

		client.keepalive = min16(client.sessInitSent.KeepaliveInterval, client.sessInitRecv.KeepaliveInterval)
		client.segmentMru = min64(client.sessInitSent.SegmentMru, client.sessInitRecv.SegmentMru)
		client.transferMru = min64(client.sessInitSent.TransferMru, client.sessInitRecv.TransferMru)

		client.logger().WithFields(logrus.Fields{
			"peer":         client.peerEndpointID,
			"keepalive":    client.keepalive,
			"segment_mru":  client.segmentMru,
			"transfer_mru": client.transferMru,
		}).Debug("negotiated SESS_INIT parameters")

		client.state.next()
	}

	return nil
}

func min16(a, b uint16) uint16 {
	if a < b {
		return a
	}
	return b
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
