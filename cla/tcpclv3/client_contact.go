package tcpclv3

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dtn7/dtn7-bpv6-core/eid"
)

// handleContact manages the Contact Header exchange and, once both sides
// have exchanged headers, derives the session's keepalive interval and the
// peer's endpoint ID before advancing to the established phase.
func (client *Client) handleContact() error {
	switch {
	case client.active && !client.contactSent, !client.active && !client.contactSent && client.contactRecv:
		client.chSent = NewContactHeader(
			ContactBundleAck|ContactSupportRefuseBundle|ContactSupportLength,
			defaultKeepaliveSeconds,
			client.endpointID.String())
		client.contactSent = true
		client.msgsOut <- &client.chSent

	case !client.active && !client.contactRecv, client.active && client.contactSent && !client.contactRecv:
		msg := <-client.msgsIn
		ch, ok := msg.(*ContactHeader)
		if !ok {
			return fmt.Errorf("tcpclv3: expected contact header, got %T", msg)
		}
		client.chRecv = *ch
		client.contactRecv = true

	case client.contactSent && client.contactRecv:
		peer, err := eid.Parse(client.chRecv.Eid)
		if err != nil {
			return fmt.Errorf("tcpclv3: parsing peer EID %q: %w", client.chRecv.Eid, err)
		}
		client.peerEndpointID = peer

		client.keepalive = client.chSent.KeepaliveInterval
		if client.chRecv.KeepaliveInterval < client.keepalive {
			client.keepalive = client.chRecv.KeepaliveInterval
		}

		client.logger().WithFields(logrus.Fields{
			"peer":      client.peerEndpointID,
			"keepalive": client.keepalive,
		}).Debug("exchanged contact headers")

		client.state.next()
	}

	return nil
}
