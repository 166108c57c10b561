package tcpclv4

import "fmt"

// handleContact manages the Contact Header exchange.
func (client *Client) handleContact() error {
	switch {
	case client.active && !client.contactSent, !client.active && !client.contactSent && client.contactRecv:
		client.chSent = NewContactHeader(0)
		client.contactSent = true
		client.msgsOut <- &client.chSent
		client.logger().WithField("msg", client.chSent).Debug("sent contact header")

	case !client.active && !client.contactRecv, client.active && client.contactSent && !client.contactRecv:
		msg := <-client.msgsIn
		ch, ok := msg.(*ContactHeader)
		if !ok {
			return fmt.Errorf("tcpclv4: expected contact header, got %T", msg)
		}
		client.chRecv = *ch
		client.contactRecv = true
		client.logger().WithField("msg", client.chRecv).Debug("received contact header")

	case client.contactSent && client.contactRecv:
		client.logger().Debug("exchanged contact headers")
		client.state.next()
	}

	return nil
}
