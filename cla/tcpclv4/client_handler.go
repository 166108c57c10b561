package tcpclv4

import (
	"bufio"
	"io"
	"net"
	"time"
)

// handleMeta supervises the other handlers and propagates shutdown signals.
func (client *Client) handleMeta() {
	<-client.handleMetaStop
	client.logger().Debug("handler received stop signal")

	client.state.terminate()

	closeChans := []chan struct{}{
		client.handlerConnInStop, client.handlerConnInStopAck,
		client.handlerConnOutStop, client.handlerConnOutStopAck,
		client.handlerStateStop, client.handlerStateStopAck,
	}
	for i := 0; i < len(closeChans); i += 2 {
		close(closeChans[i])
		<-closeChans[i+1]
	}

	close(client.handleMetaStopAck)
}

// handleConnIn reads incoming TCPCLv4 messages off the connection.
func (client *Client) handleConnIn() {
	defer func() {
		close(client.handlerConnInStopAck)
		client.handleMetaStop <- struct{}{}
	}()

	r := bufio.NewReader(client.conn)

	for {
		select {
		case <-client.handlerConnInStop:
			return
		default:
			if err := client.conn.SetReadDeadline(time.Now().Add(3 * time.Second)); err != nil {
				client.logger().WithError(err).Error("setting read deadline failed")
				return
			}

			msg, err := ReadMessage(r)
			if err == nil {
				client.logger().WithField("msg", msg).Debug("received message")
				client.msgsIn <- msg
				continue
			}

			if err == io.EOF {
				client.logger().Info("connection closed by peer")
				return
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			client.logger().WithError(err).Warn("reading next message failed")
			return
		}
	}
}

// handleConnOut writes outbound TCPCLv4 messages to the connection.
func (client *Client) handleConnOut() {
	defer func() {
		close(client.handlerConnOutStopAck)
		client.handleMetaStop <- struct{}{}
	}()

	w := bufio.NewWriter(client.conn)

	for {
		select {
		case <-client.handlerConnOutStop:
			return

		case msg := <-client.msgsOut:
			if err := msg.Marshal(w); err != nil {
				client.logger().WithError(err).WithField("msg", msg).Error("sending message failed")
				return
			}
			if err := w.Flush(); err != nil {
				client.logger().WithError(err).Error("flushing connection failed")
				return
			}
			client.logger().WithField("msg", msg).Debug("sent message")

			if _, ok := msg.(*SessionTerminationMessage); ok {
				_ = client.conn.Close()
				return
			}
		}
	}
}

// handleState dispatches to the current phase's handler until termination.
func (client *Client) handleState() {
	defer func() {
		close(client.handlerStateStopAck)
		client.handleMetaStop <- struct{}{}
	}()

	for {
		select {
		case <-client.handlerStateStop:
			return
		default:
		}

		if client.state.isTerminated() {
			client.logger().Info("entering termination phase")

			sessTerm := NewSessionTerminationMessage(0, TerminationUnknown)
			client.msgsOut <- &sessTerm

			if !client.peerEndpointID.IsZero() {
				client.logger().WithField("peer", client.peerEndpointID).Info("peer disappeared")
			}
			return
		}

		var stateHandler func() error
		switch {
		case client.state.isContact():
			stateHandler = client.handleContact
		case client.state.isInit():
			stateHandler = client.handleSessInit
		case client.state.isEstablished():
			stateHandler = client.handleEstablished
		}

		if err := stateHandler(); err != nil {
			if err == sessTermErr {
				client.logger().Info("received SESS_TERM, moving to termination")
			} else {
				client.logger().WithError(err).Warn("state handler failed")
			}
			client.state.terminate()
		}
	}
}
