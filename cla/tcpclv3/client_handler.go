package tcpclv3

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

// handleConnIn reads incoming TCPCLv3 messages off the connection.
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

// handleConnOut writes outbound TCPCLv3 messages to the connection.
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
				client.logger().WithError(err).Error("sending message failed")
				return
			}
			if err := w.Flush(); err != nil {
				client.logger().WithError(err).Error("flushing connection failed")
				return
			}

			if _, ok := msg.(*ShutdownMessage); ok {
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
			shutdown := NewShutdownMessage(ShutdownIdleTimeout, false, 0, false)
			client.msgsOut <- &shutdown
			return
		}

		var stateHandler func() error
		switch {
		case client.state.isContact():
			stateHandler = client.handleContact
		case client.state.isEstablished():
			stateHandler = client.handleEstablished
		}

		if err := stateHandler(); err != nil {
			if err == shutdownRecvErr {
				client.logger().Info("received SHUTDOWN, moving to termination")
			} else {
				client.logger().WithError(err).Warn("state handler failed")
			}
			client.state.terminate()
		}
	}
}
