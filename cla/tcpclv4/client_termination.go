package tcpclv4

// terminate sends a SESS_TERM with the given reason and closes the connection.
func (client *Client) terminate(code SessionTerminationCode) {
	sessTerm := NewSessionTerminationMessage(0, code)
	client.msgsOut <- &sessTerm

	if err := client.conn.Close(); err != nil {
		client.logger().WithError(err).Warn("closing TCP connection failed")
	}
}
