package tcpclv3

// terminate sends a SHUTDOWN with the given reason and closes the connection.
func (client *Client) terminate(reason ShutdownReason) {
	shutdown := NewShutdownMessage(reason, true, 0, false)
	client.msgsOut <- &shutdown

	if err := client.conn.Close(); err != nil {
		client.logger().WithError(err).Warn("closing TCP connection failed")
	}
}
