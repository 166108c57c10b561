package tcpclv4

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dtn7/dtn7-bpv6-core/bpv6"
	"github.com/dtn7/dtn7-bpv6-core/cla"
)

// handleEstablished drives the steady-state session: keepalives, incoming
// transfer reassembly, and forwarding of outgoing XFER_SEGMENTs queued by Send.
func (client *Client) handleEstablished() (err error) {
	defer func() {
		if err != nil && client.keepaliveStarted {
			client.keepaliveTicker.Stop()
		}
	}()

	if !client.keepaliveStarted {
		client.keepaliveTicker = time.NewTicker(time.Duration(client.keepalive) * time.Second)
		client.keepaliveLast = time.Now()
		client.keepaliveStarted = true
	}

	select {
	case <-client.keepaliveTicker.C:
		km := NewKeepaliveMessage()
		client.msgsOut <- &km

		if diff := time.Since(client.keepaliveLast); diff > 2*time.Duration(client.keepalive)*time.Second {
			return fmt.Errorf("tcpclv4: no KEEPALIVE received within expected window")
		}

	case msg := <-client.msgsIn:
		switch m := msg.(type) {
		case *KeepaliveMessage:
			client.keepaliveLast = time.Now()

		case *DataTransmissionMessage:
			if client.transferIn != nil && m.Flags&SegmentStart != 0 {
				client.logger().Warn("XFER_SEGMENT START received mid-transfer; resetting")
				client.transferIn = NewIncomingTransfer(m.TransferId)
			} else if client.transferIn == nil {
				if m.Flags&SegmentStart == 0 {
					refuse := NewTransferRefusalMessage(RefusalUnknown, m.TransferId)
					client.msgsOut <- &refuse
					break
				}
				client.transferIn = NewIncomingTransfer(m.TransferId)
			}

			dam, ackErr := client.transferIn.NextSegment(*m)
			if ackErr != nil {
				client.logger().WithError(ackErr).Warn("incoming segment rejected")
				refuse := NewTransferRefusalMessage(RefusalUnknown, m.TransferId)
				client.msgsOut <- &refuse
				break
			}
			client.msgsOut <- &dam

			if client.transferIn.IsFinished() {
				v, viewErr := client.transferIn.ToView()
				client.transferIn = nil
				if viewErr != nil {
					client.logger().WithError(viewErr).Warn("decoding finished transfer failed")
					break
				}

				atomic.AddInt64(&client.stats.bundlesReceived, 1)
				if payload, ok := v.Payload(); ok {
					atomic.AddInt64(&client.stats.bundleBytesReceived, int64(len(payload.Data)))
				}
				if v.Primary.IsFragment() {
					atomic.AddInt64(&client.stats.fragmentsReceived, 1)
				}

				client.recvChan <- cla.NewRecBundle(v, client.endpointID)
			}

		case *DataAcknowledgementMessage:
			client.transferOutAck <- m

		case *TransferRefusalMessage:
			client.transferOutAck <- m

		case *SessionTerminationMessage:
			return sessTermErr

		default:
			client.logger().WithField("msg", msg).Warn("received unexpected message")
		}

	case msg := <-client.transferOutSend:
		client.msgsOut <- msg

	case <-time.After(time.Millisecond):
		// avoid blocking forever on keepalive/msgsIn/transferOutSend alone
	}

	return nil
}

// Send transmits a bundle view to this Client's peer, blocking until the
// transfer completes or is refused. Send is a back-pressure signal: if the
// session already has as many transfers in flight as its send-slot ring
// allows, Send returns a *bpv6.Error of KindResourceLimit immediately
// instead of queuing, so the caller can re-queue at a higher layer.
func (client *Client) Send(v *bpv6.View) error {
	select {
	case client.sendSlots <- struct{}{}:
	default:
		return &bpv6.Error{Kind: bpv6.KindResourceLimit, Msg: "tcpclv4: send ring is full"}
	}
	defer func() { <-client.sendSlots }()

	client.transferOutMutex.Lock()
	defer client.transferOutMutex.Unlock()

	if !client.state.isEstablished() {
		return fmt.Errorf("tcpclv4: session is not established")
	}

	client.transferOutId++
	t, err := NewOutgoingTransfer(client.transferOutId, v)
	if err != nil {
		return err
	}

	atomic.AddInt64(&client.stats.bundlesSent, 1)
	isFragment := v.Primary.IsFragment()
	if isFragment {
		atomic.AddInt64(&client.stats.fragmentsSent, 1)
	}
	payloadLen := int64(0)
	if payload, ok := v.Payload(); ok {
		payloadLen = int64(len(payload.Data))
	}
	atomic.AddInt64(&client.stats.bundleBytesSent, payloadLen)

	for {
		dtm, segErr := t.NextSegment(client.segmentMru)
		if segErr != nil {
			atomic.AddInt64(&client.stats.bundlesSentAndAcked, 1)
			atomic.AddInt64(&client.stats.bundleBytesSentAndAcked, payloadLen)
			if isFragment {
				atomic.AddInt64(&client.stats.fragmentsSentAndAcked, 1)
			}
			return nil // io.EOF: transfer finished
		}

		client.transferOutSend <- &dtm

		ack := <-client.transferOutAck
		switch a := ack.(type) {
		case *DataAcknowledgementMessage:
			if a.TransferId != dtm.TransferId || a.Flags != dtm.Flags {
				return fmt.Errorf("tcpclv4: XFER_ACK does not match XFER_SEGMENT")
			}
		case *TransferRefusalMessage:
			return fmt.Errorf("tcpclv4: transfer refused: reason=%v", a.ReasonCode)
		default:
			return fmt.Errorf("tcpclv4: unexpected message while awaiting XFER_ACK: %T", ack)
		}
	}
}
