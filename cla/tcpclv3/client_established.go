package tcpclv3

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dtn7/dtn7-bpv6-core/bpv6"
	"github.com/dtn7/dtn7-bpv6-core/cla"
)

// handleEstablished drives the steady-state session: keepalives, incoming
// transfer reassembly, and forwarding of outgoing DATA_SEGMENTs queued by Send.
func (client *Client) handleEstablished() (err error) {
	defer func() {
		if err != nil && client.keepaliveStarted {
			client.keepaliveTicker.Stop()
		}
	}()

	if client.keepalive > 0 && !client.keepaliveStarted {
		client.keepaliveTicker = time.NewTicker(time.Duration(client.keepalive) * time.Second)
		client.keepaliveLast = time.Now()
		client.keepaliveStarted = true
	}

	var tick <-chan time.Time
	if client.keepaliveStarted {
		tick = client.keepaliveTicker.C
	}

	select {
	case <-tick:
		km := NewKeepaliveMessage()
		client.msgsOut <- &km

		if diff := time.Since(client.keepaliveLast); diff > 2*time.Duration(client.keepalive)*time.Second {
			return fmt.Errorf("tcpclv3: no KEEPALIVE received within expected window")
		}

	case msg := <-client.msgsIn:
		switch m := msg.(type) {
		case *KeepaliveMessage:
			client.keepaliveLast = time.Now()

		case *LengthMessage:
			client.logger().WithField("length", m.Length).Debug("received LENGTH")

		case *DataSegmentMessage:
			if client.transferIn != nil && m.Flags&SegmentStart != 0 {
				client.logger().Warn("DATA_SEGMENT START received mid-transfer; resetting")
				client.transferIn = NewIncomingTransfer()
			} else if client.transferIn == nil {
				if m.Flags&SegmentStart == 0 {
					refuse := NewRefuseBundleMessage(RefusalUnknown)
					client.msgsOut <- &refuse
					break
				}
				client.transferIn = NewIncomingTransfer()
			}

			ackLen, segErr := client.transferIn.NextSegment(*m)
			if segErr != nil {
				client.logger().WithError(segErr).Warn("incoming segment rejected")
				refuse := NewRefuseBundleMessage(RefusalUnknown)
				client.msgsOut <- &refuse
				break
			}
			ack := NewAckSegmentMessage(ackLen)
			client.msgsOut <- &ack

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

		case *AckSegmentMessage:
			client.transferOutAck <- m

		case *RefuseBundleMessage:
			client.transferOutAck <- m

		case *ShutdownMessage:
			return shutdownRecvErr

		default:
			client.logger().WithField("msg", msg).Warn("received unexpected message")
		}

	case msg := <-client.transferOutSend:
		client.msgsOut <- msg

	case <-time.After(time.Millisecond):
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
		return &bpv6.Error{Kind: bpv6.KindResourceLimit, Msg: "tcpclv3: send ring is full"}
	}
	defer func() { <-client.sendSlots }()

	client.transferOutMutex.Lock()
	defer client.transferOutMutex.Unlock()

	if !client.state.isEstablished() {
		return fmt.Errorf("tcpclv3: session is not established")
	}

	t, err := NewOutgoingTransfer(v)
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

	if client.chRecv.Flags&ContactSupportLength != 0 {
		data, renderErr := v.Render()
		if renderErr != nil {
			return renderErr
		}
		length := NewLengthMessage(uint64(len(data)))
		client.transferOutSend <- &length
	}

	for {
		dsm, segErr := t.NextSegment(defaultMaxSegmentSize)
		if segErr != nil {
			atomic.AddInt64(&client.stats.bundlesSentAndAcked, 1)
			atomic.AddInt64(&client.stats.bundleBytesSentAndAcked, payloadLen)
			if isFragment {
				atomic.AddInt64(&client.stats.fragmentsSentAndAcked, 1)
			}
			return nil // io.EOF: transfer finished
		}

		client.transferOutSend <- &dsm

		ack := <-client.transferOutAck
		switch a := ack.(type) {
		case *AckSegmentMessage:
			_ = a
		case *RefuseBundleMessage:
			return fmt.Errorf("tcpclv3: transfer refused: reason=%v", a.Reason)
		default:
			return fmt.Errorf("tcpclv3: unexpected message while awaiting ACK_SEGMENT: %T", ack)
		}
	}
}
