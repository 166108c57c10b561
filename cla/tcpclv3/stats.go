package tcpclv3

import (
	"sync/atomic"
	"time"
)

// defaultMaxUnacked bounds how many transfers Send will admit concurrently
// before returning a back-pressure error. The session multiplexes exactly
// one transfer at a time over transferOutMutex, so a slot count above 1
// would only let callers pile up on the mutex instead of seeing back
// pressure; 1 keeps Send's resource-limit error meaningful.
const defaultMaxUnacked = 1

// linkStats holds the atomic telemetry counters kept per TCPCL session:
// how many bundles/bytes/fragments have been sent, acked and received.
// Fields are accessed exclusively through sync/atomic so Stats() can be
// called from any goroutine without taking client.transferOutMutex.
type linkStats struct {
	bundlesSent             int64
	bundlesSentAndAcked     int64
	bundleBytesSent         int64
	bundleBytesSentAndAcked int64
	fragmentsSent           int64
	fragmentsSentAndAcked   int64
	bundlesReceived         int64
	bundleBytesReceived     int64
	fragmentsReceived       int64
	linkIsUpPhysically      int32
	tcpReconnectAttempts    int64
}

// Stats is an immutable snapshot of a Client's telemetry counters.
type Stats struct {
	BundlesSent             int64
	BundlesSentAndAcked     int64
	BundleBytesSent         int64
	BundleBytesSentAndAcked int64
	FragmentsSent           int64
	FragmentsSentAndAcked   int64
	BundlesReceived         int64
	BundleBytesReceived     int64
	FragmentsReceived       int64
	LinkIsUpPhysically      bool
	TCPReconnectAttempts    int64
}

// Stats returns a snapshot of client's telemetry counters.
func (client *Client) Stats() Stats {
	s := &client.stats
	return Stats{
		BundlesSent:             atomic.LoadInt64(&s.bundlesSent),
		BundlesSentAndAcked:     atomic.LoadInt64(&s.bundlesSentAndAcked),
		BundleBytesSent:         atomic.LoadInt64(&s.bundleBytesSent),
		BundleBytesSentAndAcked: atomic.LoadInt64(&s.bundleBytesSentAndAcked),
		FragmentsSent:           atomic.LoadInt64(&s.fragmentsSent),
		FragmentsSentAndAcked:   atomic.LoadInt64(&s.fragmentsSentAndAcked),
		BundlesReceived:         atomic.LoadInt64(&s.bundlesReceived),
		BundleBytesReceived:     atomic.LoadInt64(&s.bundleBytesReceived),
		FragmentsReceived:       atomic.LoadInt64(&s.fragmentsReceived),
		LinkIsUpPhysically:      atomic.LoadInt32(&s.linkIsUpPhysically) != 0,
		TCPReconnectAttempts:    atomic.LoadInt64(&s.tcpReconnectAttempts),
	}
}

// waitForBundlesToFinishSending polls bundlesSent-bundlesSentAndAcked
// until it reaches zero or max_stalls consecutive polls fail to shrink
// it, giving Close a bounded drain instead of either blocking forever or
// dropping in-flight acks on the floor.
func (client *Client) waitForBundlesToFinishSending(timeoutPerAttempt time.Duration, maxStalls int) bool {
	lastUnacked := int64(-1)
	stalls := 0
	deadline := time.Now().Add(timeoutPerAttempt * time.Duration(maxStalls+1))

	for time.Now().Before(deadline) {
		unacked := atomic.LoadInt64(&client.stats.bundlesSent) - atomic.LoadInt64(&client.stats.bundlesSentAndAcked)
		if unacked <= 0 {
			return true
		}
		if unacked < lastUnacked || lastUnacked == -1 {
			stalls = 0
		} else {
			stalls++
			if stalls >= maxStalls {
				return false
			}
		}
		lastUnacked = unacked
		time.Sleep(timeoutPerAttempt)
	}
	return false
}
