package tcpclv4

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dtn7/dtn7-bpv6-core/cla"
	"github.com/dtn7/dtn7-bpv6-core/eid"
)

// sessTermErr is returned from a state handler iff a SESS_TERM was received.
var sessTermErr = errors.New("tcpclv4: SESS_TERM received")

// Client is a TCPCLv4 session for bidirectional bundle exchange; it
// implements both cla.ConvergenceReceiver and cla.ConvergenceSender, since
// TCPCL is bidirectional on a single connection.
type Client struct {
	address        string
	started        bool
	permanent      bool
	endpointID     eid.Endpoint
	peerEndpointID eid.Endpoint

	conn net.Conn
	log  *logrus.Entry

	msgsOut chan Message
	msgsIn  chan Message

	handleMetaStop        chan struct{}
	handleMetaStopAck     chan struct{}
	handlerConnInStop     chan struct{}
	handlerConnInStopAck  chan struct{}
	handlerConnOutStop    chan struct{}
	handlerConnOutStopAck chan struct{}
	handlerStateStop      chan struct{}
	handlerStateStopAck   chan struct{}

	active bool
	state  *clientState

	contactSent bool
	contactRecv bool
	chSent      ContactHeader
	chRecv      ContactHeader

	initSent     bool
	initRecv     bool
	sessInitSent SessionInitMessage
	sessInitRecv SessionInitMessage

	keepalive   uint16
	segmentMru  uint64
	transferMru uint64

	keepaliveStarted bool
	keepaliveLast    time.Time
	keepaliveTicker  *time.Ticker

	transferOutMutex sync.Mutex
	transferOutId    uint64
	transferOutSend  chan Message
	transferOutAck   chan Message

	transferIn *IncomingTransfer

	recvChan chan cla.RecBundle

	stats     linkStats
	sendSlots chan struct{}
}

// NewClient wraps an already-accepted connection as a passive Client.
func NewClient(conn net.Conn, endpointID eid.Endpoint, log *logrus.Entry) *Client {
	return &Client{
		address:    conn.RemoteAddr().String(),
		conn:       conn,
		active:     false,
		endpointID: endpointID,
		log:        log,
	}
}

// DialClient creates an active Client which dials address once Start is called.
func DialClient(address string, endpointID eid.Endpoint, permanent bool, log *logrus.Entry) *Client {
	return &Client{
		address:    address,
		permanent:  permanent,
		active:     true,
		endpointID: endpointID,
		log:        log,
	}
}

func (client *Client) String() string {
	return fmt.Sprintf("tcpclv4(%s)", client.address)
}

func (client *Client) logger() *logrus.Entry {
	if client.log == nil {
		client.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return client.log.WithFields(logrus.Fields{"session": client.String(), "state": client.state})
}

func (client *Client) Start() (err error, retry bool) {
	client.state = new(clientState)

	if client.started {
		if !client.active {
			return fmt.Errorf("tcpclv4: passive client cannot be restarted"), false
		}
		<-client.handleMetaStopAck
		client.conn = nil
	}
	client.started = true

	if client.conn == nil {
		atomic.AddInt64(&client.stats.tcpReconnectAttempts, 1)
		conn, dialErr := net.DialTimeout("tcp", client.address, 5*time.Second)
		if dialErr != nil {
			return dialErr, true
		}
		client.conn = conn
		client.address = conn.RemoteAddr().String()
	}
	atomic.StoreInt32(&client.stats.linkIsUpPhysically, 1)

	client.contactSent, client.contactRecv = false, false
	client.initSent, client.initRecv = false, false
	client.keepaliveStarted = false
	client.transferOutId = 0
	client.transferIn = nil

	client.msgsOut = make(chan Message, 100)
	client.msgsIn = make(chan Message, 100)
	client.transferOutSend = make(chan Message)
	client.transferOutAck = make(chan Message)

	client.handleMetaStop = make(chan struct{}, 10)
	client.handleMetaStopAck = make(chan struct{}, 2)
	client.handlerConnInStop = make(chan struct{}, 2)
	client.handlerConnInStopAck = make(chan struct{}, 2)
	client.handlerConnOutStop = make(chan struct{}, 2)
	client.handlerConnOutStopAck = make(chan struct{}, 2)
	client.handlerStateStop = make(chan struct{}, 2)
	client.handlerStateStopAck = make(chan struct{}, 2)

	client.recvChan = make(chan cla.RecBundle, 100)
	client.sendSlots = make(chan struct{}, defaultMaxUnacked)

	go client.handleMeta()
	go client.handleConnIn()
	go client.handleConnOut()
	go client.handleState()

	return nil, false
}

func (client *Client) Close() {
	client.waitForBundlesToFinishSending(250*time.Millisecond, 10)

	client.handleMetaStop <- struct{}{}

	select {
	case <-time.After(500 * time.Millisecond):
	case <-client.handleMetaStopAck:
	}

	atomic.StoreInt32(&client.stats.linkIsUpPhysically, 0)
}

func (client *Client) Channel() chan cla.RecBundle {
	return client.recvChan
}

func (client *Client) Address() string {
	return client.address
}

func (client *Client) IsPermanent() bool {
	return client.permanent
}

func (client *Client) GetEndpointID() eid.Endpoint {
	return client.endpointID
}

func (client *Client) GetPeerEndpointID() eid.Endpoint {
	return client.peerEndpointID
}
