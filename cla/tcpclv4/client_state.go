package tcpclv4

import "sync"

// clientState describes the state of a Client. A Client can always
// upgrade its state to a later one, but never revert to a previous one.
type clientState struct {
	phase int
	mutex sync.Mutex
}

const (
	// phaseContact is the initial Contact Header exchange state, entered
	// directly after a TCP connection was established.
	phaseContact int = iota

	// phaseInit is the SESS_INIT negotiation state.
	phaseInit

	// phaseEstablished allows bundles to be exchanged.
	phaseEstablished

	// phaseTermination is the final state, entered when either side wants
	// to close the session.
	phaseTermination
)

func (cs *clientState) String() string {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	switch cs.phase {
	case phaseContact:
		return "contact"
	case phaseInit:
		return "initialization"
	case phaseEstablished:
		return "established"
	case phaseTermination:
		return "termination"
	default:
		return "invalid"
	}
}

// next enters the following clientState.
func (cs *clientState) next() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if cs.phase != phaseTermination {
		cs.phase++
	}
}

// terminate forces the clientState into phaseTermination.
func (cs *clientState) terminate() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.phase = phaseTermination
}

func (cs *clientState) isPhase(phase int) bool {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	return cs.phase == phase
}

func (cs *clientState) isContact() bool     { return cs.isPhase(phaseContact) }
func (cs *clientState) isInit() bool        { return cs.isPhase(phaseInit) }
func (cs *clientState) isEstablished() bool { return cs.isPhase(phaseEstablished) }
func (cs *clientState) isTerminated() bool  { return cs.isPhase(phaseTermination) }
