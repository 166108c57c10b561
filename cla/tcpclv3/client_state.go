package tcpclv3

import "sync"

// clientState describes the state of a Client. It can always upgrade to a
// later phase, but never revert to a previous one.
type clientState struct {
	phase int
	mutex sync.Mutex
}

const (
	// phaseContact is the initial Contact Header exchange state.
	phaseContact int = iota

	// phaseEstablished allows bundles to be exchanged. TCPCLv3 has no
	// separate negotiation phase: the Contact Header itself carries the
	// peer's keepalive interval and EID.
	phaseEstablished

	// phaseTermination is the final state.
	phaseTermination
)

func (cs *clientState) String() string {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	switch cs.phase {
	case phaseContact:
		return "contact"
	case phaseEstablished:
		return "established"
	case phaseTermination:
		return "termination"
	default:
		return "invalid"
	}
}

func (cs *clientState) next() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if cs.phase != phaseTermination {
		cs.phase++
	}
}

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
func (cs *clientState) isEstablished() bool { return cs.isPhase(phaseEstablished) }
func (cs *clientState) isTerminated() bool  { return cs.isPhase(phaseTermination) }
