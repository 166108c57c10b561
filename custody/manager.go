// Package custody implements BPv6 custody transfer (RFC 5050 section 5.10,
// RFC 5050 section 6.3, and the Aggregate Custody Signal extension that
// lets an ACS-aware custodian batch many custody acceptances or refusals
// into a single administrative-record bundle instead of sending one
// custody signal per transferred bundle).
package custody

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dtn7/dtn7-bpv6-core/bpv6"
	"github.com/dtn7/dtn7-bpv6-core/eid"
)

// ReasonIndex enumerates the seven accept/refuse outcomes a custodian can
// aggregate custody signals under, matching the fixed reason-code set
// RFC 5050 section 6.3.1 requires custody signals to classify refusals
// with. Each custodian tracked by Manager gets one ACS bucket per index.
type ReasonIndex uint8

const (
	ReasonIndexSuccessNoAdditionalInformation ReasonIndex = iota
	ReasonIndexFailRedundantReception
	ReasonIndexFailDepletedStorage
	ReasonIndexFailDestinationEndpointIDUnintelligible
	ReasonIndexFailNoKnownRouteToDestination
	ReasonIndexFailNoTimelyContactWithNextNode
	ReasonIndexFailBlockUnintelligible

	numReasonIndices
)

var reasonIndexOutcome = [numReasonIndices]struct {
	succeeded bool
	reason    bpv6.ReasonCode
}{
	ReasonIndexSuccessNoAdditionalInformation:          {true, bpv6.ReasonNoAdditionalInformation},
	ReasonIndexFailRedundantReception:                  {false, bpv6.ReasonRedundantReception},
	ReasonIndexFailDepletedStorage:                     {false, bpv6.ReasonDepletedStorage},
	ReasonIndexFailDestinationEndpointIDUnintelligible:  {false, bpv6.ReasonDestinationEIDUnintelligible},
	ReasonIndexFailNoKnownRouteToDestination:            {false, bpv6.ReasonNoKnownRouteToDestination},
	ReasonIndexFailNoTimelyContactWithNextNode:          {false, bpv6.ReasonNoTimelyContactWithNextNode},
	ReasonIndexFailBlockUnintelligible:                  {false, bpv6.ReasonBlockUnintelligible},
}

// acsBucket is one (custodian, reason index) slot of pending custody IDs
// awaiting aggregation into an ACS bundle.
type acsBucket struct {
	fills bpv6.Set
}

// signalLifetime is the fixed lifetime assigned to generated custody
// signal and ACS bundles. RFC 5050 leaves this to local policy; 1000
// seconds is carried over unchanged from the manager this package is
// grounded on, which marks it as a placeholder rather than a derived
// value.
const signalLifetime = 1000

// Manager tracks custody state for bundles this node takes custody of: it
// decides, per RFC 5050 section 5.10 and the ACS extension's decision
// matrix, whether to emit an RFC 5050 single-bundle custody signal or
// fold the outcome into a pending aggregate custody signal, and owns the
// node's own custody-ID sequence counter.
type Manager struct {
	log *logrus.Entry

	acsAware bool
	self     eid.Endpoint

	mu          sync.Mutex
	buckets     map[eid.Endpoint]*[numReasonIndices]acsBucket
	largestFill uint64

	lastCreation uint64
	sequence     uint64

	// now returns the wall-clock time to stamp onto bundles this manager
	// originates; it is a field rather than a bare time.Now() call so
	// tests can substitute a fixed clock.
	now func() time.Time
}

// NewManager constructs a Manager. self is the custodian EID this node
// signs custody signals and CTEBs with. When acsAware is false, every
// accepted or refused custody transfer produces its own RFC 5050 custody
// signal bundle immediately; when true, transfers backed by a valid CTEB
// are aggregated instead.
func NewManager(acsAware bool, self eid.Endpoint, log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		log:      log,
		acsAware: acsAware,
		self:     self,
		buckets:  make(map[eid.Endpoint]*[numReasonIndices]acsBucket),
		now:      time.Now,
	}
}

// currentCreation returns the current DTN second, i.e. the wall-clock
// second this signal/report is actually being originated in, per RFC 5050
// section 4.1.3's creation-timestamp semantics. It must never be derived
// from the bundle being acknowledged: a custody signal's own creation time
// is independent of the bundle it reports on.
func (m *Manager) currentCreation() uint64 {
	return bpv6.CreationTimestampFromTime(m.now()).Seconds
}

// SetCreationAndSequence returns the next (creation-timestamp, sequence)
// pair this manager should stamp onto a bundle it originates, resetting
// the sequence counter whenever the wall-clock second advances.
func (m *Manager) SetCreationAndSequence(creation uint64) bpv6.CreationTimestamp {
	m.mu.Lock()
	defer m.mu.Unlock()
	if creation != m.lastCreation {
		m.sequence = 0
		m.lastCreation = creation
	}
	seq := m.sequence
	m.sequence++
	return bpv6.CreationTimestamp{Seconds: creation, Sequence: seq}
}

// custodyInfo is what getCustodyInfo extracts from a bundle before
// updateBundleCustodyFields mutates it, mirroring the sender's original
// primary and CTEB state that generateCustodySignal needs afterwards.
type custodyInfo struct {
	primary         bpv6.Primary
	payloadLen      int
	validCTEB       bool
	receivedCustody uint64
}

// ProcessCustodyOfBundle runs the full custody-acceptance decision for a
// received bundle v: it records whatever custody state changes v's
// acceptance or refusal implies (updating v's primary custodian and CTEB
// in place when custody is accepted), then reports whether a standalone
// RFC 5050 custody signal bundle must be sent immediately (signal != nil)
// or whether the outcome was folded into a pending ACS bucket instead
// (signal == nil, err == nil).
func (m *Manager) ProcessCustodyOfBundle(v *bpv6.View, accept bool, custodyID uint64, reason ReasonIndex) (signal *bpv6.View, err error) {
	info, err := m.getCustodyInfo(v)
	if err != nil {
		return nil, err
	}
	if err := m.updateBundleCustodyFields(v, accept, custodyID); err != nil {
		return nil, err
	}
	return m.generateCustodySignal(info, accept, reason)
}

func (m *Manager) getCustodyInfo(v *bpv6.View) (custodyInfo, error) {
	payload, ok := v.Payload()
	if !ok {
		return custodyInfo{}, fmt.Errorf("custody: bundle has no payload block")
	}
	info := custodyInfo{primary: v.Primary, payloadLen: len(payload.Data)}

	if !m.acsAware {
		return info, nil
	}

	cteb, _, found := v.BlockByType(bpv6.BlockTypeCustodyTransferEnhancement)
	if !found {
		return info, nil
	}
	c, ok := cteb.Value.(*bpv6.CTEB)
	if !ok {
		return custodyInfo{}, fmt.Errorf("custody: CTEB block has the wrong concrete type")
	}
	if c.Creator == v.Primary.Custodian {
		info.validCTEB = true
		info.receivedCustody = c.CustodyID
	}
	return info, nil
}

// updateBundleCustodyFields implements RFC 5050 section 5.10's custodian
// bookkeeping: an accepted transfer rewrites the primary's custodian to
// this node and either refreshes the existing CTEB or appends a new one;
// a CTEB whose creator does not match the bundle's prior custodian is
// invalid and is dropped regardless of whether custody is accepted.
func (m *Manager) updateBundleCustodyFields(v *bpv6.View, accept bool, custodyID uint64) error {
	if !m.acsAware {
		if accept {
			v.Primary.Custodian = m.self
		}
		return nil
	}

	ctebBlock, ctebIdx, found := v.BlockByType(bpv6.BlockTypeCustodyTransferEnhancement)
	var cteb *bpv6.CTEB
	if found {
		var ok bool
		cteb, ok = ctebBlock.Value.(*bpv6.CTEB)
		if !ok {
			return fmt.Errorf("custody: CTEB block has the wrong concrete type")
		}
		if cteb.Creator != v.Primary.Custodian {
			v.MarkForDeletion(ctebIdx)
			found = false
		}
	}

	if !accept {
		return nil
	}

	v.Primary.Custodian = m.self
	if found {
		cteb.CustodyID = custodyID
		cteb.Creator = m.self
		v.MarkDirty(ctebIdx)
	} else {
		v.AddBlock(bpv6.Canonical{Value: &bpv6.CTEB{CustodyID: custodyID, Creator: m.self}})
	}
	return nil
}

// generateCustodySignal follows the ACS decision matrix: a valid CTEB
// means the outcome is folded into the matching ACS bucket; anything
// else (ACS-unaware, or no/invalid CTEB) emits a standalone custody
// signal bundle right away.
func (m *Manager) generateCustodySignal(info custodyInfo, accept bool, reason ReasonIndex) (*bpv6.View, error) {
	if m.acsAware && info.validCTEB {
		idx := ReasonIndexSuccessNoAdditionalInformation
		if !accept {
			idx = reason
		}
		m.addToACS(info.primary.Custodian, idx, info.receivedCustody)
		return nil, nil
	}

	effectiveReason := reason
	if accept {
		effectiveReason = ReasonIndexSuccessNoAdditionalInformation
	}
	return m.buildCustodySignalBundle(info.primary, info.payloadLen, effectiveReason)
}

func (m *Manager) addToACS(custodian eid.Endpoint, idx ReasonIndex, custodyID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket := m.buckets[custodian]
	if bucket == nil {
		bucket = &[numReasonIndices]acsBucket{}
		m.buckets[custodian] = bucket
	}
	bucket[idx].fills.Add(custodyID)
	if n := bucket[idx].fills.Total(); n > m.largestFill {
		m.largestFill = n
	}
	m.log.WithFields(logrus.Fields{
		"custodian":  custodian,
		"reason":     idx,
		"custody_id": custodyID,
	}).Debug("custody: aggregated custody signal outcome into ACS bucket")
}

func (m *Manager) buildCustodySignalBundle(sender bpv6.Primary, payloadLen int, idx ReasonIndex) (*bpv6.View, error) {
	outcome := reasonIndexOutcome[idx]

	primary := bpv6.Primary{
		Flags:       (sender.Flags & bpv6.PriorityMask) | bpv6.SingletonDestination | bpv6.MustNotFragment | bpv6.IsAdminRecord,
		Source:      m.self,
		Destination: sender.Custodian,
		Lifetime:    signalLifetime,
	}
	primary.Creation = m.SetCreationAndSequence(m.currentCreation())

	sig := &bpv6.CustodySignal{
		Succeeded:    outcome.succeeded,
		Reason:       outcome.reason,
		TimeOfSignal: bpv6.DTNTime{Seconds: primary.Creation.Seconds},
		Creation:     sender.Creation,
		Source:       sender.Source,
	}
	if sender.IsFragment() {
		sig.IsFragment = true
		sig.FragmentOffset = sender.FragmentOffset
		sig.FragmentLength = uint64(payloadLen)
	}

	rec := &bpv6.AdminRecord{IsFragment: sig.IsFragment, Content: sig}
	v := bpv6.NewView(primary)
	v.AddBlock(bpv6.Canonical{Value: &bpv6.Payload{Data: rec.Serialize(nil)}})
	return v, nil
}

// GenerateAcsBundle renders and clears the pending ACS bucket for
// (custodian, idx), if any, returning ok == false when that bucket is
// empty.
func (m *Manager) GenerateAcsBundle(custodian eid.Endpoint, idx ReasonIndex) (v *bpv6.View, ok bool, err error) {
	m.mu.Lock()
	bucket := m.buckets[custodian]
	if bucket == nil || bucket[idx].fills.Empty() {
		m.mu.Unlock()
		return nil, false, nil
	}
	fills := bucket[idx].fills
	bucket[idx].fills = bpv6.Set{}
	m.mu.Unlock()

	outcome := reasonIndexOutcome[idx]
	primary := bpv6.Primary{
		Flags:       bpv6.SingletonDestination | bpv6.MustNotFragment | bpv6.IsAdminRecord,
		Source:      m.self,
		Destination: custodian,
		Lifetime:    signalLifetime,
	}
	primary.Creation = m.SetCreationAndSequence(m.currentCreation())

	acs := &bpv6.AggregateCustodySignal{Succeeded: outcome.succeeded, Reason: outcome.reason, Fills: fills}
	v = bpv6.NewView(primary)
	v.AddBlock(bpv6.Canonical{Value: &bpv6.Payload{Data: (&bpv6.AdminRecord{Content: acs}).Serialize(nil)}})
	return v, true, nil
}

// GenerateAllAcsBundlesAndClear renders every non-empty pending ACS
// bucket across every custodian into its own bundle and clears them,
// resetting the largest-fill-count statistic GetLargestNumberOfFills
// reports.
func (m *Manager) GenerateAllAcsBundlesAndClear() ([]*bpv6.View, error) {
	m.mu.Lock()
	custodians := make([]eid.Endpoint, 0, len(m.buckets))
	for c := range m.buckets {
		custodians = append(custodians, c)
	}
	m.largestFill = 0
	m.mu.Unlock()

	var out []*bpv6.View
	for _, custodian := range custodians {
		for idx := ReasonIndex(0); idx < numReasonIndices; idx++ {
			v, ok, err := m.GenerateAcsBundle(custodian, idx)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// GetLargestNumberOfFills reports the largest number of custody IDs any
// single ACS bucket has accumulated since the last
// GenerateAllAcsBundlesAndClear, a signal callers can use to decide when
// aggregation is approaching a size limit worth flushing early.
func (m *Manager) GetLargestNumberOfFills() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.largestFill
}

// GenerateBundleDeletionStatusReport builds the bundle status report this
// node sends to report-to when it deletes a bundle before delivery,
// RFC 5050 section 5.13.
func (m *Manager) GenerateBundleDeletionStatusReport(deleted bpv6.Primary, payloadLen int, reason bpv6.ReasonCode) *bpv6.View {
	primary := bpv6.Primary{
		Flags:       (deleted.Flags & bpv6.PriorityMask) | bpv6.SingletonDestination | bpv6.IsAdminRecord,
		Source:      m.self,
		Destination: deleted.ReportTo,
		Lifetime:    signalLifetime,
	}
	primary.Creation = m.SetCreationAndSequence(m.currentCreation())

	report := &bpv6.StatusReport{
		Flags:    bpv6.StatusReportingNodeDeletedBundle,
		Reason:   reason,
		Creation: deleted.Creation,
		Source:   deleted.Source,
		Times:    map[bpv6.StatusFlags]bpv6.DTNTime{bpv6.StatusReportingNodeDeletedBundle: {}},
	}
	if deleted.IsFragment() {
		report.IsFragment = true
		report.FragmentOffset = deleted.FragmentOffset
		report.FragmentLength = uint64(payloadLen)
	}

	rec := &bpv6.AdminRecord{IsFragment: report.IsFragment, Content: report}
	v := bpv6.NewView(primary)
	v.AddBlock(bpv6.Canonical{Value: &bpv6.Payload{Data: rec.Serialize(nil)}})
	return v
}
