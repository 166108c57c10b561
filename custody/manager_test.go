package custody

import (
	"testing"

	"github.com/dtn7/dtn7-bpv6-core/bpv6"
	"github.com/dtn7/dtn7-bpv6-core/eid"
)

func sampleBundle(custodian eid.Endpoint) *bpv6.View {
	p := bpv6.Primary{
		Flags:       bpv6.SingletonDestination | bpv6.CustodyTransfer,
		Destination: eid.New(2, 0),
		Source:      eid.New(1, 0),
		ReportTo:    eid.New(1, 0),
		Custodian:   custodian,
		Creation:    bpv6.CreationTimestamp{Seconds: 100, Sequence: 0},
		Lifetime:    3600,
	}
	v := bpv6.NewView(p)
	v.AddBlock(bpv6.Canonical{Value: &bpv6.Payload{Data: []byte("payload")}})
	return v
}

func TestProcessCustodyOfBundleNotAcsAwareAccept(t *testing.T) {
	self := eid.New(9, 0)
	sender := eid.New(1, 0)
	m := NewManager(false, self, nil)

	v := sampleBundle(sender)
	signal, err := m.ProcessCustodyOfBundle(v, true, 1, ReasonIndexSuccessNoAdditionalInformation)
	if err != nil {
		t.Fatalf("ProcessCustodyOfBundle: %v", err)
	}
	if signal == nil {
		t.Fatal("expected a standalone custody signal bundle for an ACS-unaware accept")
	}
	if v.Primary.Custodian != self {
		t.Errorf("custodian not updated: got %v", v.Primary.Custodian)
	}
	rendered, err := signal.Render()
	if err != nil {
		t.Fatalf("Render signal: %v", err)
	}
	loaded, err := bpv6.Load(rendered)
	if err != nil {
		t.Fatalf("Load signal: %v", err)
	}
	if !loaded.Primary.Flags.Has(bpv6.IsAdminRecord) {
		t.Error("custody signal bundle must have IsAdminRecord set")
	}
	payload, ok := loaded.Payload()
	if !ok || payload.Record == nil {
		t.Fatal("expected decodable administrative record")
	}
	sig, ok := payload.Record.Content.(*bpv6.CustodySignal)
	if !ok {
		t.Fatalf("got %T, want *bpv6.CustodySignal", payload.Record.Content)
	}
	if !sig.Succeeded {
		t.Error("expected succeeded custody signal")
	}
}

func TestProcessCustodyOfBundleAcsAwareValidCtebAggregates(t *testing.T) {
	self := eid.New(9, 0)
	prevCustodian := eid.New(1, 0)
	m := NewManager(true, self, nil)

	v := sampleBundle(prevCustodian)
	v.AddBlock(bpv6.Canonical{Value: &bpv6.CTEB{CustodyID: 7, Creator: prevCustodian}})

	signal, err := m.ProcessCustodyOfBundle(v, true, 55, ReasonIndexSuccessNoAdditionalInformation)
	if err != nil {
		t.Fatalf("ProcessCustodyOfBundle: %v", err)
	}
	if signal != nil {
		t.Fatal("expected aggregation, not a standalone signal, for a valid CTEB")
	}
	if v.Primary.Custodian != self {
		t.Errorf("custodian not updated: got %v", v.Primary.Custodian)
	}

	cteb, _, ok := v.BlockByType(bpv6.BlockTypeCustodyTransferEnhancement)
	if !ok {
		t.Fatal("expected CTEB to survive")
	}
	c := cteb.Value.(*bpv6.CTEB)
	if c.CustodyID != 55 || c.Creator != self {
		t.Errorf("CTEB not updated: got %+v", c)
	}

	acsView, ok, err := m.GenerateAcsBundle(prevCustodian, ReasonIndexSuccessNoAdditionalInformation)
	if err != nil {
		t.Fatalf("GenerateAcsBundle: %v", err)
	}
	if !ok {
		t.Fatal("expected a pending ACS bundle")
	}
	rendered, err := acsView.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	loaded, err := bpv6.Load(rendered)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	payload, _ := loaded.Payload()
	acs, ok := payload.Record.Content.(*bpv6.AggregateCustodySignal)
	if !ok {
		t.Fatalf("got %T, want *bpv6.AggregateCustodySignal", payload.Record.Content)
	}
	if !acs.Fills.Contains(7) {
		t.Errorf("expected fills to contain custody id 7, got %+v", acs.Fills.Intervals())
	}

	if _, ok, _ := m.GenerateAcsBundle(prevCustodian, ReasonIndexSuccessNoAdditionalInformation); ok {
		t.Error("expected the ACS bucket to be cleared after generation")
	}
}

func TestProcessCustodyOfBundleAcsAwareInvalidCtebDropsAndSignalsImmediately(t *testing.T) {
	self := eid.New(9, 0)
	realCustodian := eid.New(1, 0)
	impostor := eid.New(3, 0)
	m := NewManager(true, self, nil)

	v := sampleBundle(realCustodian)
	v.AddBlock(bpv6.Canonical{Value: &bpv6.CTEB{CustodyID: 7, Creator: impostor}})

	signal, err := m.ProcessCustodyOfBundle(v, true, 12, ReasonIndexSuccessNoAdditionalInformation)
	if err != nil {
		t.Fatalf("ProcessCustodyOfBundle: %v", err)
	}
	if signal == nil {
		t.Fatal("an invalid CTEB must fall back to a standalone custody signal")
	}

	if _, _, ok := v.BlockByType(bpv6.BlockTypeCustodyTransferEnhancement); !ok {
		t.Fatal("expected a fresh CTEB to have been appended after the invalid one was dropped")
	}
	cteb, _, _ := v.BlockByType(bpv6.BlockTypeCustodyTransferEnhancement)
	c := cteb.Value.(*bpv6.CTEB)
	if c.Creator != self || c.CustodyID != 12 {
		t.Errorf("expected a fresh CTEB owned by self, got %+v", c)
	}
}

func TestProcessCustodyOfBundleRefusal(t *testing.T) {
	self := eid.New(9, 0)
	sender := eid.New(1, 0)
	m := NewManager(false, self, nil)

	v := sampleBundle(sender)
	signal, err := m.ProcessCustodyOfBundle(v, false, 0, ReasonIndexFailDepletedStorage)
	if err != nil {
		t.Fatalf("ProcessCustodyOfBundle: %v", err)
	}
	if signal == nil {
		t.Fatal("expected a refusal signal")
	}
	if v.Primary.Custodian != sender {
		t.Error("custodian must not change on refusal")
	}
	rendered, _ := signal.Render()
	loaded, err := bpv6.Load(rendered)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	payload, _ := loaded.Payload()
	sig := payload.Record.Content.(*bpv6.CustodySignal)
	if sig.Succeeded {
		t.Error("expected a failed custody signal")
	}
	if sig.Reason != bpv6.ReasonDepletedStorage {
		t.Errorf("reason = %v, want ReasonDepletedStorage", sig.Reason)
	}
}

func TestSetCreationAndSequenceResetsOnNewSecond(t *testing.T) {
	m := NewManager(false, eid.New(1, 0), nil)
	a := m.SetCreationAndSequence(100)
	b := m.SetCreationAndSequence(100)
	c := m.SetCreationAndSequence(101)

	if a.Sequence != 0 || b.Sequence != 1 {
		t.Errorf("expected sequence 0,1 within the same second, got %d,%d", a.Sequence, b.Sequence)
	}
	if c.Sequence != 0 {
		t.Errorf("expected sequence to reset to 0 on a new second, got %d", c.Sequence)
	}
}

func TestGenerateAllAcsBundlesAndClear(t *testing.T) {
	self := eid.New(9, 0)
	custodianA := eid.New(1, 0)
	m := NewManager(true, self, nil)

	v1 := sampleBundle(custodianA)
	v1.AddBlock(bpv6.Canonical{Value: &bpv6.CTEB{CustodyID: 1, Creator: custodianA}})
	if _, err := m.ProcessCustodyOfBundle(v1, true, 1, ReasonIndexSuccessNoAdditionalInformation); err != nil {
		t.Fatalf("ProcessCustodyOfBundle: %v", err)
	}

	views, err := m.GenerateAllAcsBundlesAndClear()
	if err != nil {
		t.Fatalf("GenerateAllAcsBundlesAndClear: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d ACS bundles, want 1", len(views))
	}
	if m.GetLargestNumberOfFills() != 0 {
		t.Errorf("expected fill counter reset, got %d", m.GetLargestNumberOfFills())
	}

	more, err := m.GenerateAllAcsBundlesAndClear()
	if err != nil {
		t.Fatalf("GenerateAllAcsBundlesAndClear: %v", err)
	}
	if len(more) != 0 {
		t.Errorf("expected no bundles on an empty manager, got %d", len(more))
	}
}

func TestGenerateBundleDeletionStatusReport(t *testing.T) {
	m := NewManager(false, eid.New(9, 0), nil)
	deleted := bpv6.Primary{
		Flags:       bpv6.SingletonDestination,
		Destination: eid.New(2, 0),
		Source:      eid.New(1, 0),
		ReportTo:    eid.New(1, 0),
		Creation:    bpv6.CreationTimestamp{Seconds: 100},
		Lifetime:    3600,
	}
	v := m.GenerateBundleDeletionStatusReport(deleted, 42, bpv6.ReasonLifetimeExpired)
	rendered, err := v.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	loaded, err := bpv6.Load(rendered)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	payload, _ := loaded.Payload()
	report, ok := payload.Record.Content.(*bpv6.StatusReport)
	if !ok {
		t.Fatalf("got %T, want *bpv6.StatusReport", payload.Record.Content)
	}
	if !report.Flags.Has(bpv6.StatusReportingNodeDeletedBundle) {
		t.Error("expected the deleted-bundle status flag")
	}
	if report.Reason != bpv6.ReasonLifetimeExpired {
		t.Errorf("reason = %v, want ReasonLifetimeExpired", report.Reason)
	}
}
