package bpv6

import (
	"reflect"
	"testing"

	"github.com/dtn7/dtn7-bpv6-core/eid"
)

func roundTripAdmin(t *testing.T, r *AdminRecord) *AdminRecord {
	t.Helper()
	out := r.Serialize(nil)
	if len(out) != r.SerializedSize() {
		t.Fatalf("Serialize produced %d bytes, SerializedSize said %d", len(out), r.SerializedSize())
	}
	got, err := DeserializeAdminRecord(out)
	if err != nil {
		t.Fatalf("DeserializeAdminRecord: %v", err)
	}
	return got
}

func TestCustodySignalRoundTrip(t *testing.T) {
	r := &AdminRecord{Content: &CustodySignal{
		Succeeded:    true,
		Reason:       ReasonNoAdditionalInformation,
		TimeOfSignal: DTNTime{Seconds: 100, Nanoseconds: 500},
		Creation:     CreationTimestamp{Seconds: 50, Sequence: 1},
		Source:       eid.New(5, 0),
	}}
	got := roundTripAdmin(t, r)
	if !reflect.DeepEqual(got, r) {
		t.Errorf("got %+v, want %+v", got, r)
	}
}

func TestCustodySignalFragmentRoundTrip(t *testing.T) {
	r := &AdminRecord{
		IsFragment: true,
		Content: &CustodySignal{
			Succeeded:      false,
			Reason:         ReasonDepletedStorage,
			IsFragment:     true,
			FragmentOffset: 100,
			FragmentLength: 50,
			TimeOfSignal:   DTNTime{Seconds: 10, Nanoseconds: 0},
			Creation:       CreationTimestamp{Seconds: 5, Sequence: 2},
			Source:         eid.New(1, 1),
		},
	}
	got := roundTripAdmin(t, r)
	if !reflect.DeepEqual(got, r) {
		t.Errorf("got %+v, want %+v", got, r)
	}
}

func TestAggregateCustodySignalRoundTrip(t *testing.T) {
	acs := &AggregateCustodySignal{Succeeded: true, Reason: ReasonNoAdditionalInformation}
	acs.Fills.Add(1)
	acs.Fills.Add(2)
	acs.Fills.Add(3)
	acs.Fills.Add(10)

	r := &AdminRecord{Content: acs}
	got := roundTripAdmin(t, r)
	gotACS, ok := got.Content.(*AggregateCustodySignal)
	if !ok {
		t.Fatalf("got %T, want *AggregateCustodySignal", got.Content)
	}
	if !reflect.DeepEqual(gotACS.Fills.Intervals(), acs.Fills.Intervals()) {
		t.Errorf("fills got %+v, want %+v", gotACS.Fills.Intervals(), acs.Fills.Intervals())
	}
	if gotACS.Succeeded != acs.Succeeded || gotACS.Reason != acs.Reason {
		t.Errorf("status got succeeded=%v reason=%v", gotACS.Succeeded, gotACS.Reason)
	}
}

func TestStatusReportRoundTrip(t *testing.T) {
	r := &AdminRecord{Content: &StatusReport{
		Flags:    StatusReportingNodeDeletedBundle,
		Reason:   ReasonLifetimeExpired,
		Creation: CreationTimestamp{Seconds: 70, Sequence: 0},
		Source:   eid.New(3, 0),
		Times: map[StatusFlags]DTNTime{
			StatusReportingNodeDeletedBundle: {Seconds: 90, Nanoseconds: 1},
		},
	}}
	got := roundTripAdmin(t, r)
	if !reflect.DeepEqual(got, r) {
		t.Errorf("got %+v, want %+v", got, r)
	}
}

func TestAdminRecordRejectsUnknownType(t *testing.T) {
	if _, err := DeserializeAdminRecord([]byte{0xF0}); err == nil {
		t.Fatal("expected rejection of unknown admin record type")
	}
}
