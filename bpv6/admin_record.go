package bpv6

// AdminRecordType identifies the kind of administrative record carried in
// a payload block of a bundle whose primary has IsAdminRecord set
// (RFC 5050 section 6, plus the Aggregate Custody Signal extension this
// module implements for custody transfer).
type AdminRecordType uint8

const (
	AdminRecordTypeStatusReport            AdminRecordType = 1
	AdminRecordTypeCustodySignal           AdminRecordType = 2
	AdminRecordTypeAggregateCustodySignal  AdminRecordType = 4
)

// ReasonCode is the shared reason-code space RFC 5050 section 4.4 and
// RFC 6257's Aggregate Custody Signal extension draw from for both bundle
// status reports and custody signals.
type ReasonCode uint8

const (
	ReasonNoAdditionalInformation         ReasonCode = 0
	ReasonLifetimeExpired                 ReasonCode = 1
	ReasonForwardedOverUnidirectionalLink ReasonCode = 2
	ReasonRedundantReception              ReasonCode = 3
	ReasonDepletedStorage                 ReasonCode = 4
	ReasonDestinationEIDUnintelligible    ReasonCode = 5
	ReasonNoKnownRouteToDestination       ReasonCode = 6
	ReasonNoTimelyContactWithNextNode     ReasonCode = 7
	ReasonBlockUnintelligible             ReasonCode = 8
)

// RecordContent is implemented by CustodySignal, AggregateCustodySignal
// and StatusReport.
type RecordContent interface {
	RecordType() AdminRecordType
	SerializedSize() int
	Serialize(out []byte) []byte
}

// AdminRecord is the decoded content of a payload block carried by an
// administrative-record bundle (IsAdminRecord set on the primary). Its
// header byte packs the record type into the upper four bits and a
// fragment-context flag into the low bit, consistent with RFC 5050
// section 6's "Administrative Record Flags".
type AdminRecord struct {
	IsFragment bool
	Content    RecordContent
}

func (r *AdminRecord) SerializedSize() int {
	return 1 + r.Content.SerializedSize()
}

func (r *AdminRecord) Serialize(out []byte) []byte {
	header := byte(r.Content.RecordType()) << 4
	if r.IsFragment {
		header |= 1
	}
	out = append(out, header)
	return r.Content.Serialize(out)
}

// DeserializeAdminRecord decodes an administrative record from data, which
// must hold exactly the record's bytes (i.e. a payload block's full Data).
func DeserializeAdminRecord(data []byte) (*AdminRecord, error) {
	if len(data) < 1 {
		return nil, malformed("admin record: empty input")
	}
	header := data[0]
	recType := AdminRecordType(header >> 4)
	isFragment := header&0x01 != 0
	body := data[1:]

	var content RecordContent
	var err error
	switch recType {
	case AdminRecordTypeCustodySignal:
		content, err = deserializeCustodySignal(body, isFragment)
	case AdminRecordTypeAggregateCustodySignal:
		content, err = deserializeACS(body)
	case AdminRecordTypeStatusReport:
		content, err = deserializeStatusReport(body, isFragment)
	default:
		return nil, malformed("admin record: unrecognized record type %d", recType)
	}
	if err != nil {
		return nil, err
	}
	return &AdminRecord{IsFragment: isFragment, Content: content}, nil
}
