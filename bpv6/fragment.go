package bpv6

// fragmentKey identifies the original, unfragmented application data unit
// a set of fragments belongs to: RFC 5050 has no explicit "ADU ID", so
// implementations match fragments by source EID and creation timestamp,
// the same pair a custodian uses to correlate a fragment back to the
// bundle it was split from.
type fragmentKey struct {
	Source   string
	Creation CreationTimestamp
}

func fragmentKeyOf(p Primary) fragmentKey {
	return fragmentKey{Source: p.Source.String(), Creation: p.Creation}
}

// CalcNumFragments returns how many fragments Fragment will produce for a
// payload of payloadLen bytes given a per-fragment payload budget of
// maxFragmentPayload bytes.
func CalcNumFragments(payloadLen, maxFragmentPayload uint64) uint64 {
	if maxFragmentPayload == 0 {
		return 0
	}
	if payloadLen == 0 {
		return 1
	}
	return (payloadLen + maxFragmentPayload - 1) / maxFragmentPayload
}

// Fragment splits v into a sequence of fragment bundles whose payload
// blocks are each at most maxFragmentPayload bytes, preserving every
// other canonical block according to its position relative to the
// payload block and its BlockReplicateInEveryFragment flag: blocks before
// the payload are carried only by the first fragment, blocks after the
// payload only by the last, and a block with
// BlockReplicateInEveryFragment set is carried by every fragment
// regardless of position. If v's payload already fits within
// maxFragmentPayload, Fragment returns v unchanged as the sole element.
func Fragment(v *View, maxFragmentPayload uint64) ([]*View, error) {
	if v.Primary.Flags.Has(MustNotFragment) {
		return nil, malformed("fragment: bundle has the must-not-fragment flag set")
	}
	payload, ok := v.Payload()
	if !ok {
		return nil, malformed("fragment: bundle has no payload block")
	}
	total := uint64(len(payload.Data))
	if maxFragmentPayload == 0 {
		return nil, malformed("fragment: maxFragmentPayload must be positive")
	}
	if total <= maxFragmentPayload {
		return []*View{v}, nil
	}

	blocks := v.Blocks()
	payloadIdx := -1
	for i, b := range blocks {
		if _, ok := b.Value.(*Payload); ok {
			payloadIdx = i
			break
		}
	}
	before := blocks[:payloadIdx]
	after := blocks[payloadIdx+1:]

	baseOffset := uint64(0)
	baseTotal := total
	if v.Primary.IsFragment() {
		baseOffset = v.Primary.FragmentOffset
		baseTotal = v.Primary.TotalADULength
	}

	var fragments []*View
	for offset := uint64(0); offset < total; offset += maxFragmentPayload {
		end := offset + maxFragmentPayload
		if end > total {
			end = total
		}
		isFirst := offset == 0
		isLast := end == total

		fp := v.Primary
		fp.Flags |= IsFragment
		fp.FragmentOffset = baseOffset + offset
		fp.TotalADULength = baseTotal
		fv := NewView(fp)

		for _, b := range before {
			if isFirst || b.Flags.Has(BlockReplicateInEveryFragment) {
				fv.AddBlock(Canonical{Flags: b.Flags, Value: b.Value})
			}
		}
		chunk := make([]byte, end-offset)
		copy(chunk, payload.Data[offset:end])
		fv.AddBlock(Canonical{Value: &Payload{Data: chunk}})
		for _, b := range after {
			if isLast || b.Flags.Has(BlockReplicateInEveryFragment) {
				fv.AddBlock(Canonical{Flags: b.Flags, Value: b.Value})
			}
		}

		fragments = append(fragments, fv)
	}
	return fragments, nil
}

// Assemble reconstructs the original bundle from a set of fragments
// produced by Fragment (or received from the network). It returns an
// error if the fragments do not share a source EID and creation
// timestamp, disagree on the total application data unit length, or do
// not together cover every byte of the payload.
func Assemble(fragments []*View) (*View, error) {
	if len(fragments) == 0 {
		return nil, malformed("assemble: no fragments given")
	}

	key := fragmentKeyOf(fragments[0].Primary)
	total := fragments[0].Primary.TotalADULength

	var have Set
	data := make([]byte, total)

	var firstFrag, lastFrag *View
	for _, f := range fragments {
		if !f.Primary.IsFragment() {
			return nil, malformed("assemble: a fragment's primary must have IsFragment set")
		}
		if fragmentKeyOf(f.Primary) != key {
			return nil, malformed("assemble: fragments do not share a source EID and creation timestamp")
		}
		if f.Primary.TotalADULength != total {
			return nil, malformed("assemble: fragments disagree on total ADU length")
		}
		payload, ok := f.Payload()
		if !ok {
			return nil, malformed("assemble: a fragment has no payload block")
		}
		off := f.Primary.FragmentOffset
		end := off + uint64(len(payload.Data))
		if end > total {
			return nil, malformed("assemble: fragment payload extends past the total ADU length")
		}
		copy(data[off:end], payload.Data)
		have.Insert(Interval{Begin: off, End: end})

		if off == 0 {
			firstFrag = f
		}
		if end == total {
			lastFrag = f
		}
	}
	if firstFrag == nil || lastFrag == nil {
		return nil, malformed("assemble: missing the first or last fragment")
	}
	if !have.ContainsEntirely(0, total) {
		return nil, malformed("assemble: fragments do not cover the entire application data unit")
	}

	resultPrimary := firstFrag.Primary
	resultPrimary.Flags &^= IsFragment
	resultPrimary.FragmentOffset = 0
	resultPrimary.TotalADULength = 0

	result := NewView(resultPrimary)
	for _, b := range firstFrag.Blocks() {
		if _, ok := b.Value.(*Payload); ok {
			break
		}
		result.AddBlock(Canonical{Flags: b.Flags, Value: b.Value})
	}
	result.AddBlock(Canonical{Value: &Payload{Data: data}})
	afterPayload := false
	for _, b := range lastFrag.Blocks() {
		if _, ok := b.Value.(*Payload); ok {
			afterPayload = true
			continue
		}
		if afterPayload {
			result.AddBlock(Canonical{Flags: b.Flags, Value: b.Value})
		}
	}
	return result, nil
}
