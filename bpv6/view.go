package bpv6

// blockEntry wraps a Canonical block with the bookkeeping View needs to
// avoid re-parsing or re-rendering blocks that have not changed: Dirty is
// set whenever Block's contents may have changed since the last Render,
// and MarkedForDeletion blocks are skipped by Render and Blocks but kept
// in place so their index does not shift out from under a caller holding
// onto it. rendered caches the last full wire encoding of Block so that a
// clean entry's bytes can be copied into the next Render instead of being
// re-serialized from scratch; flagsOffset is the index within rendered of
// its one-byte flags SDNV, letting Render patch IS_LAST_BLOCK in place
// when that is the only thing that changed.
type blockEntry struct {
	Block             Canonical
	Dirty             bool
	MarkedForDeletion bool

	rendered    []byte
	flagsOffset int
}

// View is an in-memory, mutable representation of a bundle: a primary
// block plus an ordered list of canonical blocks. It tracks which blocks
// have changed since the bundle was last rendered to wire bytes, so that
// a caller that mutates one block of a large bundle does not pay to
// re-serialize the rest. Render keeps two buffers, front and back,
// swapping them on a successful render so that a failed render never
// corrupts the last-known-good wire form.
type View struct {
	Primary Primary
	entries []*blockEntry

	front []byte
	back  []byte
	dirty bool
}

// NewView builds an empty View around primary, with no canonical blocks.
func NewView(primary Primary) *View {
	return &View{Primary: primary, dirty: true}
}

// AddBlock appends a canonical block to the view and returns its index.
func (v *View) AddBlock(c Canonical) int {
	v.entries = append(v.entries, &blockEntry{Block: c, Dirty: true})
	v.dirty = true
	return len(v.entries) - 1
}

// Blocks returns every non-deleted canonical block, in wire order.
func (v *View) Blocks() []Canonical {
	out := make([]Canonical, 0, len(v.entries))
	for _, e := range v.entries {
		if !e.MarkedForDeletion {
			out = append(out, e.Block)
		}
	}
	return out
}

// BlockByType returns the first non-deleted block of the given type.
func (v *View) BlockByType(t BlockType) (*Canonical, int, bool) {
	for i, e := range v.entries {
		if !e.MarkedForDeletion && e.Block.Value.BlockType() == t {
			return &e.Block, i, true
		}
	}
	return nil, -1, false
}

// MarkDirty flags the block at index as changed, forcing the next Render
// to re-serialize it instead of reusing a cached rendering.
func (v *View) MarkDirty(index int) {
	if index < 0 || index >= len(v.entries) {
		return
	}
	v.entries[index].Dirty = true
	v.dirty = true
}

// MarkForDeletion removes the block at index from future Blocks/Render
// output without shifting other indices.
func (v *View) MarkForDeletion(index int) {
	if index < 0 || index >= len(v.entries) {
		return
	}
	v.entries[index].MarkedForDeletion = true
	v.dirty = true
}

// Render serializes the bundle to its wire form, recomputing the
// IS_LAST_BLOCK flag so it lands on exactly the last non-deleted
// canonical block. The result is cached: calling Render again without an
// intervening mutation returns the same buffer without re-serializing.
func (v *View) Render() ([]byte, error) {
	if !v.dirty && v.front != nil {
		return v.front, nil
	}

	live := make([]*blockEntry, 0, len(v.entries))
	for _, e := range v.entries {
		if !e.MarkedForDeletion {
			live = append(live, e)
		}
	}
	if len(live) == 0 {
		return nil, malformed("view: a bundle must carry at least one canonical block")
	}

	back := v.back[:0]
	back = v.Primary.Serialize(back)

	for i, e := range live {
		flags := e.Block.Flags &^ BlockIsLastBlock
		if i == len(live)-1 {
			flags |= BlockIsLastBlock
		}

		if e.Dirty || e.rendered == nil {
			c := Canonical{Flags: flags, Value: e.Block.Value}
			e.flagsOffset = 1 // block-type byte, then the one-byte flags SDNV
			e.rendered = c.Serialize(e.rendered[:0])
		} else if e.Block.Flags != flags {
			// Only IS_LAST_BLOCK moved. Every BlockControlFlags bit fits
			// in 7 bits, so the flags SDNV is always exactly one byte;
			// patch it in place instead of re-serializing type-specific
			// data that has not changed.
			e.rendered[e.flagsOffset] = byte(flags)
		}
		e.Block.Flags = flags
		e.Dirty = false

		back = append(back, e.rendered...)
	}

	v.back, v.front = v.front, back
	v.dirty = false
	return v.front, nil
}

// Load decodes a complete bundle from data: a primary block followed by
// canonical blocks up to and including the one carrying IS_LAST_BLOCK.
// When the primary's IsAdminRecord flag is set, the sole payload block's
// Record field is populated by decoding its Data as an AdminRecord,
// a detail deserializeBlockValue itself has no access to the primary's
// flags to perform.
func Load(data []byte) (*View, error) {
	primary, n, err := DeserializePrimary(data)
	if err != nil {
		return nil, err
	}
	data = data[n:]

	v := &View{Primary: primary}
	sawLast := false
	for len(data) > 0 {
		if sawLast {
			return nil, malformed("view: data follows the block marked IS_LAST_BLOCK")
		}
		c, consumed, err := DeserializeCanonical(data)
		if err != nil {
			return nil, err
		}
		data = data[consumed:]

		if payload, ok := c.Value.(*Payload); ok && primary.Flags.Has(IsAdminRecord) {
			rec, err := DeserializeAdminRecord(payload.Data)
			if err != nil {
				return nil, err
			}
			payload.Record = rec
		}

		v.entries = append(v.entries, &blockEntry{Block: c})
		if c.Flags.Has(BlockIsLastBlock) {
			sawLast = true
		}
	}
	if !sawLast {
		return nil, malformed("view: no canonical block carries IS_LAST_BLOCK")
	}

	v.front, err = v.Render()
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Payload returns the view's sole payload block, if any.
func (v *View) Payload() (*Payload, bool) {
	c, _, ok := v.BlockByType(BlockTypePayload)
	if !ok {
		return nil, false
	}
	p, ok := c.Value.(*Payload)
	return p, ok
}
