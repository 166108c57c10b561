package sdnv

import (
	"bytes"
	"math"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 127, 128, 129, 16383, 16384,
		1<<21 - 1, 1 << 21, 1<<35 + 7,
		math.MaxUint32, math.MaxUint64, math.MaxUint64 - 1,
	}

	for _, v := range values {
		enc := EncodeAlloc(v)
		if len(enc) != BytesRequired(v) {
			t.Errorf("v=%d: encoded length %d != BytesRequired %d", v, len(enc), BytesRequired(v))
		}

		dec, n, err := Decode(enc)
		if err != nil {
			t.Fatalf("v=%d: decode errored: %v", v, err)
		}
		if n != len(enc) {
			t.Errorf("v=%d: consumed %d, expected %d", v, n, len(enc))
		}
		if dec != v {
			t.Errorf("v=%d: decoded as %d", v, dec)
		}
	}
}

func TestEncodeKnownVectors(t *testing.T) {
	cases := []struct {
		v   uint64
		enc []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x81, 0x00}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x81, 0x80, 0x00}},
	}

	for _, c := range cases {
		got := EncodeAlloc(c.v)
		if !bytes.Equal(got, c.enc) {
			t.Errorf("encode(%d) = %x, want %x", c.v, got, c.enc)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, _, err := Decode([]byte{0x81, 0x80})
	if err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	_, _, err = Decode(nil)
	if err != ErrTruncated {
		t.Fatalf("expected ErrTruncated on empty input, got %v", err)
	}
}

func TestDecodeOverflow(t *testing.T) {
	// 10 continuation bytes followed by a terminator: 11 bytes total, too many.
	buf := bytes.Repeat([]byte{0xff}, 10)
	buf = append(buf, 0x7f)
	_, _, err := Decode(buf)
	if err != ErrOverflow {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestBytesRequired(t *testing.T) {
	cases := map[uint64]int{
		0:     1,
		1:     1,
		127:   1,
		128:   2,
		16383: 2,
		16384: 3,
	}
	for v, want := range cases {
		if got := BytesRequired(v); got != want {
			t.Errorf("BytesRequired(%d) = %d, want %d", v, got, want)
		}
	}
}
