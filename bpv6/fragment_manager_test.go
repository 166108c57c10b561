package bpv6

import (
	"bytes"
	"testing"
)

func TestFragmentManagerAssemblesOnLastFragment(t *testing.T) {
	v := buildLargeView(1000)
	frags, err := Fragment(v, 300)
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}

	fm := NewFragmentManager()
	for i, f := range frags[:len(frags)-1] {
		complete, assembled, err := fm.AddFragment(f)
		if err != nil {
			t.Fatalf("AddFragment %d: %v", i, err)
		}
		if complete {
			t.Fatalf("AddFragment %d: unexpectedly complete, got %v", i, assembled)
		}
	}
	if got := fm.Pending(); got != 1 {
		t.Fatalf("Pending() = %d, want 1", got)
	}

	complete, assembled, err := fm.AddFragment(frags[len(frags)-1])
	if err != nil {
		t.Fatalf("AddFragment (last): %v", err)
	}
	if !complete {
		t.Fatal("expected the final fragment to complete the bundle")
	}
	original, _ := v.Payload()
	reassembled, _ := assembled.Payload()
	if !bytes.Equal(original.Data, reassembled.Data) {
		t.Error("reassembled payload does not match original")
	}
	if fm.Pending() != 0 {
		t.Error("expected fragments to be dropped once assembled")
	}
}

func TestFragmentManagerPassesThroughNonFragments(t *testing.T) {
	v := buildLargeView(10)
	fm := NewFragmentManager()
	complete, assembled, err := fm.AddFragment(v)
	if err != nil {
		t.Fatalf("AddFragment: %v", err)
	}
	if !complete || assembled != v {
		t.Fatal("expected a non-fragment bundle to pass through unchanged")
	}
}

func TestFragmentManagerDrop(t *testing.T) {
	v := buildLargeView(1000)
	frags, err := Fragment(v, 300)
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}

	fm := NewFragmentManager()
	if _, _, err := fm.AddFragment(frags[0]); err != nil {
		t.Fatalf("AddFragment: %v", err)
	}
	if !fm.Drop(v.Primary.Source, v.Primary.Creation) {
		t.Fatal("expected Drop to report held fragments")
	}
	if fm.Pending() != 0 {
		t.Error("expected fragments to be gone after Drop")
	}
	if fm.Drop(v.Primary.Source, v.Primary.Creation) {
		t.Error("expected a second Drop to report nothing held")
	}
}
