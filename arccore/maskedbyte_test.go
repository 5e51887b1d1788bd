package arccore

import "testing"

// TestCommonBitsEquality checks the symmetric-but-not-transitive property
// called out in spec.md §8 property 5 and §9, using the literal bytes given
// there.
func TestCommonBitsEquality(t *testing.T) {
	a := MaskedByte{Value: 0b1010_0000, Mask: 0b1111_0000}
	b := MaskedByte{Value: 0b1010_1111, Mask: 0b1111_0000}
	c := MaskedByte{Value: 0b0000_1111, Mask: 0b0000_1111}

	if !a.Equal(b) {
		t.Fatalf("expected a.Equal(b)")
	}
	if !b.Equal(a) {
		t.Fatalf("equality must be symmetric: expected b.Equal(a)")
	}
	if !b.Equal(c) {
		t.Fatalf("expected b.Equal(c)")
	}
	if a.Equal(c) {
		t.Fatalf("equality must not be transitive: a must NOT equal c")
	}
}

func TestMaskedByteAccepts(t *testing.T) {
	mb := MaskedByte{Value: 0xA0, Mask: 0xF0}
	if !mb.Accepts(0xAB) {
		t.Errorf("expected 0xAB to be accepted (high nibble matches)")
	}
	if mb.Accepts(0xB0) {
		t.Errorf("expected 0xB0 to be rejected (high nibble differs)")
	}
}
