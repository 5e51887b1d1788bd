package command

import "testing"

// TestParamCodecRoundTrip is spec.md §8 property 2: for every def and every
// v in [min, max], read(write(buffer, v, def), def) == v. That bits outside
// the parameter's span are left untouched is checked by
// TestParamCodecPreservesSurroundingBits.
func TestParamCodecRoundTrip(t *testing.T) {
	def := &ParameterDefinition{Name: "p", Offset: 1, Shift: 3, Bits: 10, Add: -5}

	for v := def.Minimum(); v <= def.Maximum(); v++ {
		buf := make([]byte, 4)
		// Poison the buffer so the write must clear the span's old bits and
		// the read must mask out the surrounding ones.
		for i := range buf {
			buf[i] = 0xFF
		}
		written, err := WriteParamValue(buf, def, 0, v)
		if err != nil {
			t.Fatalf("write(%d): %v", v, err)
		}
		got, err := ReadParamValue(written, def, 0)
		if err != nil {
			t.Fatalf("read after write(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("roundtrip mismatch: wrote %d, read back %d", v, got)
		}
	}
}

func TestParamCodecPreservesSurroundingBits(t *testing.T) {
	def := &ParameterDefinition{Name: "p", Offset: 0, Shift: 2, Bits: 3, Add: 0}
	buf := []byte{0b1110_0011}
	out, err := WriteParamValue(buf, def, 0, 0b101)
	if err != nil {
		t.Fatal(err)
	}
	// Bits 0-1 and 5-7 must be untouched; bits 2-4 become 101.
	if out[0]&0b1110_0011 != 0b1110_0011 {
		t.Fatalf("surrounding bits were modified: got %08b", out[0])
	}
}

func TestParamCodecOutOfRange(t *testing.T) {
	def := &ParameterDefinition{Name: "p", Bits: 4, Add: 0}
	if _, err := WriteParamValue(make([]byte, 1), def, 0, 16); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}
