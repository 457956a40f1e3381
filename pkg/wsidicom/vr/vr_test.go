package vr

import "testing"

func TestKnownShortVRsAreShort(t *testing.T) {
	for _, v := range []VR{AE, AS, AT, CS, DA, DS, DT, FL, FD, IS, LO, LT, PN, SH, SL, SS, ST, TM, UI, UL, US} {
		if v.IsLongLength() {
			t.Errorf("%s: want short length, got long", v)
		}
	}
}

func TestKnownLongVRsAreLong(t *testing.T) {
	for _, v := range []VR{OB, OD, OF, OL, OW, SQ, UC, UN, UR, UT} {
		if !v.IsLongLength() {
			t.Errorf("%s: want long length, got short", v)
		}
	}
}

// TestUnknownVRDefaultsToLong is the forward-compatibility rule: a VR code
// this package has never heard of must still decode, as a member of the
// 32-bit-length family, not the 16-bit one.
func TestUnknownVRDefaultsToLong(t *testing.T) {
	unknown := VR("ZZ")
	if !unknown.IsLongLength() {
		t.Errorf("unrecognized VR %s: want long length by default, got short", unknown)
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"UI": true,
		"ZZ": true,
		"u":  false,
		"UII": false,
		"00": false,
		"":   false,
	}
	for s, want := range cases {
		if got := Valid(s); got != want {
			t.Errorf("Valid(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestIsSequence(t *testing.T) {
	if !SQ.IsSequence() {
		t.Error("SQ should be a sequence VR")
	}
	if OB.IsSequence() {
		t.Error("OB should not be a sequence VR")
	}
}

func TestValueSizeFixedAndVariable(t *testing.T) {
	if US.ValueSize() != 2 {
		t.Errorf("US.ValueSize() = %d, want 2", US.ValueSize())
	}
	if UL.ValueSize() != 4 {
		t.Errorf("UL.ValueSize() = %d, want 4", UL.ValueSize())
	}
	if LO.ValueSize() != 0 {
		t.Errorf("LO.ValueSize() = %d, want 0 (variable)", LO.ValueSize())
	}
}
