package sim

import "testing"

func TestPumpStateTruthTable(t *testing.T) {
	tests := []struct {
		contact ContactPolarity
		coilOn  bool
		want    bool
	}{
		{ContactNC, false, true},
		{ContactNC, true, false},
		{ContactNO, true, true},
		{ContactNO, false, false},
	}

	for _, tt := range tests {
		got := PumpState(tt.coilOn, tt.contact)
		if got != tt.want {
			t.Errorf("PumpState(coil=%v, %s) = %v, want %v", tt.coilOn, tt.contact, got, tt.want)
		}
	}
}

func TestContactPolarityValid(t *testing.T) {
	if !ContactNC.Valid() || !ContactNO.Valid() {
		t.Error("NC and NO should be valid")
	}
	if ContactPolarity("NC ").Valid() {
		t.Error("unknown polarity should be invalid")
	}
	if ContactPolarity("").Valid() {
		t.Error("empty polarity should be invalid")
	}
}

func TestPumpEffectValid(t *testing.T) {
	if !EffectFill.Valid() || !EffectDrain.Valid() {
		t.Error("FILL and DRAIN should be valid")
	}
	if PumpEffect("EMPTY").Valid() {
		t.Error("unknown effect should be invalid")
	}
}
