package sdk

import "testing"

func TestCompareReleases(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"3.0.4", "3.0.5", -1},
		{"3.1.0", "3.0.5", 1},
		{"2.2.2", "2.2.2", 0},
		{"3.0.1", "3.0.1u2", 0},
		{"3.0.10", "3.0.9", 1},
		{"3.0.01", "3.0.1", 0},
		{"3.1", "3.1.0_b11", 0},
		{"", "", 0},
		{"1", "", 1},
	}
	for _, tt := range tests {
		if got := compareReleases(tt.a, tt.b); got != tt.want {
			t.Errorf("compareReleases(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
		ok   bool
	}{
		{"2.1.1", V211, true},
		{"2.2.2", V222, true},
		{"3.0.1", V301, true},
		{"3.0.1u2", V301, true},
		{"v3.0.5", V305, true},
		{"3.1.0", V310, true},
		{"3.0.5u", 0, false},
		{"3.0.6", 0, false},
		{"/opt/jc310", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseVersion(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseVersion(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestClosest(t *testing.T) {
	tests := []struct {
		in   string
		want Version
		ok   bool
	}{
		{"3.0.5u3", V305, true},
		{"3.0.4_b22", V304, true},
		{"3.1.0", V310, true},
		{"3.0.3", V301, true},
		{"4.0.0", 0, false},
	}
	for _, tt := range tests {
		got, ok := Closest(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Closest(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVersionPredicates(t *testing.T) {
	if V222.IsV3() || !V301.IsV3() {
		t.Error("IsV3 boundary is 3.0.1")
	}
	if !V305.IsOneOf(V304, V305) || V310.IsOneOf(V304, V305) {
		t.Error("IsOneOf mismatch")
	}
	if got := JavaVersion(V305); got != "1.6" {
		t.Errorf("JavaVersion(3.0.5) = %q, want 1.6", got)
	}
	if got := Version(0).String(); got != "Version(0)" {
		t.Errorf("String() of invalid = %q", got)
	}
}
