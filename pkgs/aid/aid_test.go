package aid

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0102030405", "0102030405"},
		{"01:02:03:04:05:06", "010203040506"},
		{"0x01 0x02 0x03 0x04 0x05", "0102030405"},
		{"0xA0:0x00:0x00:0x00:0x62", "A000000062"},
		{"a0 00\t00;00\n62 01", "A00000006201"},
		{"D2760000850101", "D2760000850101"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{"01020304", ErrLength},
		{"0102030405060708090A0B0C0D0E0F1011", ErrLength},
		{"010203040", ErrOddLength},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
		})
	}

	if _, err := Parse("zz0102030405"); err == nil {
		t.Fatal("Parse with non-hex characters should fail")
	}
}

func TestSameRID(t *testing.T) {
	pkg := AID{1, 2, 3, 4, 5, 6}
	if !SameRID(pkg, AID{1, 2, 3, 4, 5, 9, 9}) {
		t.Error("SameRID should match on first five bytes")
	}
	if SameRID(pkg, AID{1, 2, 3, 4, 6, 6}) {
		t.Error("SameRID should not match different RIDs")
	}
}

func TestAppend(t *testing.T) {
	pkg := AID{1, 2, 3, 4, 5, 6}
	got := pkg.Append(1)
	if got.String() != "01020304050601" {
		t.Errorf("Append = %s, want 01020304050601", got)
	}
	if len(pkg) != 6 {
		t.Errorf("Append modified receiver: %s", pkg)
	}
}

func TestConverterString(t *testing.T) {
	got := AID{0xA0, 0, 0, 0, 0x62}.ConverterString()
	if want := "0xA0:0x00:0x00:0x00:0x62"; got != want {
		t.Errorf("ConverterString = %q, want %q", got, want)
	}
}
