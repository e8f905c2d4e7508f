package helpers

import "testing"

func TestGenOTPCodeFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenOTPCode()
		if err != nil {
			t.Fatalf("GenOTPCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q has length %d, want 6", code, len(code))
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q contains non-digit %q", code, c)
			}
		}
	}
}

func TestOTPEqual(t *testing.T) {
	tests := []struct {
		stored, submitted string
		want              bool
	}{
		{"123456", "123456", true},
		{"123456", "123457", false},
		{"123456", "12345", false},
		{"123456", "", false},
		{"", "", true},
		{"000001", "000001", true},
	}
	for _, tc := range tests {
		if got := OTPEqual(tc.stored, tc.submitted); got != tc.want {
			t.Errorf("OTPEqual(%q, %q) = %v, want %v", tc.stored, tc.submitted, got, tc.want)
		}
	}
}
