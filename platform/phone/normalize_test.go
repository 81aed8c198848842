package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"55 1234 5678", "+525512345678"},
		{"+525512345678", "+525512345678"},
		{"  +525512345678  ", "+525512345678"},
		{"", ""},
		{"not a number", "not a number"},
	}
	for _, tc := range tests {
		if got := NormalizeE164(tc.in); got != tc.want {
			t.Fatalf("NormalizeE164(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
