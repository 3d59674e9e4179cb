package phone

import (
	"errors"
	"fmt"
	"testing"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer("91", 10)
	cases := []struct {
		in   string
		want string
	}{
		{in: "9876543210", want: "+919876543210"},
		{in: "98765 43210", want: "+919876543210"},
		{in: "(987) 654-3210", want: "+919876543210"},
		{in: "09876543210", want: "+919876543210"},
		{in: "919876543210", want: "+919876543210"},
		{in: "+91 98765-43210", want: "+919876543210"},
		{in: "9123456789", want: "+919123456789"},
		{in: "0044 20 7946 0958", want: "+442079460958"},
	}
	for _, tc := range cases {
		got, err := n.Normalize(tc.in)
		if err != nil {
			t.Fatalf("Normalize(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	n := NewNormalizer("+91", 10)
	for _, in := range []string{"", "   ", "abc", "+-()", "000"} {
		if _, err := n.Normalize(in); !errors.Is(err, ErrEmptyNumber) {
			t.Fatalf("Normalize(%q) expected ErrEmptyNumber, got %v", in, err)
		}
	}
}

func TestNormalize_LocalNumbersGetPrefixExactlyOnce(t *testing.T) {
	n := NewNormalizer("91", 10)
	for i := 0; i < 200; i++ {
		local := fmt.Sprintf("%d%09d", 6+i%4, i*7919)
		got, err := n.Normalize(local)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "+91"+local {
			t.Fatalf("Normalize(%q) = %q", local, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := NewNormalizer("91", 10)
	for _, in := range []string{"9876543210", "+919876543210", "0044 20 7946 0958", "15551234567"} {
		once, err := n.Normalize(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		twice, err := n.Normalize(once)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if once != twice {
			t.Fatalf("not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}
