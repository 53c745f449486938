package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12", 1200, true},
		{"0,5", 50, true},
		{"12.345", 1234, true},
		{"12.346", 1235, true},
		{"", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"abc", 0, false},
		{"0", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("%q: got %d, want %d", tc.in, got, tc.want)
			}
		} else if err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}

func TestPerInstallment(t *testing.T) {
	cases := []struct {
		total int64
		n     int
		want  int64
	}{
		{120000, 12, 10000},
		{10000, 3, 3333},  // 33.333... rounds down
		{10001, 3, 3334},  // 33.336... rounds up
		{199, 2, 100},     // 99.5 centavos rounds half-up
	}
	for _, tc := range cases {
		got, err := PerInstallment(Money{Cents: tc.total}, tc.n)
		if err != nil {
			t.Fatalf("(%d/%d): %v", tc.total, tc.n, err)
		}
		if got.Cents != tc.want {
			t.Fatalf("(%d/%d): got %d, want %d", tc.total, tc.n, got.Cents, tc.want)
		}
	}
	if _, err := PerInstallment(Money{Cents: 100}, 0); err == nil {
		t.Fatal("expected error for zero installments")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{}).Validate(); err == nil {
		t.Fatal("expected error for zero amount")
	}
	if err := (Money{Cents: -10}).Validate(); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestCentsFromReais(t *testing.T) {
	if got := CentsFromReais(12.34); got.Cents != 1234 {
		t.Fatalf("got %d", got.Cents)
	}
	if got := CentsFromReais(-1); got.Cents != 0 {
		t.Fatalf("got %d", got.Cents)
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 123456}).String(); got != "R$ 1234,56" {
		t.Fatalf("got %q", got)
	}
	if got := (Money{Cents: 105}).String(); got != "R$ 1,05" {
		t.Fatalf("got %q", got)
	}
}
