package core

import (
	"errors"
	"testing"
	"time"
)

func TestMonthKeyParse(t *testing.T) {
	cases := []struct {
		key   MonthKey
		year  int
		month time.Month
		ok    bool
	}{
		{"Janeiro de 2026", 2026, time.January, true},
		{"Março de 2026", 2026, time.March, true},
		{"Dezembro de 1999", 1999, time.December, true},
		{"March de 2026", 0, 0, false},
		{"Março 2026", 0, 0, false},
		{"Março de vinte", 0, 0, false},
		{"Março de 26", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		year, month, err := tc.key.Parse()
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", tc.key, err)
			}
			if year != tc.year || month != tc.month {
				t.Fatalf("%q: got %d/%d, want %d/%d", tc.key, year, month, tc.year, tc.month)
			}
		} else if !errors.Is(err, ErrInvalidMonthKey) {
			t.Fatalf("%q: expected ErrInvalidMonthKey, got %v", tc.key, err)
		}
	}
}

func TestNewMonthKeyRoundTrip(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		key := NewMonthKey(2026, m)
		year, month, err := key.Parse()
		if err != nil {
			t.Fatalf("%q: %v", key, err)
		}
		if year != 2026 || month != m {
			t.Fatalf("%q: got %d/%d", key, year, month)
		}
	}
}

func TestDBDateString(t *testing.T) {
	cases := []struct {
		key  MonthKey
		day  int
		want string
		ok   bool
	}{
		{"Janeiro de 2026", 15, "2026-01-15", true},
		{"Março de 2026", 1, "2026-03-01", true},
		{"Dezembro de 2025", 31, "2025-12-31", true},
		{"Fevereiro de 2026", 5, "2026-02-05", true},
		// days past month end normalize forward, like the client's
		// date constructor
		{"Fevereiro de 2026", 31, "2026-03-03", true},
		{"Janeiro de 2026", 0, "", false},
		{"Janeiro de 2026", 32, "", false},
		{"Janaury de 2026", 15, "", false},
	}
	for _, tc := range cases {
		got, err := DBDateString(tc.key, tc.day)
		if tc.ok {
			if err != nil {
				t.Fatalf("(%q,%d): unexpected error %v", tc.key, tc.day, err)
			}
			if got != tc.want {
				t.Fatalf("(%q,%d): got %q, want %q", tc.key, tc.day, got, tc.want)
			}
		} else if err == nil {
			t.Fatalf("(%q,%d): expected error", tc.key, tc.day)
		}
	}
}

// Date fidelity: a stored date parses back to exactly the (year, month, day)
// the user selected, regardless of the host timezone.
func TestDBDateStringFidelity(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC-11", -11*3600),
		time.FixedZone("UTC+13", 13*3600),
	}
	orig := time.Local
	defer func() { time.Local = orig }()

	for _, zone := range zones {
		time.Local = zone
		for _, day := range []int{1, 15, 28} {
			key := NewMonthKey(2026, time.February)
			s, err := DBDateString(key, day)
			if err != nil {
				t.Fatalf("zone %v day %d: %v", zone, day, err)
			}
			parsed, err := ParseCivilDate(s)
			if err != nil {
				t.Fatalf("zone %v: %v", zone, err)
			}
			if parsed.Year() != 2026 || parsed.Month() != time.February || parsed.Day() != day {
				t.Fatalf("zone %v: got %v, want 2026-02-%02d", zone, parsed, day)
			}
		}
	}
}

func TestSortMonthKeys(t *testing.T) {
	keys := []MonthKey{
		"Março de 2026",
		"Janeiro de 2026",
		"Dezembro de 2025",
		"Fevereiro de 2026",
	}
	SortMonthKeys(keys)
	want := []MonthKey{
		"Dezembro de 2025",
		"Janeiro de 2026",
		"Fevereiro de 2026",
		"Março de 2026",
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestFormatDisplayDate(t *testing.T) {
	if got := FormatDisplayDate("2026-03-05"); got != "05/03/2026" {
		t.Fatalf("got %q", got)
	}
	// unparseable input passes through untouched
	if got := FormatDisplayDate("not-a-date"); got != "not-a-date" {
		t.Fatalf("got %q", got)
	}
}

func TestTodayInBrazilIsMidnight(t *testing.T) {
	today := TodayInBrazil()
	if today.Hour() != 0 || today.Minute() != 0 || today.Second() != 0 {
		t.Fatalf("expected midnight civil date, got %v", today)
	}
	if today.Location() != time.UTC {
		t.Fatalf("expected UTC civil date, got %v", today.Location())
	}
}
