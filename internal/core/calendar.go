// Package core holds the domain model of the tracker: debts partitioned by
// month, installment purchases, subscriptions and payment cards, plus the
// pure projections (status engines, filters, summaries) derived from them.
//
// This file implements the calendar utilities. Dates in this domain are
// always civil calendar days (a person's due date), never instants. Every
// construction and comparison deliberately avoids the local timezone so the
// stored day-of-month is exactly the day the user selected.
package core

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CivilDateLayout is the storage format for all calendar dates.
const CivilDateLayout = "2006-01-02"

// brazilZone is the civil calendar used for every "today" anchor.
// America/Sao_Paulo no longer observes DST, so a fixed offset keeps the
// binary independent of host tzdata.
var brazilZone = time.FixedZone("America/Sao_Paulo", -3*60*60)

// monthNames are the twelve fixed Portuguese month names used in MonthKeys.
var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var (
	ErrInvalidMonthKey = errors.New("invalid month key")
	ErrInvalidDueDay   = errors.New("due day must be between 1 and 31")
	ErrInvalidDate     = errors.New("invalid date")
)

// MonthKey identifies a calendar month+year pair in the display form
// "Março de 2026". It is the partition key for debts. Ordering is by
// (year, month index), never lexicographic.
type MonthKey string

// NewMonthKey builds the canonical key for a year and month.
func NewMonthKey(year int, month time.Month) MonthKey {
	return MonthKey(fmt.Sprintf("%s de %d", monthNames[int(month)-1], year))
}

// Parse splits the key into its year and month. It returns
// ErrInvalidMonthKey when the month name is unknown or the year is not a
// 4-digit number.
func (k MonthKey) Parse() (year int, month time.Month, err error) {
	name, yearStr, ok := strings.Cut(string(k), " de ")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonthKey, k)
	}
	idx := -1
	for i, m := range monthNames {
		if m == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, 0, fmt.Errorf("%w: unknown month %q", ErrInvalidMonthKey, name)
	}
	year, convErr := strconv.Atoi(yearStr)
	if convErr != nil || len(yearStr) != 4 {
		return 0, 0, fmt.Errorf("%w: bad year %q", ErrInvalidMonthKey, yearStr)
	}
	return year, time.Month(idx + 1), nil
}

// Index returns a sortable ordinal (year*12 + month index) for chronological
// ordering of keys.
func (k MonthKey) Index() (int, error) {
	year, month, err := k.Parse()
	if err != nil {
		return 0, err
	}
	return year*12 + int(month) - 1, nil
}

// SortMonthKeys orders keys chronologically in place. Malformed keys sort
// first so they surface at the top of month lists instead of hiding.
func SortMonthKeys(keys []MonthKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := keys[i].Index()
		if errA != nil {
			a = -1
		}
		b, errB := keys[j].Index()
		if errB != nil {
			b = -1
		}
		return a < b
	})
}

// DBDateString converts a (month key, day-of-month) pair into the canonical
// YYYY-MM-DD string stored in the debts table. The date is constructed as a
// UTC civil date so no local-timezone offset can shift the day backwards.
// Days past the end of the month normalize forward (Feb 31 → Mar 3), same as
// the date constructor the client uses.
func DBDateString(key MonthKey, day int) (string, error) {
	if day < 1 || day > 31 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidDueDay, day)
	}
	year, month, err := key.Parse()
	if err != nil {
		return "", err
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(CivilDateLayout), nil
}

// NowInBrazil returns the current instant projected into the Brasília civil
// calendar. All due-today/overdue judgments anchor on this, not the host
// clock's zone.
func NowInBrazil() time.Time {
	return time.Now().In(brazilZone)
}

// TodayInBrazil returns today's civil date in the Brasília calendar,
// normalized to midnight UTC so it compares directly against parsed
// storage dates.
func TodayInBrazil() time.Time {
	now := NowInBrazil()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseCivilDate parses a stored YYYY-MM-DD string as a timezone-naive
// calendar date (midnight UTC).
func ParseCivilDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(CivilDateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDisplayDate renders a stored YYYY-MM-DD string as DD/MM/YYYY.
// The input is parsed as a naive calendar date, so the displayed day always
// matches the stored day. Unparseable input is returned untouched.
func FormatDisplayDate(s string) string {
	t, err := ParseCivilDate(s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
