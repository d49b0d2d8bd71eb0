package week

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewCalendarRejectsNonMonday(t *testing.T) {
	if _, err := NewCalendar(date(2025, 7, 22)); err == nil {
		t.Fatal("expected error for Tuesday anchor")
	}
	if _, err := NewCalendar(date(2025, 7, 21)); err != nil {
		t.Fatalf("unexpected error for Monday anchor: %v", err)
	}
}

func TestForDate(t *testing.T) {
	c := MustCalendar(date(2025, 7, 21))

	cases := []struct {
		d    time.Time
		want int
	}{
		{date(2025, 7, 21), 1},
		{date(2025, 7, 25), 1},
		{date(2025, 7, 27), 1}, // Sunday still belongs to week 1
		{date(2025, 7, 28), 2},
		{date(2025, 8, 4), 3},
		{date(2025, 9, 8), 8},
		{date(2025, 7, 20), 0},  // day before anchor
		{date(2025, 7, 14), 0},  // previous Monday
		{date(2025, 7, 13), -1}, // previous Sunday
	}
	for _, tc := range cases {
		if got := c.ForDate(tc.d); got != tc.want {
			t.Errorf("ForDate(%s) = %d, want %d", tc.d.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestForDateIgnoresTimeOfDayAndZone(t *testing.T) {
	c := MustCalendar(date(2025, 7, 21))
	loc := time.FixedZone("EAT", 3*3600)
	d := time.Date(2025, 7, 28, 23, 30, 0, 0, loc)
	if got := c.ForDate(d); got != 2 {
		t.Fatalf("ForDate with zoned timestamp = %d, want 2", got)
	}
}

func TestRange(t *testing.T) {
	c := MustCalendar(date(2025, 7, 21))
	start, end := c.Range(3)
	if !start.Equal(date(2025, 8, 4)) {
		t.Errorf("week 3 start = %s, want 2025-08-04", start.Format("2006-01-02"))
	}
	if !end.Equal(date(2025, 8, 8)) {
		t.Errorf("week 3 end = %s, want 2025-08-08", end.Format("2006-01-02"))
	}
}

func TestIsWorkday(t *testing.T) {
	if IsWorkday(date(2025, 7, 26)) {
		t.Error("Saturday reported as workday")
	}
	if IsWorkday(date(2025, 7, 27)) {
		t.Error("Sunday reported as workday")
	}
	if !IsWorkday(date(2025, 7, 25)) {
		t.Error("Friday not reported as workday")
	}
}

func TestDayName(t *testing.T) {
	if got := DayName(date(2025, 7, 23)); got != "Wednesday" {
		t.Fatalf("DayName = %q, want Wednesday", got)
	}
}
