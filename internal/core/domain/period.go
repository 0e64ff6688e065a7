package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PeriodKey identifies one ISO 8601 week, the unit the tool plans around.
// Its string form, e.g. "2026-W08", doubles as the playlist name.
type PeriodKey struct {
	Year int
	Week int
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod(now time.Time) PeriodKey {
	y, w := now.ISOWeek()
	return PeriodKey{Year: y, Week: w}
}

// ParsePeriod parses labels of the form "2026-W08".
func ParsePeriod(s string) (PeriodKey, error) {
	parts := strings.SplitN(s, "-W", 2)
	if len(parts) != 2 {
		return PeriodKey{}, fmt.Errorf("domain: invalid period %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return PeriodKey{}, fmt.Errorf("domain: invalid period %q: %w", s, err)
	}
	week, err := strconv.Atoi(parts[1])
	if err != nil {
		return PeriodKey{}, fmt.Errorf("domain: invalid period %q: %w", s, err)
	}
	if year < 1 || week < 1 || week > 53 {
		return PeriodKey{}, fmt.Errorf("domain: period %q out of range", s)
	}
	return PeriodKey{Year: year, Week: week}, nil
}

// Previous returns the period immediately before k, crossing ISO year
// boundaries when needed.
func (k PeriodKey) Previous() PeriodKey {
	return CurrentPeriod(k.monday().AddDate(0, 0, -7))
}

// monday returns the first day of the week. January 4th always falls in
// ISO week 1, which anchors the arithmetic.
func (k PeriodKey) monday() time.Time {
	jan4 := time.Date(k.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)
	return week1Monday.AddDate(0, 0, (k.Week-1)*7)
}

// String renders the canonical "YYYY-Www" label.
func (k PeriodKey) String() string {
	return fmt.Sprintf("%d-W%02d", k.Year, k.Week)
}
