package core

import "time"

// Month is a calendar month keyed as "YYYY-MM". Keys are zero padded,
// so lexical order matches calendar order.
type Month string

const monthLayout = "2006-01"

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month(t.Format(monthLayout))
}

// ParseMonth parses a month key such as "2024-06".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return "", err
	}
	return MonthOf(t), nil
}

// Time returns the first instant of the month in UTC. An invalid
// month returns the zero time.
func (m Month) Time() time.Time {
	t, _ := time.Parse(monthLayout, string(m))
	return t
}

func (m Month) String() string {
	return string(m)
}

// MonthsBetween returns every month from first through last in
// calendar order, endpoints included. It returns nil when either
// month is invalid or last precedes first.
func MonthsBetween(first, last Month) []Month {
	start, errStart := time.Parse(monthLayout, string(first))
	end, errEnd := time.Parse(monthLayout, string(last))
	if errStart != nil || errEnd != nil || end.Before(start) {
		return nil
	}
	n := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
	months := make([]Month, 0, n)
	for t := start; !t.After(end); t = t.AddDate(0, 1, 0) {
		months = append(months, MonthOf(t))
	}
	return months
}
