package domain

import (
	"strings"
	"time"
)

// Query selects orders. Zero fields do not filter.
type Query struct {
	Status        Status
	CustomerEmail string
	From, To      time.Time
}

func (q Query) Match(o Order) bool {
	if q.Status != "" && o.Status != q.Status {
		return false
	}
	if q.CustomerEmail != "" && !strings.EqualFold(o.CustomerEmail, q.CustomerEmail) {
		return false
	}
	if !q.From.IsZero() && o.OrderDate.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !o.OrderDate.Before(q.To) {
		return false
	}
	return true
}

// Today returns the [start, end) range of the calendar day containing now.
func Today(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
