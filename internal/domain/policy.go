package domain

import "time"

// RetrievalPolicy fixes when and how often a deliveryman may pick up packages.
// All calendar math happens in Location.
type RetrievalPolicy struct {
	Location   *time.Location
	OpenHour   int // first hour a retrieval is accepted, inclusive
	CloseHour  int // exclusive
	DailyLimit int
}

// DefaultRetrievalPolicy is 08:00-18:00 UTC with 5 pickups per day.
func DefaultRetrievalPolicy() RetrievalPolicy {
	return RetrievalPolicy{
		Location:   time.UTC,
		OpenHour:   8,
		CloseHour:  18,
		DailyLimit: 5,
	}
}

func (p RetrievalPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Day returns the half-open calendar day [start, next) containing now.
func (p RetrievalPolicy) Day(now time.Time) (time.Time, time.Time) {
	t := now.In(p.location())
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.location())
	return start, start.AddDate(0, 0, 1)
}

// InWindow reports whether now falls inside opening hours.
func (p RetrievalPolicy) InWindow(now time.Time) bool {
	h := now.In(p.location()).Hour()
	return h >= p.OpenHour && h < p.CloseHour
}

// LimitReached reports whether another retrieval would exceed the daily cap.
func (p RetrievalPolicy) LimitReached(retrievedToday int) bool {
	return retrievedToday >= p.DailyLimit
}
