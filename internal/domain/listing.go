package domain

import (
	"strconv"
	"strings"
	"time"
)

type Listing struct {
	ID        string
	Title     string
	City      string
	Price     float64
	Rating    float64 // 0..5
	Image     string  // path under /images or absolute URL
	MaxGuests int
	Bookings  []Booking
}

// Booking is an existing reservation, half-open [CheckIn, CheckOut).
type Booking struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// DateRange is a requested stay, half-open [CheckIn, CheckOut).
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Overlaps reports whether the stay collides with b. Touching dates do not collide.
func (d DateRange) Overlaps(b Booking) bool {
	return d.CheckOut.After(b.CheckIn) && d.CheckIn.Before(b.CheckOut)
}

// ListingFilter is the search criteria. A nil field imposes no constraint.
type ListingFilter struct {
	Location  *string
	MinGuests *int
	Stay      *DateRange
}

// Fold is the case folding location matching uses on both sides of the comparison.
// Stores that match in their own query language persist Fold(city) and compare bytes.
func Fold(s string) string { return strings.ToLower(s) }

// LocationText returns the location constraint, or "" when there is none.
// An empty location string is the same as no location.
func (f ListingFilter) LocationText() string {
	if f.Location == nil {
		return ""
	}
	return strings.TrimSpace(*f.Location)
}

// Matches is the single definition of the search predicate. Storage adapters that
// push filtering into their own query language must agree with it.
func (f ListingFilter) Matches(l Listing) bool {
	if loc := f.LocationText(); loc != "" {
		if !strings.Contains(Fold(l.City), Fold(loc)) {
			return false
		}
	}
	if f.MinGuests != nil && l.MaxGuests < *f.MinGuests {
		return false
	}
	if f.Stay != nil {
		for _, b := range l.Bookings {
			if f.Stay.Overlaps(b) {
				return false
			}
		}
	}
	return true
}

// Apply returns the listings that match f, preserving input order.
func (f ListingFilter) Apply(in []Listing) []Listing {
	out := make([]Listing, 0, len(in))
	for _, l := range in {
		if f.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}

// CacheKeyPrefix starts every key produced by ListingFilter.CacheKey.
const CacheKeyPrefix = "listings:"

// CacheKey is a stable textual form of the filter used for result caching.
func (f ListingFilter) CacheKey() string {
	var b strings.Builder
	b.WriteString(CacheKeyPrefix)
	b.WriteString(strconv.Quote(Fold(f.LocationText())))
	b.WriteByte(':')
	if f.MinGuests != nil {
		b.WriteString(strconv.Itoa(*f.MinGuests))
	}
	b.WriteByte(':')
	if f.Stay != nil {
		b.WriteString(f.Stay.CheckIn.UTC().Format(time.RFC3339))
		b.WriteByte(':')
		b.WriteString(f.Stay.CheckOut.UTC().Format(time.RFC3339))
	} else {
		b.WriteByte(':')
	}
	return b.String()
}
