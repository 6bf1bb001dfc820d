package domain

import "strconv"

// SeedListings returns a fresh copy of the fixed catalog used to initialise an
// empty store. IDs are left empty; each store assigns its own.
func SeedListings() []Listing {
	return []Listing{
		{Title: "Apartment in Kuala Lumpur", City: "Kuala Lumpur", Price: 67, Rating: 4.91, Image: "/images/kl1.jpg", MaxGuests: 4},
		{Title: "Place to stay in Cheras", City: "Kuala Lumpur", Price: 43, Rating: 4.94, Image: "/images/kl2.jpg", MaxGuests: 2},
		{Title: "Condo in PULAPOL", City: "Kuala Lumpur", Price: 75, Rating: 4.92, Image: "/images/kl3.jpg", MaxGuests: 3},
		{Title: "Apartment in Bangkok", City: "Bangkok", Price: 61, Rating: 4.8, Image: "/images/bkk1.jpg", MaxGuests: 3},
		{Title: "Room in Phra Nakhon", City: "Bangkok", Price: 37, Rating: 5.0, Image: "/images/bkk2.jpg", MaxGuests: 1},
		{Title: "Room in Dallas", City: "Dallas", Price: 40, Rating: 4.96, Image: "/images/dallas1.jpg", MaxGuests: 1},
		{Title: "Room in Melbourne", City: "Melbourne", Price: 91, Rating: 4.93, Image: "/images/mel1.jpg", MaxGuests: 2},
		{Title: "Room in Southbank", City: "Melbourne", Price: 141, Rating: 4.98, Image: "/images/mel2.jpg", MaxGuests: 3},
	}
}

// MemorySeedListings is the seed catalog with the literal IDs m1..m8 used by the
// in-memory fallback.
func MemorySeedListings() []Listing {
	ls := SeedListings()
	for i := range ls {
		ls[i].ID = "m" + strconv.Itoa(i+1)
		ls[i].Bookings = []Booking{}
	}
	return ls
}
