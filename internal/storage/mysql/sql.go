package mysql

import "strings"

const createMigrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  name       VARCHAR(255) NOT NULL PRIMARY KEY,
  applied_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const countListingsSQL = `SELECT COUNT(*) FROM listings`

const insertListingsPrefix = "INSERT INTO listings\n  (id, title, city, city_folded, price, rating, image, max_guests)\nVALUES "

const insertBookingsPrefix = "INSERT INTO listing_bookings\n  (listing_id, check_in, check_out)\nVALUES "

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const selectListingsSQL = `
SELECT
  l.id,
  l.title,
  l.city,
  l.price,
  l.rating,
  l.image,
  l.max_guests
FROM listings l`

// Location is matched as literal text anywhere in the city. Both sides are folded
// in Go (domain.Fold); city_folded is utf8mb4_bin so the column collation cannot
// fold accents or case a second time.
const whereLocationSQL = `LOCATE(?, l.city_folded) > 0`

const whereMinGuestsSQL = `l.max_guests >= ?`

// Excludes listings with a booking overlapping [checkIn, checkOut); args: checkOut, checkIn.
const whereAvailableSQL = `NOT EXISTS (
  SELECT 1 FROM listing_bookings b
  WHERE b.listing_id = l.id
    AND ? > b.check_in
    AND ? < b.check_out
)`

const orderListingsSQL = `
ORDER BY l.seq`

const selectBookingsPrefix = `
SELECT listing_id, check_in, check_out
FROM listing_bookings
WHERE listing_id IN (`

const selectBookingsSuffix = `)
ORDER BY listing_id, check_in, id`

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
