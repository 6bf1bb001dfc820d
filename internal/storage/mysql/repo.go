package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"staysearch/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open prepares a pool for dsn. It does not dial; use Ping for that.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func (r *Repo) Ping(ctx context.Context) error {
	return wrapErr("ping", r.db.PingContext(ctx))
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countListingsSQL).Scan(&n); err != nil {
		return 0, wrapErr("count listings", err)
	}
	return n, nil
}

// InsertMany writes ls and their bookings in one transaction. IDs are assigned here.
func (r *Repo) InsertMany(ctx context.Context, ls []domain.Listing) error {
	if len(ls) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	values := make([]string, 0, len(ls))
	args := make([]any, 0, len(ls)*8) // 8 params per listing row
	var bValues []string
	var bArgs []any
	for _, l := range ls {
		id := uuid.NewString()
		values = append(values, "(?,?,?,?,?,?,?,?)")
		args = append(args, id, l.Title, l.City, domain.Fold(l.City), l.Price, l.Rating, l.Image, l.MaxGuests)
		for _, b := range l.Bookings {
			bValues = append(bValues, "(?,?,?)")
			bArgs = append(bArgs, id, b.CheckIn.UTC(), b.CheckOut.UTC())
		}
	}
	if _, err := tx.ExecContext(ctx, insertListingsPrefix+strings.Join(values, ","), args...); err != nil {
		return wrapErr("insert listings", err)
	}
	if len(bValues) > 0 {
		if _, err := tx.ExecContext(ctx, insertBookingsPrefix+strings.Join(bValues, ","), bArgs...); err != nil {
			return wrapErr("insert bookings", err)
		}
	}
	return wrapErr("commit", tx.Commit())
}

// Search compiles f into SQL. It must select exactly what domain.ListingFilter.Matches keeps.
func (r *Repo) Search(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	var where []string
	var args []any
	if loc := f.LocationText(); loc != "" {
		where = append(where, whereLocationSQL)
		args = append(args, domain.Fold(loc))
	}
	if f.MinGuests != nil {
		where = append(where, whereMinGuestsSQL)
		args = append(args, *f.MinGuests)
	}
	if f.Stay != nil {
		where = append(where, whereAvailableSQL)
		args = append(args, f.Stay.CheckOut.UTC(), f.Stay.CheckIn.UTC())
	}

	q := selectListingsSQL
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, "\n  AND ")
	}
	q += orderListingsSQL

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapErr("search listings", err)
	}
	defer rows.Close()

	out := []domain.Listing{}
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(&l.ID, &l.Title, &l.City, &l.Price, &l.Rating, &l.Image, &l.MaxGuests); err != nil {
			return nil, wrapErr("scan listing", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate listings", err)
	}
	if err := r.attachBookings(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) attachBookings(ctx context.Context, ls []domain.Listing) error {
	if len(ls) == 0 {
		return nil
	}
	idx := make(map[string]int, len(ls))
	args := make([]any, 0, len(ls))
	for i, l := range ls {
		idx[l.ID] = i
		args = append(args, l.ID)
		ls[i].Bookings = []domain.Booking{}
	}
	rows, err := r.db.QueryContext(ctx, selectBookingsPrefix+placeholders(len(args))+selectBookingsSuffix, args...)
	if err != nil {
		return wrapErr("load bookings", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var b domain.Booking
		if err := rows.Scan(&id, &b.CheckIn, &b.CheckOut); err != nil {
			return wrapErr("scan booking", err)
		}
		if i, ok := idx[id]; ok {
			ls[i].Bookings = append(ls[i].Bookings, b)
		}
	}
	return wrapErr("iterate bookings", rows.Err())
}

// wrapErr tags connectivity failures with domain.ErrStoreUnavailable so callers can
// fall back instead of failing the request.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsConnectivity(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsConnectivity reports whether err means the server could not be reached or
// the connection broke, as opposed to the statement failing.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, gomysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
