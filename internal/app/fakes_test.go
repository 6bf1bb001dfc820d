package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	"staysearch/internal/domain"
)

// ---- fakes ----

// fakeRepo keeps listings in a slice and filters with the shared predicate.
type fakeRepo struct {
	mu         sync.Mutex
	rows       []domain.Listing
	pingErr    error
	migrateErr error
	countErr   error
	insertErr  error
	searchErr  error
	searches   int
	inserts    int
	nextID     int
}

func (f *fakeRepo) Migrate(ctx context.Context) error { return f.migrateErr }

func (f *fakeRepo) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeRepo) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.rows), nil
}

func (f *fakeRepo) InsertMany(ctx context.Context, ls []domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, l := range ls {
		f.nextID++
		l.ID = "db-" + strconv.Itoa(f.nextID)
		f.rows = append(f.rows, l)
	}
	return nil
}

func (f *fakeRepo) Search(ctx context.Context, flt domain.ListingFilter) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return flt.Apply(f.rows), nil
}

func (f *fakeRepo) setPingErr(err error) {
	f.mu.Lock()
	f.pingErr = err
	f.mu.Unlock()
}

func (f *fakeRepo) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches
}

// fakeCache round-trips through JSON like the Redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	err   error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *fakeCache) DelPrefix(ctx context.Context, prefix string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	n := 0
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
			n++
		}
	}
	return n, nil
}

func (c *fakeCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

var errDown = errors.Join(domain.ErrStoreUnavailable, errors.New("dial tcp: connection refused"))

func ptr[T any](v T) *T { return &v }

func titles(ls []domain.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Title)
	}
	return out
}
