package app

import "sync/atomic"

// Status is the shared store-reachability flag. Readers call StoreAvailable on every
// request; only the Supervisor writes it.
type Status struct{ up atomic.Bool }

func (s *Status) StoreAvailable() bool { return s.up.Load() }

// Source names the data source a search would read right now.
func (s *Status) Source() string {
	if s.StoreAvailable() {
		return SourceMySQL
	}
	return SourceMemory
}

// set stores up and reports whether the value changed.
func (s *Status) set(up bool) bool { return s.up.Swap(up) != up }

const (
	SourceMySQL  = "mysql"
	SourceMemory = "memory"
	SourceCache  = "cache"
)
