package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// NewMySQL starts an isolated MySQL container and returns a pool connected to it.
// The test is skipped when no Docker daemon is reachable.
func NewMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("skipping MySQL integration tests: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("skipping MySQL integration tests: docker not reachable: %v", err)
	}
	pool.MaxWait = 2 * time.Minute

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=staysearch",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "staysearch")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Truncate empties the listing tables between subtests.
func Truncate(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()
	// FOREIGN_KEY_CHECKS is per session
	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	defer conn.Close()
	for _, q := range []string{
		`SET FOREIGN_KEY_CHECKS = 0`,
		`TRUNCATE TABLE listing_bookings`,
		`TRUNCATE TABLE listings`,
		`SET FOREIGN_KEY_CHECKS = 1`,
	} {
		if _, err := conn.ExecContext(ctx, q); err != nil {
			t.Fatalf("truncate: %v", err)
		}
	}
}
