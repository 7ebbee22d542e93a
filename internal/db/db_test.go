package db

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/unklstewy/orbit-globe/pkg/config"
)

// TestConnString tests connection string construction.
func TestConnString(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		Username: "orbits",
		Password: "secret",
		Database: "catalog",
		SSLMode:  "require",
	}

	got := ConnString(cfg)
	for _, want := range []string{
		"host=db.internal",
		"port=5433",
		"user=orbits",
		"password=secret",
		"dbname=catalog",
		"sslmode=require",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %q", want, got)
		}
	}
}

// TestConnectUnreachable tests that a failed ping surfaces as an error.
func TestConnectUnreachable(t *testing.T) {
	cfg := config.DefaultConfig().Database
	cfg.Host = "127.0.0.1"
	cfg.Port = 1 // nothing listens here

	db, err := Connect(cfg)
	if err == nil {
		db.Close()
		t.Skip("Something is listening on port 1")
	}
	if !strings.Contains(err.Error(), "failed to ping database") {
		t.Errorf("Expected ping error, got: %v", err)
	}
}

// TestSchemaEmbedded tests that the schema file ships with the binary.
func TestSchemaEmbedded(t *testing.T) {
	data, err := schemaSQL.ReadFile("schema.sql")
	if err != nil {
		t.Fatalf("Failed to read embedded schema: %v", err)
	}
	if !strings.Contains(string(data), "CREATE TABLE IF NOT EXISTS satellites") {
		t.Error("Schema does not create the satellites table")
	}
}

// TestIsConnectionError tests classification of retryable errors.
func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: Connection Refused"), true},
		{errors.New("write: broken pipe"), true},
		{errors.New("driver: bad connection"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("pq: duplicate key value violates unique constraint"), false},
	}

	for _, tt := range tests {
		if got := IsConnectionError(tt.err); got != tt.want {
			t.Errorf("IsConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

// TestWithRetry tests that only connection errors are retried.
func TestWithRetry(t *testing.T) {
	t.Run("Query errors are not retried", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return errors.New("syntax error")
		}, 3)
		if err == nil || calls != 1 {
			t.Errorf("Expected one call and an error, got %d calls, err %v", calls, err)
		}
	})

	t.Run("Connection error then success", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls == 1 {
				return errors.New("connection reset by peer")
			}
			return nil
		}, 2)
		if err != nil || calls != 2 {
			t.Errorf("Expected success on second call, got %d calls, err %v", calls, err)
		}
	})

	t.Run("Cancelled context stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WithRetry(ctx, func() error { return errors.New("timeout") }, 5)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

// TestNextBackoff tests exponential growth with a cap.
func TestNextBackoff(t *testing.T) {
	d := time.Second
	for i := 0; i < 10; i++ {
		d = nextBackoff(d)
	}
	if d != maxBackoff {
		t.Errorf("Expected backoff capped at %v, got %v", maxBackoff, d)
	}
	if got := nextBackoff(2 * time.Second); got != 4*time.Second {
		t.Errorf("Expected 4s, got %v", got)
	}
}

// TestHealthCheckNil tests that a nil database is unhealthy.
func TestHealthCheckNil(t *testing.T) {
	if HealthCheck(context.Background(), nil) {
		t.Error("Expected nil database to be unhealthy")
	}
}

// testDB connects to the database named by ORBIT_GLOBE_TEST_DB_HOST or
// skips the test.
func testDB(t *testing.T) *DB {
	t.Helper()
	host := os.Getenv("ORBIT_GLOBE_TEST_DB_HOST")
	if host == "" {
		t.Skip("ORBIT_GLOBE_TEST_DB_HOST not set")
	}

	cfg := config.DefaultConfig().Database
	cfg.Host = host
	if pw := os.Getenv("ORBIT_GLOBE_TEST_DB_PASSWORD"); pw != "" {
		cfg.Password = pw
	}

	db, err := Connect(cfg)
	if err != nil {
		t.Skipf("Database not reachable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := db.InitSchema(ctx); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE satellites`); err != nil {
		t.Fatalf("Failed to truncate: %v", err)
	}
	return db
}

// TestMonitorUnreachable tests that a monitor without a connection reports
// unhealthy when reconnecting fails.
func TestMonitorUnreachable(t *testing.T) {
	cfg := config.DefaultConfig().Database
	cfg.Host = "127.0.0.1"
	cfg.Port = 1

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMonitor(nil, cfg)
	if m.Healthy(ctx) {
		t.Error("Expected unreachable database to be unhealthy")
	}
	if err := m.Close(); err != nil {
		t.Errorf("Expected Close without a connection to succeed, got %v", err)
	}
}

// TestMonitorHealthy tests a monitor over a live connection.
func TestMonitorHealthy(t *testing.T) {
	db := testDB(t)

	m := NewMonitor(db, db.config)
	if !m.Healthy(context.Background()) {
		t.Error("Expected live database to be healthy")
	}
}
