//go:build integration

package mariadb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/biometric"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Store, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mariadb:11",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MARIADB_USER":          "test",
			"MARIADB_PASSWORD":      "test",
			"MARIADB_DATABASE":      "testdb",
			"MARIADB_ROOT_PASSWORD": "root",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("test:test@tcp(%s:%s)/testdb", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	// The port can accept connections a moment before the server finishes init.
	var store *Store
	for attempt := 0; attempt < 20; attempt++ {
		store, err = Open(ctx, cfg, nil)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to open store: %v", err)
	}

	return store, func() {
		store.Close()
		container.Terminate(ctx)
	}
}

func TestStore(t *testing.T) {
	store, cleanup := setupTestContainer(t)
	if store == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	enc := biometric.Vector{0.1, 0.2, 0.3, 0.4}

	t.Run("InsertGetDuplicate", func(t *testing.T) {
		p := database.StoredPerson{ID: "S1", Name: "Alice", Role: database.RoleStudent, Class: "Form One", Encoding: enc}
		if err := store.InsertPerson(ctx, p); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := store.InsertPerson(ctx, p); !errors.Is(err, database.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}

		got, err := store.GetPerson(ctx, database.RoleStudent, "S1")
		if err != nil || got == nil {
			t.Fatalf("get: %+v, %v", got, err)
		}
		if got.Encoding.Dim() != 4 || got.Encoding[2] != 0.3 {
			t.Errorf("encoding did not round-trip: %v", got.Encoding)
		}
	})

	t.Run("UpsertAndRecords", func(t *testing.T) {
		if err := store.InsertPerson(ctx, database.StoredPerson{ID: "T1", Name: "Mr Bello", Role: database.RoleTeacher, Encoding: enc}); err != nil {
			t.Fatal(err)
		}
		date := "2026-10-15"
		for _, status := range []string{"present", "absent"} {
			if err := store.UpsertAttendance(ctx, database.StoredAttendance{PersonID: "S1", Date: date, Status: status, CheckedAt: time.Now()}); err != nil {
				t.Fatal(err)
			}
		}
		if err := store.UpsertAttendance(ctx, database.StoredAttendance{PersonID: "T1", Date: date, Status: "present", CheckedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}

		got, err := store.GetAttendance(ctx, "S1", date)
		if err != nil || got == nil || got.Status != "absent" {
			t.Fatalf("expected last status absent, got %+v, %v", got, err)
		}

		records, err := store.RecordsOn(ctx, date)
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 2 || records[0].PersonID != "T1" || records[1].PersonID != "S1" {
			t.Errorf("unexpected records %+v", records)
		}
	})

	t.Run("MigrationsIdempotent", func(t *testing.T) {
		if err := store.pool.Migrate(ctx); err != nil {
			t.Fatalf("second Migrate: %v", err)
		}
		status, err := store.Migrations(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(status.Pending) != 0 || len(status.Applied) != 1 || status.Applied[0] != "001_initial.sql" {
			t.Errorf("unexpected migration status %+v", status)
		}
	})
}
