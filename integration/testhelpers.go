//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aqasim81/migra/internal/database"
	"github.com/aqasim81/migra/internal/migration"
)

const (
	postgresImage = "postgres:16-alpine"
	mysqlImage    = "mysql:8.0"
	testDB        = "migra_test"
	testUser      = "migra"
	testPassword  = "migra"
)

// backend describes one database under test.
type backend struct {
	name string
	kind database.Kind
	// transactionalDDL is false where DDL commits implicitly.
	transactionalDDL bool
	setup            func(t *testing.T) string
}

func backends() []backend {
	return []backend{
		{name: "postgres", kind: database.KindPostgres, transactionalDDL: true, setup: SetupPostgresURL},
		{name: "mysql", kind: database.KindMySQL, transactionalDDL: false, setup: SetupMySQLURL},
	}
}

// SetupPostgresURL starts a PostgreSQL 16 container and returns its connection URL.
// The container is automatically cleaned up when the test completes.
func SetupPostgresURL(t *testing.T) string {
	t.Helper()

	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       testDB,
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432/tcp")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", testUser, testPassword, host, port, testDB)
}

// SetupMySQLURL starts a MySQL 8 container and returns its connection URL.
// The container is automatically cleaned up when the test completes.
func SetupMySQLURL(t *testing.T) string {
	t.Helper()

	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        mysqlImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      testDB,
			"MYSQL_USER":          testUser,
			"MYSQL_PASSWORD":      testPassword,
			"MYSQL_ROOT_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("port: 3306  MySQL Community Server"),
			wait.ForListeningPort("3306/tcp"),
		).WithStartupTimeoutDefault(120 * time.Second),
	}, "3306/tcp")

	return fmt.Sprintf("mysql://%s:%s@%s:%s/%s", testUser, testPassword, host, port, testDB)
}

func startContainer(t *testing.T, req testcontainers.ContainerRequest, exposed string) (string, string) {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, nat.Port(exposed))
	require.NoError(t, err)

	return host, port.Port()
}

// openClient starts b's container and opens a client on it.
func openClient(t *testing.T, b backend, table string) database.Client {
	t.Helper()

	ctx := context.Background()

	client, err := database.Open(ctx, database.Options{
		Client:    b.kind,
		URL:       b.setup(t),
		TableName: table,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, client.Close(context.Background()))
	})

	return client
}

func writeMigration(t *testing.T, dir, name, up, down string) {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, migration.UpFileName), []byte(up), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(path, migration.DownFileName), []byte(down), 0o600))
}
