package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlDefaultPort = "3306"
	// mysqlNoSuchTable is ER_NO_SUCH_TABLE.
	mysqlNoSuchTable = 1146
)

func openMySQL(ctx context.Context, databaseURL, table string) (*sqlClient, error) {
	dsn, err := MySQLDSN(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return newSQLClient(ctx, db, table, sqlDialect{
		kind:           KindMySQL,
		createTableSQL: mysqlCreateTableSQL,
		isMissingTable: isMySQLNoSuchTable,
	})
}

// MySQLDSN turns a mysql:// URL or a driver DSN into a driver DSN with
// multi-statement batches enabled.
func MySQLDSN(databaseURL string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(databaseURL), "mysql://") {
		cfg, err := mysql.ParseDSN(databaseURL)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
		}

		cfg.MultiStatements = true

		return cfg.FormatDSN(), nil
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidDatabaseURL)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.User = u.User.Username()
	cfg.Passwd, _ = u.User.Password()
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.MultiStatements = true

	host, port := u.Hostname(), u.Port()
	if port == "" {
		port = mysqlDefaultPort
	}

	cfg.Addr = net.JoinHostPort(host, port)

	query := u.Query()
	if len(query) > 0 {
		cfg.Params = make(map[string]string, len(query))
		for key := range query {
			cfg.Params[key] = query.Get(key)
		}
	}

	return cfg.FormatDSN(), nil
}

func isMySQLNoSuchTable(err error) bool {
	var myErr *mysql.MySQLError

	return errors.As(err, &myErr) && myErr.Number == mysqlNoSuchTable
}
