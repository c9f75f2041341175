package database

// Bookkeeping table DDL per backend. %s is the validated table name.
const (
	postgresCreateTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    id      serial      PRIMARY KEY,
    name    text        NOT NULL UNIQUE
)`

	mysqlCreateTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    id      int             AUTO_INCREMENT PRIMARY KEY,
    name    varchar(256)    NOT NULL UNIQUE
)`

	// INTEGER PRIMARY KEY aliases the rowid, so ids grow with insertion order.
	sqliteCreateTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    id      INTEGER         PRIMARY KEY AUTOINCREMENT,
    name    TEXT            NOT NULL UNIQUE
)`
)
