package config

import "strings"

const redactedPassword = "***"

// RedactURL replaces the password in a connection string with "***".
// It handles scheme URLs (postgres://, mysql://) and go-sql-driver DSNs
// (user:pass@tcp(host)/db). Strings without a password are returned unchanged.
func RedactURL(raw string) string {
	start := 0
	if i := strings.Index(raw, "://"); i >= 0 {
		start = i + len("://")
	}

	authority := raw[start:]
	if slash := strings.Index(authority, "/"); slash >= 0 {
		authority = authority[:slash]
	}

	at := strings.LastIndex(authority, "@")
	if at < 0 {
		return raw
	}

	colon := strings.Index(authority[:at], ":")
	if colon < 0 {
		return raw
	}

	return raw[:start] + authority[:colon+1] + redactedPassword + raw[start+at:]
}
