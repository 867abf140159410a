package dbx

import "net/url"

// SQLiteDSN builds a modernc.org/sqlite DSN for the database file at path
// with foreign keys on, a 5s busy timeout and BEGIN IMMEDIATE transactions.
func SQLiteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}
