package db

import "fmt"

// TruncateAll wipes every domain table. Exposed through the testing endpoint
// so end-to-end suites can reset state between runs.
func (db *DB) TruncateAll() error {
	tables := []string{"likes", "comments", "posts", "blogs", "devices", "users"}
	for _, table := range tables {
		if _, err := db.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("truncating %s: %w", table, err)
		}
	}
	return nil
}
