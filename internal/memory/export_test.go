package memory

import "database/sql"

// DB exposes the archive connection to memory_test.
func (s *Store) DB() *sql.DB {
	return s.db
}
