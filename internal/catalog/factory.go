package catalog

import "strings"

// NewStore creates a sqlite-backed catalog when a path is configured,
// otherwise in-memory.
func NewStore(dbPath string) (Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return NewInMemoryStore(), nil
	}
	return NewSQLite(dbPath)
}
