package reefradar

import (
	"github.com/reefradar/reefradar/pkg/reefradar/storage"
)

// NewSQLiteStorage opens the sqlite-backed store at dbPath. The returned
// client satisfies the Storage interface directly.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}
