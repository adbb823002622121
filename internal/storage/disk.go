package storage

import (
	"fmt"
	"os"
)

// sqliteSidecars are the files SQLite keeps next to the database in WAL mode, or while a
// rollback journal is open.
var sqliteSidecars = []string{"-wal", "-shm", "-journal"}

// SQLiteFiles returns the database file at path followed by the sidecar files SQLite may
// keep beside it.
func SQLiteFiles(path string) []string {
	files := []string{path}
	for _, suffix := range sqliteSidecars {
		files = append(files, path+suffix)
	}
	return files
}

// SQLiteDiskUsage returns the bytes held by the SQLite database at path, counting its WAL and
// shared memory files. Sidecars that do not exist count as 0; a missing database is an error.
func SQLiteDiskUsage(path string) (int64, error) {
	if path == "" {
		return 0, fmt.Errorf("sqlite disk usage: empty path")
	}
	var total int64
	for i, p := range SQLiteFiles(path) {
		info, err := os.Stat(p)
		switch {
		case err == nil:
			if info.IsDir() {
				return 0, fmt.Errorf("sqlite disk usage: %s is a directory", p)
			}
			total += info.Size()
		case os.IsNotExist(err) && i > 0:
		default:
			return 0, fmt.Errorf("sqlite disk usage: %w", err)
		}
	}
	return total, nil
}
