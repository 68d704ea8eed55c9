//go:build !unix

package storage

// lockFile is a no-op where flock is unavailable; writes still go through
// an atomic rename.
func lockFile(string) (func() error, error) {
	return func() error { return nil }, nil
}
