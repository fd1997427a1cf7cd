// Package lockfile implements the single-instance guard: a lock file held
// for the lifetime of the process.
package lockfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rogpeppe/go-internal/lockedfile"
)

// LockFile holds the lockfile.
type LockFile struct {
	f *lockedfile.File
}

// Close releases the lock.
func (lf *LockFile) Close() error {
	if lf.f == nil {
		return fmt.Errorf("nil internal locked file")
	}
	return lf.f.Close()
}

// Create acquires the lock file, blocking until it is acquired or the
// context is done. Callers that want "fail fast if another instance is
// running" pass a short-timeout context.
func Create(ctx context.Context, filePath string) (*LockFile, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return nil, err
	}

	// lockedfile.Create blocks with no context support, so run it on a
	// goroutine and race it against the context.
	cf := make(chan *lockedfile.File)
	cerr := make(chan error)
	go func() {
		f, err := lockedfile.Create(filePath)
		if err != nil {
			cerr <- err
		} else {
			cf <- f
		}
	}()

	select {
	case f := <-cf:
		// Record who holds the lock to ease debugging; errors here are
		// not fatal for our purposes.
		fmt.Fprintf(f, "PID=%d\n", os.Getpid())
		host, _ := os.Hostname()
		fmt.Fprintf(f, "Host=%q\n", host)
		return &LockFile{f: f}, nil

	case err := <-cerr:
		return nil, err

	case <-ctx.Done():
		// The file may still (eventually) open; make sure it is closed
		// if it ever does.
		go func() {
			select {
			case <-cerr:
			case f := <-cf:
				f.Close()
			}
		}()
		return nil, ctx.Err()
	}
}
