// Package spool materializes uploaded bytes as uniquely named temporary
// files. Several format libraries need random access to a real file rather
// than a byte stream, so each upload is written to disk for the duration of
// one request and removed on every exit path.
package spool

import (
	"fmt"
	"os"
	"sync"
)

// File is a scoped on-disk copy of one upload. Its name is unique per
// acquisition, so concurrent requests never collide even for identical
// filenames.
type File struct {
	path string
	once sync.Once
}

// Acquire writes data to a uniquely named file in dir (os.TempDir when empty).
// The file name carries ext so suffix-sensitive parsers behave correctly.
func Acquire(dir string, data []byte, ext string) (*File, error) {
	f, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("close spool file: %w", err)
	}
	return &File{path: f.Name()}, nil
}

// Path returns the on-disk location.
func (f *File) Path() string { return f.path }

// Release removes the file. Idempotent; a file already gone is not an error.
func (f *File) Release() {
	f.once.Do(func() {
		os.Remove(f.path)
	})
}
