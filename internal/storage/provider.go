// Package storage provides rooted file access for the content and media
// directories.
package storage

import "time"

// FileInfo describes one stored file.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for rooted file operations. Paths are relative
// to the root and may not escape it.
type Provider interface {
	// List returns every file under dir with one of the given extensions
	// (lower-case, with the dot), or every file when none are given.
	List(dir string, exts ...string) ([]FileInfo, error)
	Read(path string) ([]byte, error)
	Write(path string, content []byte) error
	Delete(path string) error
}
