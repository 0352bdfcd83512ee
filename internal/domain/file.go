package domain

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File is an immutable handle on a selected file. Renaming produces a new
// handle that shares the bytes.
type File struct {
	name     string
	mimeType string
	modTime  time.Time
	data     []byte
}

// NewFile builds a handle. The caller must not modify data afterwards.
func NewFile(name, mimeType string, modTime time.Time, data []byte) File {
	return File{name: name, mimeType: mimeType, modTime: modTime, data: data}
}

// ReadFile loads a file from disk and sniffs its MIME type.
func ReadFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read file: %w", err)
	}
	name := filepath.Base(path)
	return NewFile(name, DetectMimeType(name, data), info.ModTime(), data), nil
}

// DetectMimeType prefers the extension mapping and falls back to content sniffing.
func DetectMimeType(name string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

func (f File) Name() string       { return f.name }
func (f File) MimeType() string   { return f.mimeType }
func (f File) ModTime() time.Time { return f.modTime }
func (f File) Size() int          { return len(f.data) }

// Bytes returns the file content. Callers must treat it as read-only.
func (f File) Bytes() []byte { return f.data }

// IsZero reports whether f is the empty handle.
func (f File) IsZero() bool { return f.name == "" && f.data == nil }

// Rename returns a new handle with the same bytes, MIME type and
// modification time under a different name.
func (f File) Rename(name string) File {
	return File{name: name, mimeType: f.mimeType, modTime: f.modTime, data: f.data}
}

// BaseName is the name without its last extension, or the whole name when it
// has none.
func (f File) BaseName() string {
	return BaseName(f.name)
}

// BaseName returns the text preceding the last '.', or name if there is none.
func BaseName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}
