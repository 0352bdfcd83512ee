// Package download turns conversion results into files on disk.
package download

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwulff/fileforge/internal/domain"
)

// Payload is a materialized download.
type Payload struct {
	Data     []byte
	MimeType string
}

// Materialize decodes binary content from base64 or packages text as-is.
func Materialize(res domain.ConversionResult) (Payload, error) {
	if !res.IsBinary {
		return Payload{Data: []byte(res.Content), MimeType: res.MimeType}, nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(res.Content))
	if err != nil {
		return Payload{}, fmt.Errorf("decode binary content: %w", err)
	}
	return Payload{Data: data, MimeType: res.MimeType}, nil
}

// FileName is the original base name followed by the target extension.
func FileName(originalName, extension string) string {
	return domain.BaseName(originalName) + extension
}

// DefaultDir returns ~/Downloads, or the working directory when there is no home.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// DirSaver writes downloads into a directory, never overwriting an existing
// file: a clash gets a " (n)" suffix like a browser would add.
type DirSaver struct {
	Dir string
}

// Save writes the payload and returns the path written.
func (s DirSaver) Save(name string, p Payload) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid download name %q", name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(s.Dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create download: %w", err)
		}
		if _, err := f.Write(p.Data); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("write download: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close download: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %q", name)
}
