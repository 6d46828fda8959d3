package pongo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// layeredLoader serves templates from a stack of filesystems. Every name it
// hands to pongo2 is a slash-separated path relative to the stack root, so
// a template found in one layer can extend or include one from another.
//
// A reference is first looked up next to the referencing template and then
// from the root, which lets "pages/login.html" extend "base.html".
type layeredLoader struct {
	layers []fs.FS
}

func (l *layeredLoader) Abs(base, name string) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	base = strings.TrimPrefix(filepath.ToSlash(base), "/")
	if base != "" {
		if sibling := path.Join(path.Dir(base), name); l.exists(sibling) {
			return sibling
		}
	}
	return path.Clean(name)
}

func (l *layeredLoader) Get(name string) (io.Reader, error) {
	name = path.Clean(strings.TrimPrefix(filepath.ToSlash(name), "/"))
	for _, layer := range l.layers {
		data, err := fs.ReadFile(layer, name)
		if err == nil {
			return bytes.NewReader(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrInvalid) {
			return nil, fmt.Errorf("pongo: read %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("pongo: template %s: %w", name, fs.ErrNotExist)
}

func (l *layeredLoader) exists(name string) bool {
	for _, layer := range l.layers {
		if info, err := fs.Stat(layer, name); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
