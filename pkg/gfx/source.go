package gfx

import (
	"io/fs"
	"path"
)

// SourceSet resolves shader source text by id.
type SourceSet interface {
	Source(id string) (string, bool)
}

// MapSource is an in-memory SourceSet.
type MapSource map[string]string

// Source implements SourceSet.
func (m MapSource) Source(id string) (string, bool) {
	s, ok := m[id]
	return s, ok
}

// FSSource reads id+Ext from a file system, typically an embed.FS.
type FSSource struct {
	FS  fs.FS
	Dir string
	Ext string
}

// Source implements SourceSet.
func (s FSSource) Source(id string) (string, bool) {
	data, err := fs.ReadFile(s.FS, path.Join(s.Dir, id+s.Ext))
	if err != nil {
		return "", false
	}
	return string(data), true
}
