package controllers

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// StaticHandler serves files under dir. Dotfiles and dot-directories are
// never served, and directories without an index.html are not listed.
func StaticHandler(dir string) http.Handler {
	return http.FileServer(publicFS{root: http.Dir(dir)})
}

type publicFS struct {
	root http.FileSystem
}

func (p publicFS) Open(name string) (http.File, error) {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return nil, fs.ErrNotExist
		}
	}

	f, err := p.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := p.root.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, fs.ErrNotExist
		}
		index.Close()
	}
	return f, nil
}
