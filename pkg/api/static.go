package api

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// spaHandler serves files from dir and answers every unknown path with
// index.html. Paths under /api/ never fall back.
func spaHandler(dir string) http.HandlerFunc {
	root := http.Dir(dir)
	files := http.FileServer(root)
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}

		if f, err := root.Open(path.Clean("/" + r.URL.Path)); err == nil {
			info, err := f.Stat()
			f.Close()
			if err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}
		http.ServeFile(w, r, index)
	}
}
