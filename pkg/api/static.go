package api

import (
	"net/http"
	"path"
	"strings"
)

// staticFiles serves files below root for GET and HEAD requests. A directory
// is served through its index.html. Requests for anything else fall through.
func staticFiles(root string) func(http.Handler) http.Handler {
	dir := http.Dir(root)
	files := http.FileServer(dir)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if (r.Method != http.MethodGet && r.Method != http.MethodHead) || strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)

				return
			}

			if !exists(dir, r.URL.Path) {
				next.ServeHTTP(w, r)

				return
			}

			files.ServeHTTP(w, r)
		})
	}
}

func exists(dir http.Dir, name string) bool {
	name = path.Clean("/" + name)

	f, err := dir.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false
	}

	if !info.IsDir() {
		return true
	}

	index, err := dir.Open(path.Join(name, "index.html"))
	if err != nil {
		return false
	}

	_ = index.Close()

	return true
}
