package http

import (
	"io/fs"
	"net/http"
)

// ServeIndex serves the single-page dashboard UI from the embedded web
// filesystem. Any unknown path falls through to index.html so the page
// owns its own routing.
func ServeIndex(webFS fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(webFS, "index.html")
		if err != nil {
			http.Error(w, "dashboard page not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Write(data)
	}
}

// StaticHandler serves embedded static assets under the given prefix.
func StaticHandler(webFS fs.FS) http.Handler {
	return http.FileServer(http.FS(webFS))
}
