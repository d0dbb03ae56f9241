package httpserver

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPAHandler serves the frontend bundle. Any path that does not resolve to a
// file under the static dir falls back to index.html so client-side routing
// keeps working.
type SPAHandler struct {
	staticDir string
}

func NewSPAHandler(staticDir string) *SPAHandler {
	return &SPAHandler{staticDir: staticDir}
}

func (s *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	rel := strings.TrimPrefix(filepath.Clean("/"+r.URL.Path), "/")
	candidate := filepath.Join(s.staticDir, rel)

	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		http.ServeFile(w, r, candidate)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.staticDir, "index.html"))
}
