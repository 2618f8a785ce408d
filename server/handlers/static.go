package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// StaticHandler serves static files from the frontend build
// It also handles the SPA routing by serving index.html for routes that don't exist
func StaticHandler(staticDir string, logger *zap.Logger) http.HandlerFunc {
	if staticDir == "" {
		return func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusNotFound, "Not found")
		}
	}

	fs := http.FileServer(http.Dir(staticDir))

	return func(w http.ResponseWriter, r *http.Request) {
		// Don't serve the index.html for API requests
		if strings.HasPrefix(r.URL.Path, "/api/") {
			WriteError(w, http.StatusNotFound, "Not found")
			return
		}

		// Check if the requested file exists
		path := filepath.Join(staticDir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))

		fileInfo, err := os.Stat(path)
		if err != nil && !os.IsNotExist(err) {
			logger.Debug("static file error", zap.String("path", path), zap.Error(err))
		}

		// If the file doesn't exist or is a directory, serve index.html
		if os.IsNotExist(err) || (r.URL.Path != "/" && (strings.HasSuffix(r.URL.Path, "/") || (err == nil && fileInfo.IsDir()))) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		fs.ServeHTTP(w, r)
	}
}
