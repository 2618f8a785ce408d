package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"logviewer/catalog"
	"logviewer/models"
	"logviewer/service"
)

// ModifiedLayout is how file modification times are rendered to clients.
const ModifiedLayout = "2006-01-02 15:04:05"

// FileInfo is the client view of a discovered file. The absolute path
// stays on the server.
type FileInfo struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// FilesResponse represents the API response format for /api/files
type FilesResponse struct {
	Files []FileInfo `json:"files"`
}

// LogsResponse represents the API response format for /api/logs
type LogsResponse struct {
	File     string             `json:"file"`
	Count    int                `json:"count"`
	Logs     []models.LogRecord `json:"logs"`
	Degraded bool               `json:"degraded,omitempty"`
}

// NewFilesResponse converts catalog entries to their client view.
func NewFilesResponse(files []models.LogFile) FilesResponse {
	resp := FilesResponse{Files: make([]FileInfo, 0, len(files))}
	for _, f := range files {
		resp.Files = append(resp.Files, FileInfo{
			Path:     f.RelativePath,
			Size:     f.SizeBytes,
			Modified: f.ModifiedAt.Format(ModifiedLayout),
		})
	}
	return resp
}

// FilesHandler lists the log files under the root, newest first.
func FilesHandler(svc *service.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := svc.ListFiles()
		if err != nil {
			logger.Error("error listing files", zap.Error(err))
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		WriteJSON(w, http.StatusOK, NewFilesResponse(files))
	}
}

// LogsHandler returns the filtered tail of one file.
// Query parameters: file, lines, search, level.
func LogsHandler(svc *service.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		file := query.Get("file")

		// Non-positive values fall back to the configured default
		lines := 0
		if linesStr := strings.TrimSpace(query.Get("lines")); linesStr != "" {
			parsed, err := strconv.Atoi(linesStr)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "lines must be an integer")
				return
			}
			lines = parsed
		}

		filter := models.QueryFilter{
			LineLimit: lines,
			Search:    query.Get("search"),
			Level:     query.Get("level"),
		}

		result, err := svc.QueryLogs(file, filter)
		if err != nil {
			if errors.Is(err, catalog.ErrRejected) {
				WriteError(w, http.StatusForbidden, "Invalid file path")
				return
			}
			logger.Error("error querying logs", zap.String("file", file), zap.Error(err))
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if file == "" {
			file = svc.DefaultFile()
		}

		WriteJSON(w, http.StatusOK, LogsResponse{
			File:     file,
			Count:    len(result.Records),
			Logs:     result.Records,
			Degraded: result.Degraded(),
		})
	}
}

// StatsHandler summarizes the files under the root.
func StatsHandler(svc *service.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Stats()
		if err != nil {
			logger.Error("error computing stats", zap.Error(err))
			WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		WriteJSON(w, http.StatusOK, st)
	}
}
