// Package service exposes the viewer's three operations (list files, query
// logs, stats) with the log root threaded from configuration.
package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"logviewer/catalog"
	"logviewer/config"
	"logviewer/formats"
	"logviewer/models"
	"logviewer/query"
	"logviewer/stats"
)

// Service is safe for concurrent use; it only holds immutable configuration.
type Service struct {
	root         string
	defaultFile  string
	defaultLines int
	maxLines     int
	engine       *query.Engine
	logger       *zap.Logger
}

// New creates a Service from a validated configuration.
func New(cfg config.Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	parser, err := formats.ParserByName(cfg.LineFormat)
	if err != nil {
		return nil, err
	}

	return &Service{
		root:         cfg.RootDir,
		defaultFile:  cfg.DefaultFile,
		defaultLines: cfg.DefaultLines,
		maxLines:     cfg.MaxLines,
		engine:       query.NewEngine(parser),
		logger:       logger.Named("service"),
	}, nil
}

// Root returns the configured log root.
func (s *Service) Root() string { return s.root }

// DefaultFile is queried when a request names no file.
func (s *Service) DefaultFile() string { return s.defaultFile }

// ListFiles returns the log files under the root, newest first.
func (s *Service) ListFiles() ([]models.LogFile, error) {
	files, err := catalog.ListFiles(s.root)
	if err != nil {
		s.logger.Error("listing log files failed", zap.String("root", s.root), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("listed log files", zap.Int("count", len(files)))
	return files, nil
}

// QueryLogs resolves file against the root and queries its tail window.
// An empty file selects the configured default file. It returns an error
// wrapping catalog.ErrRejected when the file lies outside the root; every
// other failure is reported through the result.
func (s *Service) QueryLogs(file string, f models.QueryFilter) (query.Result, error) {
	if file == "" {
		file = s.defaultFile
	}

	path, err := catalog.Resolve(s.root, file)
	if err != nil {
		if errors.Is(err, catalog.ErrRejected) {
			s.logger.Warn("rejected file outside log root", zap.String("file", file))
			return query.Result{}, err
		}
		return query.Result{}, fmt.Errorf("resolve %q: %w", file, err)
	}

	f = f.Normalize(s.defaultLines, s.maxLines)
	result := s.engine.Query(path, f)

	if result.Degraded() {
		s.logger.Warn("log query degraded", zap.String("file", file), zap.Error(result.Err))
	} else {
		s.logger.Debug("log query",
			zap.String("file", file),
			zap.Int("lines", f.LineLimit),
			zap.String("search", f.Search),
			zap.String("level", f.Level),
			zap.Int("matched", len(result.Records)),
		)
	}

	return result, nil
}

// Stats summarizes the log files under the root.
func (s *Service) Stats() (models.Stats, error) {
	files, err := s.ListFiles()
	if err != nil {
		return models.Stats{}, err
	}
	return stats.Summarize(files), nil
}
