package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ppiankov/vigil/internal/dictionary"
	"github.com/ppiankov/vigil/internal/extract"
	"github.com/ppiankov/vigil/internal/metrics"
	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/pipeline"
	"github.com/ppiankov/vigil/internal/store"
	"github.com/sirupsen/logrus"
)

// app holds the collaborators shared by the commands
type app struct {
	cfg     *model.Config
	logger  *logrus.Logger
	store   store.Store
	dicts   *dictionary.Set
	metrics *metrics.Recorder
}

// newApp loads configuration and opens the store and dictionaries.
// Dictionary defects surface here, before any session is touched.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	dicts, err := dictionary.FromConfig(cfg.Dictionary)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(cfg.Store, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"dictionary": dicts.Source(),
		"languages":  strings.Join(dicts.Languages(), ","),
		"base":       dicts.BaseLanguage(),
		"store":      cfg.Store.Driver,
	}).Debug("Vigil initialized")

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   s,
		dicts:   dicts,
		metrics: metrics.NewRecorder(),
	}, nil
}

// pipeline builds an analysis pipeline over the app's store
func (a *app) pipeline() *pipeline.Pipeline {
	return pipeline.New(
		extract.NewMatcher(a.dicts),
		a.store,
		a.store,
		pipeline.WithLogger(a.logger),
		pipeline.WithMetrics(a.metrics),
	)
}

func (a *app) Close() error {
	return a.store.Close()
}

// commandContext returns a context cancelled on SIGINT/SIGTERM or after
// timeout (zero = no timeout)
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// sanitizeFilename turns a session ID into a safe file name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".")
	if s == "" {
		s = "session"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	return filepath.Clean(s)
}

// reportName returns a file name for sessionID that no earlier session in
// used has taken. Distinct IDs that sanitize alike get a short hash suffix.
func reportName(sessionID string, used map[string]bool) string {
	name := sanitizeFilename(sessionID)
	if used[name] {
		sum := sha256.Sum256([]byte(sessionID))
		name = name + "-" + hex.EncodeToString(sum[:4])
	}
	used[name] = true
	return name
}
